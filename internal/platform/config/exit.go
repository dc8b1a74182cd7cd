package config

import (
	"fmt"
	"log"
	"os"
)

// Exitf reports a startup failure on stderr, tagged with the process log
// prefix, and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, log.Prefix()+format+"\n", args...)
	os.Exit(1)
}
