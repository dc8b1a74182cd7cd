package engine

import (
	"errors"
	"strings"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
)

// RejectionError reports a command declined by a room precondition. No events
// were produced and the stored room is unchanged.
type RejectionError struct {
	CommandID  string
	RoomID     string
	Rejections []command.Rejection
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	return e.Reason()
}

// Reason returns the human-readable reason shown to the issuing user.
func (e *RejectionError) Reason() string {
	messages := make([]string, 0, len(e.Rejections))
	for _, rejection := range e.Rejections {
		messages = append(messages, rejection.Message)
	}
	return strings.Join(messages, "; ")
}

// Code returns the first rejection code.
func (e *RejectionError) Code() string {
	if len(e.Rejections) == 0 {
		return ""
	}
	return e.Rejections[0].Code
}

// IsPrecondition reports whether err (or its chain) is a RejectionError.
func IsPrecondition(err error) bool {
	var target *RejectionError
	return errors.As(err, &target)
}
