// Package errors provides structured error handling for the room service.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeUnknownCommand marks a command name with no registered handler.
	CodeUnknownCommand Code = "UNKNOWN_COMMAND"
	// CodeUnknownRoom marks a command addressed to a room that does not exist.
	CodeUnknownRoom Code = "UNKNOWN_ROOM"
	// CodePreconditionFailed marks a command rejected by a business rule.
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	// CodeInvalidCommand marks a structurally malformed command envelope.
	CodeInvalidCommand Code = "INVALID_COMMAND"
)

// WireCode maps domain codes to the code string delivered to clients.
func (c Code) WireCode() string {
	switch c {
	case CodeUnknownCommand:
		return "unknownCommand"
	case CodeUnknownRoom:
		return "unknownRoom"
	case CodePreconditionFailed:
		return "preconditionFailed"
	case CodeInvalidCommand:
		return "invalidCommand"
	default:
		return "internal"
	}
}
