package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/guardian/internal/logger"
)

// ErrRequestFailed is the single failure category surfaced by the data-access layer.
// Network, validation and authorization failures all match it.
var ErrRequestFailed = stderrors.New("request failed")

// RequestError describes a failed API call. It always matches ErrRequestFailed.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Message    string // server-provided message, if any
	Err        error  // transport or decoding error, if any
}

func (e *RequestError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, ErrRequestFailed)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// ServerMessage returns the message the server attached to a failed request, or ""
func ServerMessage(err error) string {
	var reqErr *RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.Message
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
