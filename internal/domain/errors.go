package domain

import "fmt"

// ErrCode classifies failures per the taxonomy in spec §7, so transports
// can map errors to status codes without matching on message text.
type ErrCode string

const (
	ErrCodeValidation    ErrCode = "validation"
	ErrCodeNodeExecution ErrCode = "node_execution"
	ErrCodeEngine        ErrCode = "engine"
	ErrCodeCancellation  ErrCode = "cancellation"
	ErrCodeTransport     ErrCode = "transport"
)

// Error is the single error type raised across the core. It carries a
// Code so callers can branch without string matching, grounded on the
// teacher's ExecutionError/ValidationError/StateError family collapsed
// into one shape.
type Error struct {
	Code    ErrCode
	NodeID  string
	Message string
	Cause   error
}

func NewError(code ErrCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func NewNodeError(code ErrCode, nodeID, message string, cause error) *Error {
	return &Error{Code: code, NodeID: nodeID, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: node %s: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }
