package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrAuthenticationFailure is returned when the login request does not succeed.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrTransportFailure matches every *HorizonError.
	ErrTransportFailure = errors.New("transport failure")
)

// HorizonError represents a failed Horizon request with additional context.
type HorizonError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *HorizonError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Horizon %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("Horizon %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *HorizonError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransportFailure) match.
func (e *HorizonError) Is(target error) bool {
	return target == ErrTransportFailure
}
