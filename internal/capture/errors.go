// Package capture acquires still images from a live frame source and gates
// them on simple perceptual quality heuristics before the wizard accepts them.
//
// Every acquisition failure is classified and carries a user-facing
// remediation message; no capture failure is fatal to the portal.
package capture

import "fmt"

// ErrorClass classifies camera acquisition failures.
type ErrorClass string

const (
	ErrPermissionDenied ErrorClass = "permission_denied"
	ErrNoDevice         ErrorClass = "no_device"
	ErrDeviceBusy       ErrorClass = "device_busy"
	ErrOverconstrained  ErrorClass = "overconstrained"
	ErrInsecureContext  ErrorClass = "insecure_context"
	ErrUnknown          ErrorClass = "unknown"
)

// Error is a classified camera failure. Message returns the remediation text
// shown to the recipient for the failure class.
type Error struct {
	Class ErrorClass
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("camera error (%s): %v", e.Class, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Message returns the user-facing remediation message for the failure class.
func (e *Error) Message() string {
	const prefix = "Unable to access camera. "
	switch e.Class {
	case ErrPermissionDenied:
		return prefix + "Camera access was denied. Please enable camera permissions in your browser settings."
	case ErrNoDevice:
		return prefix + "No camera device detected. Please ensure a camera is connected."
	case ErrDeviceBusy:
		return prefix + "Camera is in use by another application. Please close other apps and try again."
	case ErrOverconstrained:
		return prefix + "Camera does not meet required specifications."
	case ErrInsecureContext:
		return prefix + "Camera access requires HTTPS connection."
	default:
		return prefix + "Please check your device settings and try again."
	}
}

// NewError wraps a cause with a failure class.
func NewError(class ErrorClass, cause error) *Error {
	return &Error{Class: class, Cause: cause}
}
