package models

// Response is the standard API envelope returned by the portal's local HTTP
// surface and expected from the remote backend's mutating endpoints.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Success builds a success response with an optional result payload.
func Success(result interface{}) Response {
	return Response{Status: StatusOK, Result: result}
}

// Error builds an error response with a user-facing message.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}
