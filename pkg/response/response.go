package response

import "croppo/pkg/apperr"

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"` // stable error code for clients
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps an application error onto the envelope, carrying its
// status and stable code.
func FromError(err error) (int, Response) {
	status := apperr.StatusOf(err)
	return status, Response{
		Status:     "error",
		StatusCode: status,
		Error:      err.Error(),
		Code:       apperr.CodeOf(err),
	}
}
