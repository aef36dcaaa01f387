package httpdto

import ondot_errors "ondot-chat/pkg/errors"

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}

// FromError renders a domain error with its kind as the code. Internal
// errors are reported without their detail.
func FromError(err error) Response[any] {
	return NewErrorResponse(ondot_errors.Message(err), ondot_errors.Kind(err))
}
