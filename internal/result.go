package internal

// Result is the uniform envelope every fallible operation returns. Failures
// travel inside the envelope; nothing panics across a component boundary on
// the steady-state path.
type Result[T any] struct {
	Success      bool      `json:"success"`
	Data         T         `json:"data,omitempty"`
	ErrorCode    ErrorCode `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Err          *AppError `json:"-"`
}

func OK[T any](data T) *Result[T] {
	return &Result[T]{Success: true, Data: data}
}

// Fail wraps any error into a failure envelope, normalizing it through the
// taxonomy first.
func Fail[T any](err error) *Result[T] {
	appErr := Normalize(err)
	return &Result[T]{
		Success:      false,
		ErrorCode:    appErr.Code,
		ErrorMessage: appErr.Message,
		Err:          appErr,
	}
}

// FailFrom copies the failure of another envelope, preserving code, message
// and typed error across a change of payload type.
func FailFrom[T, U any](other *Result[U]) *Result[T] {
	return &Result[T]{
		Success:      false,
		ErrorCode:    other.ErrorCode,
		ErrorMessage: other.ErrorMessage,
		Err:          other.Err,
	}
}
