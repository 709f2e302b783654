package stream

// 统一的核心层错误码，用于对齐上层的降级与重试策略。
type ErrorCode string

const (
	ErrIllegalState ErrorCode = "ILLEGAL_STATE" // 对已封口的日志执行写操作
	ErrParse        ErrorCode = "PARSE_ERROR"   // 累积文本不是合法 JSON
)

// Error is the structured error surfaced by this package. Upstream failures
// are never wrapped in it: they are recorded verbatim as the terminal error
// and returned as-is to every consumer.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// ErrAppendToCompleted is returned by Append once the sequence has been
// sealed. The failed call leaves the cached sequence untouched.
var ErrAppendToCompleted = &Error{
	Code:    ErrIllegalState,
	Message: "Cannot append to completed iterator",
}

func newParseError(cause error) *Error {
	return &Error{
		Code:    ErrParse,
		Message: "accumulated value is not valid JSON: " + cause.Error(),
		Cause:   cause,
	}
}
