package apierr

// Error pairs a wire-level status and machine-readable code with the
// underlying cause. The handlers' error classifier produces these; the
// response package renders them.
type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return "api error"
	}
}

func (e *Error) Unwrap() error { return e.Err }
