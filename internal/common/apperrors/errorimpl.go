package apperrors

// appError implements the Error interface. Derivations never mutate the
// receiver, so package-level sentinels stay safe for concurrent use.
type appError struct {
	msg         string
	base        Error
	wrapped     []error
	statusCode  int
	expandError bool
}

// New creates a root error with no base.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

func (e *appError) ErrorAll() string {
	if !e.expandError || len(e.wrapped) == 0 {
		return e.msg
	}
	msg := e.msg + ": "
	for i, err := range e.wrapped {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return msg
}

func (e *appError) Unwrap() []error {
	return e.wrapped
}

// New derives a child error. The child inherits the status code and reports
// true for errors.Is against e and all of e's ancestors.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		base:        e,
		statusCode:  e.statusCode,
		expandError: e.expandError,
	}
}

// Msg derives a child with a different message. Unlike New, Msg is meant for
// per-call annotation of a sentinel.
func (e *appError) Msg(msg string) Error {
	return e.New(msg)
}

func (e *appError) MsgErr(msg string, err ...error) Error {
	derived := e.New(msg).(*appError)
	derived.wrapped = append(derived.wrapped, err...)
	return derived
}

// Err derives a child wrapping the given causes. The causes are visible to
// errors.Is and errors.As but do not change the message.
func (e *appError) Err(err ...error) Error {
	derived := e.New(e.msg).(*appError)
	derived.wrapped = append(derived.wrapped, err...)
	return derived
}

func (e *appError) Is(target error) bool {
	if e == target || e.base == target {
		return true
	}
	if e.base != nil && e.base.Is(target) {
		return true
	}
	for _, err := range e.wrapped {
		if err == target {
			return true
		}
	}
	return false
}

func (e *appError) SetExpandError(expand bool) Error {
	derived := *e
	derived.expandError = expand
	return &derived
}

func (e *appError) SetStatusCode(code int) Error {
	derived := *e
	derived.statusCode = code
	return &derived
}

func (e *appError) StatusCode() int {
	return e.statusCode
}
