// Package apperrors provides layered application errors. An Error derived
// with New remains matchable against every ancestor in its chain through
// errors.Is, carries an HTTP status code for the API layer, and can wrap
// underlying causes without losing its own identity.
package apperrors

type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	Msg(msg string) Error
	MsgErr(msg string, err ...error) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
}
