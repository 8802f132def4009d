package probe

import (
	"errors"
	"fmt"
	"time"
)

// Result is the outcome of probing a single candidate URL.
//
// A result is either successful (the server answered, whatever the status)
// or failed (the transport step itself broke). Status code and body size
// only exist for successful results and are read through accessors that
// report whether they are present.
type Result struct {
	URL      string
	Message  string // "<status> [Size: <n>]" or the transport error text
	Err      error  // nil iff the request completed
	Duration time.Duration

	status int
	length int64
}

// Succeeded builds the result of a completed request.
func Succeeded(url string, status int, length int64) Result {
	return Result{
		URL:     url,
		Message: fmt.Sprintf("%d [Size: %d]", status, length),
		status:  status,
		length:  length,
	}
}

// Failed builds the result of a request that never produced a response.
func Failed(url string, err error) Result {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result{URL: url, Message: err.Error(), Err: err}
}

// Success reports whether the request completed, independent of the
// HTTP status.
func (r Result) Success() bool { return r.Err == nil }

// StatusCode returns the HTTP status and true for successful results.
func (r Result) StatusCode() (int, bool) {
	if !r.Success() {
		return 0, false
	}
	return r.status, true
}

// ContentLength returns the response body size in bytes and true for
// successful results.
func (r Result) ContentLength() (int64, bool) {
	if !r.Success() {
		return 0, false
	}
	return r.length, true
}
