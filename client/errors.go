package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adamwoolhether/apiconn/client/message"
)

// maxErrBodySize caps the body excerpt carried by [UnexpectedStatusError].
const maxErrBodySize = 4 << 10

var (
	// ErrSessionClosed is returned when starting a task on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrBuildRequest wraps request builder failures in the task response.
	ErrBuildRequest = errors.New("building request")

	// ErrTaskCancelled is carried by the response of a stopped task.
	ErrTaskCancelled = errors.New("task cancelled")

	// ErrGroupShutdown is recorded for tasks a shut down [Group] skipped.
	ErrGroupShutdown = errors.New("group shut down")

	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")

	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
)

// UnexpectedStatusError is returned by [CheckStatus] when the status
// code does not match the expected value.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// CheckStatus returns the captured failure of resp, or an
// [UnexpectedStatusError] when its status is not expCode.
func CheckStatus(resp *message.Response, expCode int) error {
	if resp == nil {
		return message.ErrNoBody
	}
	if resp.Err != nil {
		return resp.Err
	}
	if resp.StatusCode == expCode {
		return nil
	}

	err := ErrUnexpectedStatusCode
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	body := "unable to read body"
	if b, rerr := resp.Bytes(); rerr == nil {
		if len(b) > maxErrBodySize {
			b = b[:maxErrBodySize]
		}
		body = strings.ToValidUTF8(string(b), "")
	}

	return &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       body,
		Err:        err,
	}
}
