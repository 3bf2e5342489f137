package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/antonio-alexander/go-employee-facade/internal/data"

	"github.com/pkg/errors"
)

var ErrMissingData = errors.New("upstream response is missing data")

// HttpError is returned for any non-2xx status; Body is the raw
// response body
type HttpError struct {
	StatusCode int
	Body       string
}

func (e *HttpError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: %d %s",
			e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("upstream http error: %d %s: %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// LogicalError is returned when the upstream answered 2xx but the
// envelope status is an error
type LogicalError struct {
	Envelope data.Envelope[json.RawMessage]
}

func (e *LogicalError) Error() string {
	if e.Envelope.Error == "" {
		return fmt.Sprintf("upstream error: %s", e.Envelope.Status)
	}
	return fmt.Sprintf("upstream error: %s: %s", e.Envelope.Status, e.Envelope.Error)
}

// UnavailableError is returned once the rate limit retry budget is
// exhausted, Err is the error of the last attempt
type UnavailableError struct {
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable after %d attempts: %s", e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func isStatusCode(err error, statusCode int) bool {
	var errHttp *HttpError

	return errors.As(err, &errHttp) && errHttp.StatusCode == statusCode
}
