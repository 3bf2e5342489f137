package data

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusHandled Status = "Successfully processed request."
	StatusError   Status = "Failed to process request."
)

func (s Status) String() string {
	return string(s)
}

func (s *Status) UnmarshalJSON(bytes []byte) error {
	var value string

	if err := json.Unmarshal(bytes, &value); err != nil {
		return err
	}
	switch status := Status(value); status {
	default:
		return errors.Errorf("unsupported status: %q", value)
	case StatusHandled, StatusError:
		*s = status
	}
	return nil
}

// Envelope wraps every upstream response; data is nil when the upstream
// omitted it or sent null
type Envelope[T any] struct {
	Data   *T     `json:"data,omitempty"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (e Envelope[T]) Handled() bool {
	return e.Status == StatusHandled
}
