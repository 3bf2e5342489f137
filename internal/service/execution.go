package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/client"
	"github.com/antonio-alexander/go-employee-facade/internal/data"
	"github.com/antonio-alexander/go-employee-facade/internal/logic"

	"github.com/pkg/errors"
)

func getCorrelationId(request *http.Request) string {
	if correlationId := request.Header.Get(data.HeaderCorrelationId); correlationId != "" {
		return correlationId
	}
	return internal.GenerateId()
}

func errorStatusCode(err error) int {
	var errValidation *ValidationError
	var errUnavailable *client.UnavailableError
	var errHttp *client.HttpError
	var errLogical *client.LogicalError

	switch {
	default:
		return http.StatusInternalServerError
	case errors.As(err, &errValidation):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrMutateDisabled):
		return http.StatusForbidden
	case errors.As(err, &errUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &errHttp), errors.As(err, &errLogical):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
}

// handleResponse writes item as json with the given status code, if err
// is non-nil the status code is derived from the error instead; a nil
// item writes only the status code
func handleResponse(writer http.ResponseWriter, statusCode int, err error, items ...interface{}) {
	var bytes []byte

	if err == nil && len(items) > 0 {
		bytes, err = json.Marshal(items[0])
	}
	if err != nil {
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(errorStatusCode(err))
		bytes, err = json.Marshal(&data.Error{Error: err.Error()})
		if err != nil {
			fmt.Printf("error handling response: %s\n", err)
			return
		}
		if _, err := writer.Write(bytes); err != nil {
			fmt.Printf("error handling response: %s\n", err)
		}
		return
	}
	if len(items) == 0 {
		writer.WriteHeader(statusCode)
		return
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}
