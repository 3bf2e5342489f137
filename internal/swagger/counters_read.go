package swagger

import "github.com/antonio-alexander/go-employee-facade/internal/data"

// swagger:route GET /counters Counters ReadCounters
// Reads the upstream request counters.
//
//     Produces:
//     - application/json
//
// responses:
//   200: CountersGetResponseOk

// swagger:response CountersGetResponseOk
type CountersGetResponseOk struct {
	// in:body
	Counters data.Counters `json:"counters"`
}

// swagger:parameters ReadCounters
type CountersGetParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
