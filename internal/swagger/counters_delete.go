package swagger

// swagger:route DELETE /counters Counters DeleteCounters
// Resets all counters.
//
// responses:
//   204: CountersDeleteResponseNoContent

// swagger:response CountersDeleteResponseNoContent
type CountersDeleteResponseNoContent struct{}

// swagger:parameters DeleteCounters
type CountersDeleteParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
