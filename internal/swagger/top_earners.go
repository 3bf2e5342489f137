package swagger

// swagger:route GET /api/v1/employee/topTenHighestEarningEmployeeNames Employee ReadTopEarners
// Reads the names of the highest earning employees, highest salary first.
//
//     Produces:
//     - application/json
//
// responses:
//   200: TopEarnersGetResponseOk
//   502: ErrorResponse
//   503: ErrorResponse

// swagger:response TopEarnersGetResponseOk
type TopEarnersGetResponseOk struct {
	// in:body
	Names []string `json:"names"`
}

// swagger:parameters ReadTopEarners
type TopEarnersGetParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
