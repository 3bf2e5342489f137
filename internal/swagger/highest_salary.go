package swagger

// swagger:route GET /api/v1/employee/highestSalary Employee ReadHighestSalary
// Reads the highest salary of all employees.
//
//     Produces:
//     - application/json
//
// responses:
//   200: HighestSalaryGetResponseOk
//   404: HighestSalaryGetResponseNotFound
//   502: ErrorResponse
//   503: ErrorResponse

// swagger:response HighestSalaryGetResponseOk
type HighestSalaryGetResponseOk struct {
	// in:body
	HighestSalary int `json:"highest_salary"`
}

// swagger:response HighestSalaryGetResponseNotFound
type HighestSalaryGetResponseNotFound struct{}

// swagger:parameters ReadHighestSalary
type HighestSalaryGetParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
