package swagger

import "github.com/antonio-alexander/go-employee-facade/internal/data"

// swagger:route GET /api/v1/employee Employee ReadEmployees
// Reads all employees.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesGetResponseOk
//   502: ErrorResponse
//   503: ErrorResponse

// swagger:response EmployeesGetResponseOk
type EmployeesGetResponseOk struct {
	// in:body
	Employees []data.Employee `json:"employees"`
}

// swagger:response ErrorResponse
type ErrorResponse struct {
	// in:body
	Error data.Error `json:"error"`
}

// swagger:parameters ReadEmployees
type EmployeesGetParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
