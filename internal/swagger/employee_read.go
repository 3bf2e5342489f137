package swagger

import "github.com/antonio-alexander/go-employee-facade/internal/data"

// swagger:route GET /api/v1/employee/{id} Employee ReadEmployee
// Reads an employee using its id.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeGetResponseOk
//   404: EmployeeGetResponseNotFound
//   502: ErrorResponse
//   503: ErrorResponse

// swagger:response EmployeeGetResponseOk
type EmployeeGetResponseOk struct {
	// in:body
	Employee data.Employee `json:"employee"`
}

// swagger:response EmployeeGetResponseNotFound
type EmployeeGetResponseNotFound struct{}

// swagger:parameters ReadEmployee
type EmployeeGetParams struct {
	// in:path
	Id string `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
