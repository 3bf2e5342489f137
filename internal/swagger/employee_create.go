package swagger

import "github.com/antonio-alexander/go-employee-facade/internal/data"

// swagger:route POST /api/v1/employee Employee CreateEmployee
// Creates an employee.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   201: EmployeePostResponseCreated
//   400: ErrorResponse
//   403: ErrorResponse
//   502: ErrorResponse
//   503: ErrorResponse

// swagger:response EmployeePostResponseCreated
type EmployeePostResponseCreated struct {
	// in:body
	Employee data.Employee `json:"employee"`
}

// swagger:parameters CreateEmployee
type EmployeePostParams struct {
	// in:body
	EmployeeInput data.EmployeeInput `json:"employee_input"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
