package swagger

import "github.com/antonio-alexander/go-employee-facade/internal/data"

// swagger:route GET /api/v1/employee/search/{searchString} Employee SearchEmployees
// Searches employees by a case insensitive fragment of their name.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesSearchResponseOk
//   502: ErrorResponse
//   503: ErrorResponse

// swagger:response EmployeesSearchResponseOk
type EmployeesSearchResponseOk struct {
	// in:body
	Employees []data.Employee `json:"employees"`
}

// swagger:parameters SearchEmployees
type EmployeesSearchParams struct {
	// in:path
	SearchString string `json:"searchString"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
