package swagger

// swagger:route DELETE /api/v1/employee/{id} Employee DeleteEmployee
// Deletes an employee using its id, responds with the deleted employee's name.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeDeleteResponseOk
//   403: ErrorResponse
//   404: EmployeeDeleteResponseNotFound
//   502: ErrorResponse
//   503: ErrorResponse

// swagger:response EmployeeDeleteResponseOk
type EmployeeDeleteResponseOk struct {
	// in:body
	Name string `json:"name"`
}

// swagger:response EmployeeDeleteResponseNotFound
type EmployeeDeleteResponseNotFound struct{}

// swagger:parameters DeleteEmployee
type EmployeeDeleteParams struct {
	// in:path
	Id string `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
