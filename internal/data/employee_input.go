package data

import "encoding/json"

// EmployeeInput is the body used to create an employee upstream, the
// validate tags are enforced at the service boundary
type EmployeeInput struct {
	Name   string `json:"name" validate:"notblank"`
	Salary int    `json:"salary" validate:"required,gt=0"`
	Age    int    `json:"age" validate:"required,min=16,max=75"`
	Title  string `json:"title" validate:"notblank"`
}

func (e *EmployeeInput) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeeInput) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// DeleteInput is the body of an upstream delete, the upstream deletes
// by name rather than by id
type DeleteInput struct {
	Name string `json:"name"`
}
