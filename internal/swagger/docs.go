// Package Swagger go-employee-facade
//
// An API that serves searches and aggregates over an upstream employee
// service.
//
//   Schemes: http, https
//   Version: 1.0
//   Host: localhost:8080
//   BasePath:/
//
//   Consumes:
//   - application/json
//
//   Produces:
//   - application/json
//
// swagger:meta
package swagger
