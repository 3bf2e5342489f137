package data

// upstream routes
const (
	RouteUpstreamEmployee    string = "/employee"
	RouteUpstreamEmployeeIdf string = RouteUpstreamEmployee + "/%s"
)

// public routes
const (
	RouteEmployees                 string = "/api/v1/employee"
	RouteEmployeesSearch           string = RouteEmployees + "/search/{" + PathSearchString + "}"
	RouteEmployeesSearchf          string = RouteEmployees + "/search/%s"
	RouteEmployeesHighestSalary    string = RouteEmployees + "/highestSalary"
	RouteEmployeesTopTenHighestPay string = RouteEmployees + "/topTenHighestEarningEmployeeNames"
	RouteEmployeesId               string = RouteEmployees + "/{" + PathId + "}"
	RouteEmployeesIdf              string = RouteEmployees + "/%s"
	RouteTimers                    string = "/timers"
	RouteCounters                  string = "/counters"
)

const (
	PathId           string = "id"
	PathSearchString string = "searchString"
)

const HeaderCorrelationId string = "Correlation-Id"

type Timers struct {
	Totals   map[string]int64 `json:"totals,omitempty"`
	Averages map[string]int64 `json:"averages,omitempty"`
}

type Counters struct {
	Counts map[string]int `json:"counts,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
