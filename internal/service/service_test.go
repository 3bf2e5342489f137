package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/client"
	"github.com/antonio-alexander/go-employee-facade/internal/data"
	"github.com/antonio-alexander/go-employee-facade/internal/logic"
	"github.com/antonio-alexander/go-employee-facade/internal/service"
	"github.com/antonio-alexander/go-employee-facade/internal/utilities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstream is a minimal in-memory employee service that speaks the
// envelope format
type upstream struct {
	sync.Mutex
	*httptest.Server
	employees      []*data.Employee
	calls          int
	correlationIds []string
	override       func(writer http.ResponseWriter, request *http.Request) bool
}

func writeEnvelope(writer http.ResponseWriter, statusCode int, status data.Status, item any, errorMessage string) {
	envelope := map[string]any{"status": status}
	if item != nil {
		envelope["data"] = item
	}
	if errorMessage != "" {
		envelope["error"] = errorMessage
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(envelope)
}

func newUpstream(t *testing.T, employees ...*data.Employee) *upstream {
	u := &upstream{employees: employees}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serveHTTP))
	t.Cleanup(u.Server.Close)
	return u
}

func (u *upstream) serveHTTP(writer http.ResponseWriter, request *http.Request) {
	u.Lock()
	defer u.Unlock()

	u.calls++
	u.correlationIds = append(u.correlationIds, request.Header.Get(data.HeaderCorrelationId))
	if u.override != nil && u.override(writer, request) {
		return
	}
	switch {
	case request.URL.Path == data.RouteUpstreamEmployee && request.Method == http.MethodGet:
		writeEnvelope(writer, http.StatusOK, data.StatusHandled, u.employees, "")
	case request.URL.Path == data.RouteUpstreamEmployee && request.Method == http.MethodPost:
		var employeeInput data.EmployeeInput
		if err := json.NewDecoder(request.Body).Decode(&employeeInput); err != nil {
			writeEnvelope(writer, http.StatusBadRequest, data.StatusError, nil, err.Error())
			return
		}
		employee := &data.Employee{
			Id:     uuid.New(),
			Name:   employeeInput.Name,
			Salary: employeeInput.Salary,
			Age:    employeeInput.Age,
			Title:  employeeInput.Title,
			Email:  strings.ToLower(employeeInput.Name) + "@company.com",
		}
		u.employees = append(u.employees, employee)
		writeEnvelope(writer, http.StatusOK, data.StatusHandled, employee, "")
	case request.URL.Path == data.RouteUpstreamEmployee && request.Method == http.MethodDelete:
		var deleteInput data.DeleteInput
		if err := json.NewDecoder(request.Body).Decode(&deleteInput); err != nil {
			writeEnvelope(writer, http.StatusBadRequest, data.StatusError, nil, err.Error())
			return
		}
		for i, employee := range u.employees {
			if employee.Name == deleteInput.Name {
				u.employees = append(u.employees[:i], u.employees[i+1:]...)
				writeEnvelope(writer, http.StatusOK, data.StatusHandled, true, "")
				return
			}
		}
		writeEnvelope(writer, http.StatusOK, data.StatusHandled, false, "")
	case strings.HasPrefix(request.URL.Path, data.RouteUpstreamEmployee+"/") && request.Method == http.MethodGet:
		id := strings.TrimPrefix(request.URL.Path, data.RouteUpstreamEmployee+"/")
		for _, employee := range u.employees {
			if employee.Id.String() == id {
				writeEnvelope(writer, http.StatusOK, data.StatusHandled, employee, "")
				return
			}
		}
		writer.WriteHeader(http.StatusNotFound)
	default:
		writer.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (u *upstream) Calls() int {
	u.Lock()
	defer u.Unlock()

	return u.calls
}

func (u *upstream) setOverride(override func(writer http.ResponseWriter, request *http.Request) bool) {
	u.Lock()
	defer u.Unlock()

	u.override = override
}

type serviceTest struct {
	*httptest.Server
	upstream *upstream
	counter  utilities.Counter
	timers   utilities.Timers
}

func newServiceTest(t *testing.T, envs map[string]string, employees ...*data.Employee) *serviceTest {
	u := newUpstream(t, employees...)
	configuration := map[string]string{
		"CLIENT_BASE_URL":               u.URL,
		"CLIENT_RETRY_INITIAL_INTERVAL": "1ms",
		"CLIENT_RETRY_MAX_INTERVAL":     "5ms",
		"SERVICE_TIMERS_ENABLED":        "true",
	}
	for key, value := range envs {
		configuration[key] = value
	}
	logger := utilities.NewLogger(io.Discard)
	counter := utilities.NewCounter()
	timers := utilities.NewTimers()
	c := client.NewClient(logger, counter)
	l := logic.NewLogic(c, logger)
	s := service.NewService(l, logger, counter, timers)
	for _, configurer := range []internal.Configurer{c, l, s} {
		require.Nil(t, configurer.Configure(configuration))
	}
	require.Nil(t, c.Open(context.Background()))
	require.Nil(t, l.Open(context.Background()))
	server := httptest.NewServer(s)
	t.Cleanup(func() {
		server.Close()
		_ = l.Close(context.Background())
		_ = c.Close(context.Background())
	})
	return &serviceTest{
		Server:   server,
		upstream: u,
		counter:  counter,
		timers:   timers,
	}
}

func (s *serviceTest) do(t *testing.T, method, route string, body any, v any) int {
	var reader io.Reader

	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			bytesIn, err := json.Marshal(body)
			require.Nil(t, err)
			reader = bytes.NewReader(bytesIn)
		}
	}
	request, err := http.NewRequest(method, s.URL+route, reader)
	require.Nil(t, err)
	response, err := s.Client().Do(request)
	require.Nil(t, err)
	defer response.Body.Close()
	bytesOut, err := io.ReadAll(response.Body)
	require.Nil(t, err)
	if v != nil && len(bytesOut) > 0 {
		require.Nil(t, json.Unmarshal(bytesOut, v), string(bytesOut))
	}
	return response.StatusCode
}

func employee(name string, salary int) *data.Employee {
	return &data.Employee{
		Id:     uuid.New(),
		Name:   name,
		Salary: salary,
		Age:    30,
		Title:  "Engineer",
		Email:  strings.ToLower(name) + "@company.com",
	}
}

func TestEmployeesRead(t *testing.T) {
	alice, bob := employee("Alice", 100), employee("Bob", 200)
	s := newServiceTest(t, nil, alice, bob)

	var employees []*data.Employee
	statusCode := s.do(t, http.MethodGet, data.RouteEmployees, nil, &employees)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, []*data.Employee{alice, bob}, employees)
}

func TestEmployeesReadEmpty(t *testing.T) {
	s := newServiceTest(t, nil)

	var employees []*data.Employee
	statusCode := s.do(t, http.MethodGet, data.RouteEmployees, nil, &employees)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.NotNil(t, employees)
	assert.Empty(t, employees)
}

func TestEmployeesSearch(t *testing.T) {
	s := newServiceTest(t, nil, employee("Alice", 100), employee("alicia", 200), employee("Bob", 300))

	var employees []*data.Employee
	statusCode := s.do(t, http.MethodGet, "/api/v1/employee/search/ALI", nil, &employees)
	assert.Equal(t, http.StatusOK, statusCode)
	if assert.Len(t, employees, 2) {
		assert.Equal(t, "Alice", employees[0].Name)
		assert.Equal(t, "alicia", employees[1].Name)
	}
}

func TestEmployeeRead(t *testing.T) {
	alice := employee("Alice", 100)
	s := newServiceTest(t, nil, alice)

	employeeRead := &data.Employee{}
	statusCode := s.do(t, http.MethodGet, "/api/v1/employee/"+alice.Id.String(), nil, employeeRead)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, alice, employeeRead)

	statusCode = s.do(t, http.MethodGet, "/api/v1/employee/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, statusCode)
}

func TestHighestSalary(t *testing.T) {
	s := newServiceTest(t, nil, employee("A", 100000), employee("B", 300000), employee("C", 200000))

	var highestSalary int
	statusCode := s.do(t, http.MethodGet, data.RouteEmployeesHighestSalary, nil, &highestSalary)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 300000, highestSalary)

	s = newServiceTest(t, nil)
	statusCode = s.do(t, http.MethodGet, data.RouteEmployeesHighestSalary, nil, nil)
	assert.Equal(t, http.StatusNotFound, statusCode)
}

func TestTopEarners(t *testing.T) {
	employees := []*data.Employee{
		employee("A", 200000),
		employee("B", 300000),
		employee("C", 100000),
	}
	s := newServiceTest(t, nil, employees...)

	var names []string
	statusCode := s.do(t, http.MethodGet, data.RouteEmployeesTopTenHighestPay, nil, &names)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, []string{"B", "A", "C"}, names)

	s = newServiceTest(t, map[string]string{"SERVICE_TOP_EARNERS_LIMIT": "2"}, employees...)
	statusCode = s.do(t, http.MethodGet, data.RouteEmployeesTopTenHighestPay, nil, &names)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, []string{"B", "A"}, names)
}

func TestEmployeeCreate(t *testing.T) {
	s := newServiceTest(t, nil)

	employeeCreated := &data.Employee{}
	statusCode := s.do(t, http.MethodPost, data.RouteEmployees, &data.EmployeeInput{
		Name:   "Alice",
		Salary: 100000,
		Age:    30,
		Title:  "Engineer",
	}, employeeCreated)
	assert.Equal(t, http.StatusCreated, statusCode)
	assert.NotEqual(t, uuid.Nil, employeeCreated.Id)
	assert.Equal(t, "Alice", employeeCreated.Name)
	assert.Equal(t, "alice@company.com", employeeCreated.Email)
}

func TestEmployeeCreateInvalid(t *testing.T) {
	s := newServiceTest(t, nil)

	cases := map[string]any{
		"blank_name":  &data.EmployeeInput{Name: "  ", Salary: 1, Age: 30, Title: "Engineer"},
		"zero_salary": &data.EmployeeInput{Name: "Alice", Salary: 0, Age: 30, Title: "Engineer"},
		"too_young":   &data.EmployeeInput{Name: "Alice", Salary: 1, Age: 15, Title: "Engineer"},
		"too_old":     &data.EmployeeInput{Name: "Alice", Salary: 1, Age: 76, Title: "Engineer"},
		"no_title":    &data.EmployeeInput{Name: "Alice", Salary: 1, Age: 30},
		"bad_json":    `{"name":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			errorResponse := &data.Error{}
			statusCode := s.do(t, http.MethodPost, data.RouteEmployees, body, errorResponse)
			assert.Equal(t, http.StatusBadRequest, statusCode)
			assert.NotEmpty(t, errorResponse.Error)
		})
	}
	assert.Equal(t, 0, s.upstream.Calls())
}

func TestEmployeeDelete(t *testing.T) {
	alice := employee("Alice", 100)
	s := newServiceTest(t, nil, alice, employee("Bob", 200))

	var name string
	statusCode := s.do(t, http.MethodDelete, "/api/v1/employee/"+alice.Id.String(), nil, &name)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, "Alice", name)

	statusCode = s.do(t, http.MethodDelete, "/api/v1/employee/"+alice.Id.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, statusCode)

	var employees []*data.Employee
	s.do(t, http.MethodGet, data.RouteEmployees, nil, &employees)
	if assert.Len(t, employees, 1) {
		assert.Equal(t, "Bob", employees[0].Name)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	s := newServiceTest(t, nil, employee("Alice", 100))

	cases := map[string]struct {
		override   func(writer http.ResponseWriter, request *http.Request) bool
		statusCode int
	}{
		"upstream_error": {
			override: func(writer http.ResponseWriter, _ *http.Request) bool {
				writer.WriteHeader(http.StatusInternalServerError)
				return true
			},
			statusCode: http.StatusBadGateway,
		},
		"logical_error": {
			override: func(writer http.ResponseWriter, _ *http.Request) bool {
				writeEnvelope(writer, http.StatusOK, data.StatusError, nil, "unable to read employees")
				return true
			},
			statusCode: http.StatusBadGateway,
		},
		"rate_limited": {
			override: func(writer http.ResponseWriter, _ *http.Request) bool {
				writer.WriteHeader(http.StatusTooManyRequests)
				return true
			},
			statusCode: http.StatusServiceUnavailable,
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			s.upstream.setOverride(c.override)
			defer s.upstream.setOverride(nil)

			errorResponse := &data.Error{}
			statusCode := s.do(t, http.MethodGet, data.RouteEmployees, nil, errorResponse)
			assert.Equal(t, c.statusCode, statusCode)
			assert.NotEmpty(t, errorResponse.Error)
		})
	}
}

func TestMutateDisabled(t *testing.T) {
	alice := employee("Alice", 100)
	s := newServiceTest(t, map[string]string{"MUTATE_DISABLED": "true"}, alice)

	statusCode := s.do(t, http.MethodPost, data.RouteEmployees, &data.EmployeeInput{
		Name:   "Bob",
		Salary: 1,
		Age:    30,
		Title:  "Engineer",
	}, nil)
	assert.Equal(t, http.StatusForbidden, statusCode)
	statusCode = s.do(t, http.MethodDelete, "/api/v1/employee/"+alice.Id.String(), nil, nil)
	assert.Equal(t, http.StatusForbidden, statusCode)
	assert.Equal(t, 0, s.upstream.Calls())
}

func TestCorrelationId(t *testing.T) {
	s := newServiceTest(t, nil, employee("Alice", 100))

	request, err := http.NewRequest(http.MethodGet, s.URL+data.RouteEmployees, nil)
	require.Nil(t, err)
	request.Header.Set(data.HeaderCorrelationId, "abc-123")
	response, err := s.Client().Do(request)
	require.Nil(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)

	s.do(t, http.MethodGet, data.RouteEmployees, nil, nil)

	s.upstream.Lock()
	defer s.upstream.Unlock()
	if assert.Len(t, s.upstream.correlationIds, 2) {
		assert.Equal(t, "abc-123", s.upstream.correlationIds[0])
		assert.NotEmpty(t, s.upstream.correlationIds[1])
		assert.NotEqual(t, "abc-123", s.upstream.correlationIds[1])
	}
}

func TestCountersAndTimers(t *testing.T) {
	s := newServiceTest(t, nil, employee("Alice", 100))

	s.do(t, http.MethodGet, data.RouteEmployees, nil, nil)
	s.do(t, http.MethodGet, data.RouteEmployeesHighestSalary, nil, nil)

	counters := &data.Counters{}
	statusCode := s.do(t, http.MethodGet, data.RouteCounters, nil, counters)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 2, counters.Counts["upstream_employees_read"])

	timers := &data.Timers{}
	statusCode = s.do(t, http.MethodGet, data.RouteTimers, nil, timers)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Contains(t, timers.Totals, "employees_read")
	assert.Contains(t, timers.Totals, "highest_salary")

	statusCode = s.do(t, http.MethodDelete, data.RouteCounters, nil, nil)
	assert.Equal(t, http.StatusNoContent, statusCode)
	assert.Equal(t, 0, s.counter.Read("upstream_employees_read"))

	statusCode = s.do(t, http.MethodDelete, data.RouteTimers, nil, nil)
	assert.Equal(t, http.StatusNoContent, statusCode)
	assert.Empty(t, s.timers.ReadAll().Totals)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newServiceTest(t, nil)

	statusCode := s.do(t, http.MethodPut, data.RouteEmployees, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, statusCode)
	statusCode = s.do(t, http.MethodPost, data.RouteEmployeesHighestSalary, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, statusCode)
}

func TestVersion(t *testing.T) {
	s := newServiceTest(t, nil)

	response, err := s.Client().Get(s.URL + "/")
	require.Nil(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.Nil(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), "Version:")
}

func TestOpenWithoutLogic(t *testing.T) {
	s := service.NewService(utilities.NewLogger(io.Discard))
	assert.NotNil(t, s.Open(context.Background()))
}
