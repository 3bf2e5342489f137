package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/data"
	"github.com/antonio-alexander/go-employee-facade/internal/logic"
	"github.com/antonio-alexander/go-employee-facade/internal/utilities"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultTopEarnersLimit = 10
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
		timersEnabled    bool
		topEarnersLimit  int
	}
	ctx      context.Context
	cancel   context.CancelFunc
	validate *validator.Validate
	*mux.Router
	*http.Server
	counter utilities.Counter
	timers  utilities.Timers
	utilities.Logger
	logic.Logic
}

func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	http.Handler
} {
	router := mux.NewRouter()
	s := &service{
		Router:   router,
		Server:   &http.Server{Handler: router},
		validate: newValidator(),
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case logic.Logic:
			s.Logic = p
		case utilities.Counter:
			s.counter = p
		case utilities.Timers:
			s.timers = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	if s.Logger == nil {
		s.Logger = utilities.NewLogger()
	}
	s.config.shutdownTimeout = defaultShutdownTimeout
	s.config.topEarnersLimit = defaultTopEarnersLimit
	s.buildRoutes()
	return s
}

func (s *service) launchServer() error {
	started := make(chan struct{})
	chErr := make(chan error, 1)
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		defer close(chErr)

		if !s.config.corsDisabled {
			s.Server.Handler = cors.New(cors.Options{
				AllowedOrigins:   s.config.allowedOrigins,
				AllowCredentials: s.config.allowCredentials,
				AllowedMethods:   s.config.allowedMethods,
				AllowedHeaders:   s.config.allowedHeaders,
				Debug:            s.config.corsDebug,
			}).Handler(s.Router)
		}
		close(started)
		if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			chErr <- err
		}
	}()
	<-started
	select {
	case err, ok := <-chErr:
		// the server stopped within a second of starting, most likely
		// because the port is already in use
		if ok {
			return err
		}
		return errors.New("server closed unexpectedly")
	case <-time.After(time.Second):
		address := net.JoinHostPort(s.config.address, s.config.port)
		s.Info(s.ctx, "started server: %s", address)
		return nil
	}
}

// startTimer starts a timer for group when timers are enabled, the
// returned function stops it
func (s *service) startTimer(ctx context.Context, group string) func() {
	if !s.config.timersEnabled || s.timers == nil {
		return func() {}
	}
	timerIndex := s.timers.Start(group)
	return func() {
		elapsedTime := s.timers.Stop(group, timerIndex)
		s.Trace(ctx, "%s took %v", group, time.Duration(elapsedTime)*time.Nanosecond)
	}
}

func (s *service) endpointDefault() func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprintf(writer,
			"go-employee-facade\n"+
				"Version: \"%s\"\n"+
				"Git Commit: \"%s\"\n"+
				"Git Branch: \"%s\"\n",
			Version, GitCommit, GitBranch)
	}
}

func (s *service) endpointEmployeesRead(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employees_read")()
	s.Info(ctx, "received request to read all employees")
	employees, err := s.EmployeesRead(ctx)
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	handleResponse(writer, http.StatusOK, nil, employees)
	s.Trace(ctx, "executed employees_read: %d", len(employees))
}

func (s *service) endpointEmployeesSearch(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employees_search")()
	searchString := mux.Vars(request)[data.PathSearchString]
	s.Info(ctx, "received request to search employees by name: %s", searchString)
	employees, err := s.EmployeesSearch(ctx, searchString)
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	handleResponse(writer, http.StatusOK, nil, employees)
	s.Trace(ctx, "executed employees_search: %d", len(employees))
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_read")()
	id := mux.Vars(request)[data.PathId]
	s.Info(ctx, "received request to read employee: %s", id)
	employee, found, err := s.EmployeeRead(ctx, id)
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	if !found {
		handleResponse(writer, http.StatusNotFound, nil)
		return
	}
	handleResponse(writer, http.StatusOK, nil, employee)
	s.Trace(ctx, "executed employee_read: %s", id)
}

func (s *service) endpointHighestSalary(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "highest_salary")()
	s.Info(ctx, "received request to read highest salary")
	highestSalary, found, err := s.HighestSalary(ctx)
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	if !found {
		handleResponse(writer, http.StatusNotFound, nil)
		return
	}
	handleResponse(writer, http.StatusOK, nil, highestSalary)
	s.Trace(ctx, "executed highest_salary: %d", highestSalary)
}

func (s *service) endpointTopEarners(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "top_earners")()
	s.RLock()
	limit := s.config.topEarnersLimit
	s.RUnlock()
	s.Info(ctx, "received request to read top %d earning employee names", limit)
	names, err := s.TopEarners(ctx, limit)
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	handleResponse(writer, http.StatusOK, nil, names)
	s.Trace(ctx, "executed top_earners: %d", len(names))
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	var employeeInput data.EmployeeInput

	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_create")()
	s.Info(ctx, "received request to create employee")
	bytes, err := io.ReadAll(request.Body)
	defer request.Body.Close()
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	if err := json.Unmarshal(bytes, &employeeInput); err != nil {
		handleResponse(writer, 0, &ValidationError{Err: err})
		return
	}
	if err := validateEmployeeInput(s.validate, &employeeInput); err != nil {
		s.Debug(ctx, "employee_create rejected: %s", err)
		handleResponse(writer, 0, err)
		return
	}
	employee, err := s.EmployeeCreate(ctx, employeeInput)
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	handleResponse(writer, http.StatusCreated, nil, employee)
	s.Trace(ctx, "executed employee_create: %s", employee.Id)
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.startTimer(ctx, "employee_delete")()
	id := mux.Vars(request)[data.PathId]
	s.Info(ctx, "received request to delete employee: %s", id)
	name, deleted, err := s.EmployeeDelete(ctx, id)
	if err != nil {
		handleResponse(writer, 0, err)
		return
	}
	if !deleted {
		handleResponse(writer, http.StatusNotFound, nil)
		return
	}
	handleResponse(writer, http.StatusOK, nil, name)
	s.Trace(ctx, "executed employee_delete: %s", id)
}

func (s *service) endpointTimersRead(writer http.ResponseWriter, _ *http.Request) {
	if s.timers == nil {
		handleResponse(writer, http.StatusOK, nil, &data.Timers{})
		return
	}
	handleResponse(writer, http.StatusOK, nil, s.timers.ReadAll())
}

func (s *service) endpointTimersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	if s.timers != nil {
		s.timers.Clear()
	}
	handleResponse(writer, http.StatusNoContent, nil)
	s.Trace(ctx, "executed timers_clear")
}

func (s *service) endpointCountersRead(writer http.ResponseWriter, _ *http.Request) {
	if s.counter == nil {
		handleResponse(writer, http.StatusOK, nil, &data.Counters{})
		return
	}
	handleResponse(writer, http.StatusOK, nil, s.counter.ReadAll())
}

func (s *service) endpointCountersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	if s.counter != nil {
		s.counter.Reset()
	}
	handleResponse(writer, http.StatusNoContent, nil)
	s.Trace(ctx, "executed counters_clear")
}

// buildRoutes registers the fixed employee routes ahead of the {id} route
// since the router matches in registration order
func (s *service) buildRoutes() {
	s.Router.HandleFunc("/", s.endpointDefault())
	s.Router.HandleFunc(data.RouteEmployees, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointEmployeesRead(w, r)
		case http.MethodPost:
			s.endpointEmployeeCreate(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteEmployeesSearch, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointEmployeesSearch(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteEmployeesHighestSalary, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointHighestSalary(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteEmployeesTopTenHighestPay, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointTopEarners(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteEmployeesId, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointEmployeeRead(w, r)
		case http.MethodDelete:
			s.endpointEmployeeDelete(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteTimers, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointTimersRead(w, r)
		case http.MethodDelete:
			s.endpointTimersClear(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteCounters, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointCountersRead(w, r)
		case http.MethodDelete:
			s.endpointCountersClear(w, r)
		}
	})
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port, ok := envs["SERVICE_PORT"]; ok {
		s.config.port = port
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins, ok := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; ok && allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods, ok := envs["SERVICE_CORS_ALLOWED_METHODS"]; ok && allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders, ok := envs["SERVICE_CORS_ALLOWED_HEADERS"]; ok && allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	if timersEnabled := envs["SERVICE_TIMERS_ENABLED"]; timersEnabled != "" {
		s.config.timersEnabled, _ = strconv.ParseBool(timersEnabled)
	}
	if topEarnersLimit := envs["SERVICE_TOP_EARNERS_LIMIT"]; topEarnersLimit != "" {
		limit, err := strconv.Atoi(topEarnersLimit)
		if err != nil {
			return errors.Wrap(err, "parsing SERVICE_TOP_EARNERS_LIMIT")
		}
		s.config.topEarnersLimit = limit
	}
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.Logic == nil {
		return errors.New("service: logic not provided")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Server.Addr = net.JoinHostPort(s.config.address, s.config.port)
	if err := s.launchServer(); err != nil {
		s.cancel()
		return err
	}
	return nil
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		s.Error(ctx, "error while shutting down the server: %s", err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.Wait()
	return nil
}
