package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/data"
	"github.com/antonio-alexander/go-employee-facade/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	operationEmployeeRead   string = "employee_read"
	operationEmployeesRead  string = "employees_read"
	operationEmployeeCreate string = "employee_create"
	operationEmployeeDelete string = "employee_delete"
)

const (
	defaultTimeout                  = 30 * time.Second
	defaultDialTimeout              = 5 * time.Second
	defaultResponseHeaderTimeout    = 10 * time.Second
	defaultRetryInitialInterval     = 2 * time.Second
	defaultRetryMaxInterval         = 60 * time.Second
	defaultRetryMultiplier          = 2.0
	defaultRetryRandomizationFactor = 0.0
	defaultRetryMaxRetries          = 5
	defaultRateBurst                = 1
)

// Client speaks the envelope protocol of the upstream employee service,
// requests rejected with a 429 are retried with exponential backoff
type Client interface {
	// EmployeeRead returns false if the upstream doesn't know the id
	EmployeeRead(ctx context.Context, id string) (*data.Employee, bool, error)
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeCreate(ctx context.Context, employeeInput data.EmployeeInput) (*data.Employee, error)
	// EmployeeDelete deletes every employee with the given name, it returns
	// the success reported by the upstream
	EmployeeDelete(ctx context.Context, deleteInput data.DeleteInput) (bool, error)
}

type client struct {
	sync.RWMutex
	config struct {
		baseUrl                  string
		timeout                  time.Duration
		dialTimeout              time.Duration
		responseHeaderTimeout    time.Duration
		retryInitialInterval     time.Duration
		retryMaxInterval         time.Duration
		retryMultiplier          float64
		retryRandomizationFactor float64
		retryMaxRetries          int
		rateLimit                float64
		rateBurst                int
		sslCaFile                string
		sslCrtFile               string
		sslKeyFile               string
	}
	address string
	limiter *rate.Limiter
	counter utilities.Counter
	utilities.Logger
	*http.Client
}

func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{Client: &http.Client{}}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		case utilities.Counter:
			c.counter = p
		}
	}
	if c.Logger == nil {
		c.Logger = utilities.NewLogger()
	}
	c.config.timeout = defaultTimeout
	c.config.dialTimeout = defaultDialTimeout
	c.config.responseHeaderTimeout = defaultResponseHeaderTimeout
	c.config.retryInitialInterval = defaultRetryInitialInterval
	c.config.retryMaxInterval = defaultRetryMaxInterval
	c.config.retryMultiplier = defaultRetryMultiplier
	c.config.retryRandomizationFactor = defaultRetryRandomizationFactor
	c.config.retryMaxRetries = defaultRetryMaxRetries
	c.config.rateBurst = defaultRateBurst
	return c
}

func (c *client) count(key string) {
	if c.counter != nil {
		c.counter.Increment(key)
	}
}

func (c *client) newBackOff() (backoff.BackOff, uint) {
	c.RLock()
	defer c.RUnlock()

	backOff := &backoff.ExponentialBackOff{
		InitialInterval:     c.config.retryInitialInterval,
		RandomizationFactor: c.config.retryRandomizationFactor,
		Multiplier:          c.config.retryMultiplier,
		MaxInterval:         c.config.retryMaxInterval,
	}
	backOff.Reset()
	return backOff, uint(c.config.retryMaxRetries + 1)
}

func (c *client) doRequest(ctx context.Context, method, uri string, body []byte) ([]byte, error) {
	var reader io.Reader

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Set(data.HeaderCorrelationId, correlationId)
	}
	response, err := c.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	bytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &HttpError{
			StatusCode: response.StatusCode,
			Body:       string(bytes),
		}
	}
	return bytes, nil
}

// do executes the request, retrying while the upstream answers 429, and
// returns the data of a handled envelope (nil if the envelope had none)
func (c *client) do(ctx context.Context, operation, method, uri string, item any) (json.RawMessage, error) {
	var body []byte
	var attempts int
	var err error

	if item != nil {
		if body, err = json.Marshal(item); err != nil {
			return nil, err
		}
	}
	backOff, maxTries := c.newBackOff()
	response, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++
		c.count("upstream_" + operation)
		response, err := c.doRequest(ctx, method, uri, body)
		if err != nil && !isStatusCode(err, http.StatusTooManyRequests) {
			return nil, backoff.Permanent(err)
		}
		return response, err
	},
		backoff.WithBackOff(backOff),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.count("upstream_" + operation + "_retries")
			c.Info(ctx, "client: %s rate limited (attempt %d), retrying in %v",
				operation, attempts, next)
		}),
	)
	if err != nil {
		var errPermanent *backoff.PermanentError

		if errors.As(err, &errPermanent) {
			err = errPermanent.Err
		}
		switch {
		case isStatusCode(err, http.StatusTooManyRequests):
			err = &UnavailableError{Attempts: attempts, Err: err}
			c.Error(ctx, "client: %s: %s", operation, err)
		case isStatusCode(err, http.StatusNotFound):
			c.Debug(ctx, "client: %s: %s", operation, err)
		default:
			c.Error(ctx, "client: %s: %s", operation, err)
		}
		return nil, err
	}
	envelope := data.Envelope[json.RawMessage]{}
	if err := json.Unmarshal(response, &envelope); err != nil {
		return nil, errors.Wrapf(err, "decoding %s response", operation)
	}
	if !envelope.Handled() {
		err := &LogicalError{Envelope: envelope}
		c.Error(ctx, "client: %s: %s", operation, err)
		return nil, err
	}
	if envelope.Data == nil {
		return nil, nil
	}
	return *envelope.Data, nil
}

func (c *client) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	parseSeconds := func(key string, value *time.Duration) error {
		s, ok := envs[key]
		if !ok || s == "" {
			return nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", key)
		}
		*value = time.Duration(i) * time.Second
		return nil
	}
	parseDuration := func(key string, value *time.Duration) error {
		s, ok := envs[key]
		if !ok || s == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", key)
		}
		*value = d
		return nil
	}
	parseFloat := func(key string, value *float64) error {
		s, ok := envs[key]
		if !ok || s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", key)
		}
		*value = f
		return nil
	}
	parseInt := func(key string, value *int) error {
		s, ok := envs[key]
		if !ok || s == "" {
			return nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", key)
		}
		*value = i
		return nil
	}

	if baseUrl, ok := envs["CLIENT_BASE_URL"]; ok {
		c.config.baseUrl = baseUrl
	}
	for _, err := range []error{
		parseSeconds("CLIENT_TIMEOUT", &c.config.timeout),
		parseSeconds("CLIENT_DIAL_TIMEOUT", &c.config.dialTimeout),
		parseSeconds("CLIENT_RESPONSE_HEADER_TIMEOUT", &c.config.responseHeaderTimeout),
		parseDuration("CLIENT_RETRY_INITIAL_INTERVAL", &c.config.retryInitialInterval),
		parseDuration("CLIENT_RETRY_MAX_INTERVAL", &c.config.retryMaxInterval),
		parseFloat("CLIENT_RETRY_MULTIPLIER", &c.config.retryMultiplier),
		parseFloat("CLIENT_RETRY_RANDOMIZATION_FACTOR", &c.config.retryRandomizationFactor),
		parseInt("CLIENT_RETRY_MAX_RETRIES", &c.config.retryMaxRetries),
		parseFloat("CLIENT_RATE_LIMIT", &c.config.rateLimit),
		parseInt("CLIENT_RATE_BURST", &c.config.rateBurst),
	} {
		if err != nil {
			return err
		}
	}
	if c.config.retryMaxRetries < 0 {
		return errors.Errorf("CLIENT_RETRY_MAX_RETRIES must not be negative: %d",
			c.config.retryMaxRetries)
	}
	if f := c.config.retryRandomizationFactor; f < 0 || f >= 1 {
		return errors.Errorf("CLIENT_RETRY_RANDOMIZATION_FACTOR must be in [0,1): %v", f)
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	if c.config.baseUrl == "" {
		return errors.New("client: base url not configured")
	}
	baseUrl, err := url.Parse(c.config.baseUrl)
	if err != nil {
		return errors.Wrap(err, "client: parsing base url")
	}
	switch baseUrl.Scheme {
	default:
		return errors.Errorf("unsupported protocol: %s", baseUrl.Scheme)
	case "http", "https":
		c.address = strings.TrimSuffix(baseUrl.String(), "/")
	}
	transport, err := getTransport(c.config.dialTimeout, c.config.responseHeaderTimeout,
		c.config.sslCaFile, c.config.sslCrtFile, c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.Client.Transport = transport
	c.Client.Timeout = c.config.timeout
	if c.config.rateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(c.config.rateLimit), c.config.rateBurst)
		c.Info(ctx, "client: rate limited to %v requests/s", c.config.rateLimit)
	}
	c.Info(ctx, "client: upstream %s", c.address)
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func (c *client) EmployeeRead(ctx context.Context, id string) (*data.Employee, bool, error) {
	uri := c.address + fmt.Sprintf(data.RouteUpstreamEmployeeIdf, url.PathEscape(id))
	bytes, err := c.do(ctx, operationEmployeeRead, http.MethodGet, uri, nil)
	if err != nil {
		if isStatusCode(err, http.StatusNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if bytes == nil {
		return nil, false, ErrMissingData
	}
	employee := &data.Employee{}
	if err := json.Unmarshal(bytes, employee); err != nil {
		return nil, false, errors.Wrapf(err, "decoding employee %s", id)
	}
	return employee, true, nil
}

func (c *client) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	uri := c.address + data.RouteUpstreamEmployee
	bytes, err := c.do(ctx, operationEmployeesRead, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	employees := []*data.Employee{}
	if bytes == nil {
		return employees, nil
	}
	if err := json.Unmarshal(bytes, &employees); err != nil {
		return nil, errors.Wrap(err, "decoding employees")
	}
	return employees, nil
}

func (c *client) EmployeeCreate(ctx context.Context, employeeInput data.EmployeeInput) (*data.Employee, error) {
	uri := c.address + data.RouteUpstreamEmployee
	bytes, err := c.do(ctx, operationEmployeeCreate, http.MethodPost, uri, &employeeInput)
	if err != nil {
		return nil, err
	}
	if bytes == nil {
		return nil, ErrMissingData
	}
	employee := &data.Employee{}
	if err := json.Unmarshal(bytes, employee); err != nil {
		return nil, errors.Wrap(err, "decoding created employee")
	}
	return employee, nil
}

func (c *client) EmployeeDelete(ctx context.Context, deleteInput data.DeleteInput) (bool, error) {
	var deleted bool

	uri := c.address + data.RouteUpstreamEmployee
	bytes, err := c.do(ctx, operationEmployeeDelete, http.MethodDelete, uri, &deleteInput)
	if err != nil {
		return false, err
	}
	if bytes == nil {
		return false, nil
	}
	if err := json.Unmarshal(bytes, &deleted); err != nil {
		return false, errors.Wrap(err, "decoding delete result")
	}
	return deleted, nil
}
