package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/data"
	"github.com/antonio-alexander/go-employee-facade/internal/utilities"

	"github.com/pkg/errors"
)

const defaultFacadeAddress string = "http://localhost:8080"

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

func main() {
	args := os.Args[1:]
	envs, err := internal.Envs(".env", os.Getenv("ENV_FILE"))
	if err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

// scenarioRateLimitBurst has every client hit the aggregate endpoints at
// once so the upstream starts rate limiting, then reports how many upstream
// attempts were retries and how the facade answered
func scenarioRateLimitBurst(ctx context.Context, envs map[string]string, logger utilities.Logger,
	address string, clients ...*http.Client) error {
	const correlationId string = "scenario_rate_limit_burst"
	const minClients int = 2

	var readInterval time.Duration = 100 * time.Millisecond
	var scenarioDuration time.Duration = 10 * time.Second
	var wg sync.WaitGroup
	var mu sync.Mutex

	if s := envs["SCENARIO_READ_INTERVAL"]; s != "" {
		i, _ := strconv.Atoi(s)
		readInterval = time.Duration(i) * time.Millisecond
	}
	if s := envs["SCENARIO_DURATION"]; s != "" {
		i, _ := strconv.Atoi(s)
		scenarioDuration = time.Duration(i) * time.Second
	}
	if len(clients) < minClients {
		return errors.New("not enough clients provided")
	}
	ctx = internal.CtxWithCorrelationId(ctx, correlationId)

	//clear counters so only this scenario is reported
	if _, _, err := internal.DoRequest(clients[0], address+data.RouteCounters,
		http.MethodDelete, nil); err != nil {
		return err
	}

	//generate start/stop channels
	start, stop := make(chan struct{}), make(chan struct{})
	statusCodes := make(map[int]int)
	routes := []string{
		data.RouteEmployees,
		data.RouteEmployeesHighestSalary,
		data.RouteEmployeesTopTenHighestPay,
	}
	for i, client := range clients {
		wg.Add(1)
		go func(clientNumber int, client *http.Client) {
			defer wg.Done()

			route := routes[clientNumber%len(routes)]
			tRead := time.NewTicker(readInterval)
			defer tRead.Stop()
			<-start
			for {
				select {
				case <-stop:
					return
				case <-tRead.C:
					statusCode, _, err := internal.DoRequest(client, address+route, http.MethodGet, nil)
					if err != nil {
						logger.Error(ctx, "client %d: error while reading %s: %s", clientNumber, route, err)
						continue
					}
					mu.Lock()
					statusCodes[statusCode]++
					mu.Unlock()
				}
			}
		}(i, client)
	}
	close(start)

	//allow go routines to run
	select {
	case <-ctx.Done():
	case <-time.After(scenarioDuration):
	}

	//stop go routines
	close(stop)
	wg.Wait()

	counters := &data.Counters{}
	if _, _, err := internal.DoRequest(clients[0], address+data.RouteCounters,
		http.MethodGet, nil, counters); err != nil {
		return err
	}
	for key, count := range counters.Counts {
		logger.Info(ctx, "counter %s: %d", key, count)
	}
	attempts, retries := counters.Counts["upstream_employees_read"], counters.Counts["upstream_employees_read_retries"]
	if attempts > 0 {
		logger.Info(ctx, "upstream retry ratio (%d/%d): %0.2f%%",
			retries, attempts, float64(retries)/float64(attempts)*100)
	}
	for statusCode, count := range statusCodes {
		logger.Info(ctx, "facade responded %d: %d times", statusCode, count)
	}
	return nil
}

func Main(args []string, envs map[string]string, osSignal chan (os.Signal)) error {
	var clients []*http.Client
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create logger
	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}

	//print version info
	logger.Info(ctx, "scenarios: go-employee-facade v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	address := envs["FACADE_ADDRESS"]
	if address == "" {
		address = defaultFacadeAddress
	}
	nClients, _ := strconv.Atoi(envs["N_CLIENTS"])
	for range nClients {
		clients = append(clients, &http.Client{Timeout: time.Minute})
	}

	// execute scenario
	switch scenario := envs["SCENARIO"]; scenario {
	default:
		return errors.Errorf("unsupported scenario: %s", scenario)
	case "rate_limit_burst":
		logger.Info(ctx, "executing %s scenario", scenario)
		if err := scenarioRateLimitBurst(ctx, envs, logger, address, clients...); err != nil {
			logger.Error(ctx, "error while executing %s scenario: %s", scenario, err)
		}
	}
	cancel()
	wg.Wait()
	return nil
}
