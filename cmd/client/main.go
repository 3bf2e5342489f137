package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/client"
	"github.com/antonio-alexander/go-employee-facade/internal/data"
	"github.com/antonio-alexander/go-employee-facade/internal/logic"
	"github.com/antonio-alexander/go-employee-facade/internal/utilities"

	"github.com/pkg/errors"
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

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

func Main(args []string, envs map[string]string, osSignal chan (os.Signal)) error {
	fmt.Printf("client: go-employee-facade v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	// the client talks to the upstream directly, logs go to stdout
	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}

	//create client
	client := client.NewClient(logger)
	if err := client.Configure(envs); err != nil {
		return err
	}
	if err := client.Open(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()

	//create logic
	logic := logic.NewLogic(client, logger)
	if err := logic.Configure(envs); err != nil {
		return err
	}
	if err := logic.Open(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := logic.Close(context.Background()); err != nil {
			fmt.Printf("error while closing logic: %s\n", err)
		}
	}()

	// cancel the command if interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-osSignal:
			cancel()
		}
	}()
	ctx = internal.CtxWithCorrelationId(ctx, internal.GenerateId())

	// execute command
	switch command := envs["COMMAND"]; command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "employees_read":
		employees, err := logic.EmployeesRead(ctx)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employees_search":
		employees, err := logic.EmployeesSearch(ctx, envs["EMPLOYEE_NAME"])
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employee_read":
		employee, found, err := logic.EmployeeRead(ctx, envs["EMPLOYEE_ID"])
		if err != nil {
			return err
		}
		if !found {
			return errors.Errorf("employee not found: %s", envs["EMPLOYEE_ID"])
		}
		return printJson(employee)
	case "highest_salary":
		highestSalary, found, err := logic.HighestSalary(ctx)
		if err != nil {
			return err
		}
		if !found {
			return errors.New("no employees found")
		}
		return printJson(highestSalary)
	case "top_earners":
		limit := 10
		if s := envs["TOP_EARNERS_LIMIT"]; s != "" {
			i, err := strconv.Atoi(s)
			if err != nil {
				return errors.Wrap(err, "parsing TOP_EARNERS_LIMIT")
			}
			limit = i
		}
		names, err := logic.TopEarners(ctx, limit)
		if err != nil {
			return err
		}
		return printJson(names)
	case "employee_create":
		salary, _ := strconv.Atoi(envs["EMPLOYEE_SALARY"])
		age, _ := strconv.Atoi(envs["EMPLOYEE_AGE"])
		employee, err := logic.EmployeeCreate(ctx, data.EmployeeInput{
			Name:   envs["EMPLOYEE_NAME"],
			Salary: salary,
			Age:    age,
			Title:  envs["EMPLOYEE_TITLE"],
		})
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_delete":
		name, deleted, err := logic.EmployeeDelete(ctx, envs["EMPLOYEE_ID"])
		if err != nil {
			return err
		}
		if !deleted {
			return errors.Errorf("employee not deleted: %s", envs["EMPLOYEE_ID"])
		}
		return printJson(name)
	}
}
