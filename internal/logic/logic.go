package logic

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/client"
	"github.com/antonio-alexander/go-employee-facade/internal/data"
	"github.com/antonio-alexander/go-employee-facade/internal/utilities"

	"github.com/pkg/errors"
)

var ErrMutateDisabled = errors.New("mutation disabled")

// Logic derives searches and aggregates from the full employee list, every
// operation reads the upstream, nothing is kept between calls
type Logic interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeesSearch(ctx context.Context, name string) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id string) (*data.Employee, bool, error)
	HighestSalary(ctx context.Context) (int, bool, error)
	TopEarners(ctx context.Context, n int) ([]string, error)
	EmployeeCreate(ctx context.Context, employeeInput data.EmployeeInput) (*data.Employee, error)
	// EmployeeDelete looks up the employee then deletes it by name, the
	// name is returned along with whether the upstream deleted it
	EmployeeDelete(ctx context.Context, id string) (string, bool, error)
}

type logic struct {
	sync.RWMutex
	client.Client
	utilities.Logger
	config struct {
		mutateDisabled bool
	}
}

func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case client.Client:
			l.Client = p
		case utilities.Logger:
			l.Logger = p
		}
	}
	if l.Logger == nil {
		l.Logger = utilities.NewLogger()
	}
	return l
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	if mutateDisabled, ok := envs["MUTATE_DISABLED"]; ok && mutateDisabled != "" {
		b, err := strconv.ParseBool(mutateDisabled)
		if err != nil {
			return errors.Wrap(err, "parsing MUTATE_DISABLED")
		}
		l.config.mutateDisabled = b
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.Lock()
	defer l.Unlock()

	if l.Client == nil {
		return errors.New("logic: client not provided")
	}
	if l.config.mutateDisabled {
		l.Info(ctx, "logic: mutation disabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) mutateDisabled() bool {
	l.RLock()
	defer l.RUnlock()

	return l.config.mutateDisabled
}

func (l *logic) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	l.Debug(ctx, "logic: reading all employees")
	return l.Client.EmployeesRead(ctx)
}

func (l *logic) EmployeesSearch(ctx context.Context, name string) ([]*data.Employee, error) {
	l.Debug(ctx, "logic: searching employees by name %q", name)
	employees, err := l.Client.EmployeesRead(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.ToLower(name)
	matches := make([]*data.Employee, 0, len(employees))
	for _, employee := range employees {
		if strings.Contains(strings.ToLower(employee.Name), name) {
			matches = append(matches, employee)
		}
	}
	return matches, nil
}

func (l *logic) EmployeeRead(ctx context.Context, id string) (*data.Employee, bool, error) {
	l.Debug(ctx, "logic: reading employee %s", id)
	return l.Client.EmployeeRead(ctx, id)
}

func (l *logic) HighestSalary(ctx context.Context) (int, bool, error) {
	l.Debug(ctx, "logic: reading highest salary")
	employees, err := l.Client.EmployeesRead(ctx)
	if err != nil {
		return 0, false, err
	}
	if len(employees) == 0 {
		return 0, false, nil
	}
	highestSalary := employees[0].Salary
	for _, employee := range employees[1:] {
		if employee.Salary > highestSalary {
			highestSalary = employee.Salary
		}
	}
	return highestSalary, true, nil
}

// TopEarners returns the names of the n highest paid employees, employees
// with equal salaries keep the order of the upstream
func (l *logic) TopEarners(ctx context.Context, n int) ([]string, error) {
	l.Debug(ctx, "logic: reading top %d earning employee names", n)
	employees, err := l.Client.EmployeesRead(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []string{}, nil
	}
	sorted := make([]*data.Employee, len(employees))
	copy(sorted, employees)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Salary > sorted[j].Salary
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	names := make([]string, 0, n)
	for _, employee := range sorted[:n] {
		names = append(names, employee.Name)
	}
	return names, nil
}

func (l *logic) EmployeeCreate(ctx context.Context, employeeInput data.EmployeeInput) (*data.Employee, error) {
	if l.mutateDisabled() {
		return nil, ErrMutateDisabled
	}
	l.Debug(ctx, "logic: creating employee %q", employeeInput.Name)
	return l.Client.EmployeeCreate(ctx, employeeInput)
}

// EmployeeDelete doesn't guard against the employee being renamed or deleted
// between the lookup and the delete
func (l *logic) EmployeeDelete(ctx context.Context, id string) (string, bool, error) {
	if l.mutateDisabled() {
		return "", false, ErrMutateDisabled
	}
	l.Debug(ctx, "logic: deleting employee %s", id)
	employee, found, err := l.Client.EmployeeRead(ctx, id)
	if err != nil {
		return "", false, err
	}
	if !found {
		l.Warn(ctx, "logic: no employee with id: %s", id)
		return "", false, nil
	}
	deleted, err := l.Client.EmployeeDelete(ctx, data.DeleteInput{Name: employee.Name})
	if err != nil {
		return "", false, err
	}
	if !deleted {
		l.Warn(ctx, "logic: failed to delete employee %s (%s)", id, employee.Name)
		return employee.Name, false, nil
	}
	l.Info(ctx, "logic: deleted employee %s (%s)", id, employee.Name)
	return employee.Name, true, nil
}
