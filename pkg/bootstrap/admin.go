package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/config"
	"github.com/tendant/simple-crm/pkg/employee"
	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// DemoBootstrapConfig contains the stores to seed and the seed settings.
type DemoBootstrapConfig struct {
	Seed config.SeedConfig

	IamService      *iam.IamService
	Credentials     auth.CredentialStore
	EmployeeService *employee.EmployeeService
}

// DemoUserInfo describes one seeded account.
type DemoUserInfo struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  rbac.Role
}

// DemoBootstrapResult contains the result of the seed operation
type DemoBootstrapResult struct {
	Users      []DemoUserInfo
	Employees  int
	Candidates int
	Password   string
	Seeded     bool // false if the directory already had users
}

var demoNames = map[rbac.Role]struct{ name, department string }{
	rbac.Admin:      {"Alex Admin", "Management"},
	rbac.Manager:    {"Morgan Manager", "Management"},
	rbac.HR:         {"Harper Reyes", "Human Resources"},
	rbac.TeamLeader: {"Taylor Lead", "Sales"},
	rbac.CallCenter: {"Casey Caller", "Call Center"},
	rbac.Intern:     {"Jordan Intern", "Sales"},
}

var demoEmployees = []employee.CreateEmployeeParams{
	{Name: "Sam Ortega", Email: "sam.ortega@%s", Department: "Sales", Position: "Account Executive"},
	{Name: "Riley Chen", Email: "riley.chen@%s", Department: "Call Center", Position: "Support Agent"},
	{Name: "Drew Patel", Email: "drew.patel@%s", Department: "Human Resources", Position: "Recruiter"},
}

var demoCandidates = []employee.CreateCandidateParams{
	{Name: "Quinn Baker", Email: "quinn.baker@%s", Position: "Sales Intern", Department: "Sales"},
	{Name: "Avery Brooks", Email: "avery.brooks@%s", Position: "Support Agent", Department: "Call Center", Stage: employee.StageInterview},
	{Name: "Rowan Kim", Email: "rowan.kim@%s", Position: "Team Leader", Department: "Sales", Stage: employee.StageOffer},
	{Name: "Emery Diaz", Email: "emery.diaz@%s", Position: "HR Assistant", Department: "Human Resources", Stage: employee.StageHired},
	{Name: "Parker Lane", Email: "parker.lane@%s", Position: "Analyst", Department: "Management", Stage: employee.StageRejected},
}

// SeedDemoData fills an empty directory with one user per role, all sharing
// the demo password, plus sample employees and candidates.
func SeedDemoData(ctx context.Context, cfg DemoBootstrapConfig) (*DemoBootstrapResult, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid bootstrap configuration: %w", err)
	}

	exists, err := cfg.IamService.AnyUserExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check if users exist: %w", err)
	}
	if exists {
		slog.Info("Users already exist - skipping demo seed")
		return &DemoBootstrapResult{Seeded: false}, nil
	}

	users, err := seedUsers(ctx, cfg)
	if err != nil {
		return nil, err
	}

	employees, candidates, err := seedHR(ctx, cfg)
	if err != nil {
		return nil, err
	}

	result := &DemoBootstrapResult{
		Users:      users,
		Employees:  employees,
		Candidates: candidates,
		Password:   cfg.Seed.DemoPassword,
		Seeded:     true,
	}
	slog.Info("Demo seed completed", "users", len(users), "employees", employees, "candidates", candidates)
	return result, nil
}

func validateConfig(cfg DemoBootstrapConfig) error {
	if cfg.IamService == nil {
		return fmt.Errorf("IamService is required")
	}
	if cfg.Credentials == nil {
		return fmt.Errorf("Credentials is required")
	}
	if cfg.EmployeeService == nil {
		return fmt.Errorf("EmployeeService is required")
	}
	if errs := cfg.Seed.Validate(); errs.HasErrors() {
		return errs
	}
	return nil
}

func demoEmail(role rbac.Role, domain string) string {
	return role.String() + "@" + domain
}

// seedUsers creates the first admin, then every other account as that admin
// so the regular create rules apply.
func seedUsers(ctx context.Context, cfg DemoBootstrapConfig) ([]DemoUserInfo, error) {
	domain := cfg.Seed.EmailDomain
	first := demoNames[rbac.Admin]
	admin, err := cfg.IamService.CreateFirstAdmin(ctx, iam.CreateUserParams{
		Name:       first.name,
		Email:      demoEmail(rbac.Admin, domain),
		Department: first.department,
	})
	if err != nil {
		return nil, err
	}

	created := []iam.User{admin}
	for _, role := range rbac.AllRoles {
		if role == rbac.Admin {
			continue
		}
		demo := demoNames[role]
		u, err := cfg.IamService.CreateUser(ctx, admin.Actor(), iam.CreateUserParams{
			Name:       demo.name,
			Email:      demoEmail(role, domain),
			Department: demo.department,
			Role:       role,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create demo %s: %w", role, err)
		}
		created = append(created, u)
	}

	infos := make([]DemoUserInfo, 0, len(created))
	for _, u := range created {
		if err := cfg.Credentials.SetPassword(ctx, u.Email, cfg.Seed.DemoPassword); err != nil {
			return nil, fmt.Errorf("failed to set password for %s: %w", u.Email, err)
		}
		infos = append(infos, DemoUserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return infos, nil
}

func seedHR(ctx context.Context, cfg DemoBootstrapConfig) (int, int, error) {
	domain := cfg.Seed.EmailDomain
	hireDate := time.Now().AddDate(-1, 0, 0)

	for _, p := range demoEmployees {
		p.Email = fmt.Sprintf(p.Email, domain)
		p.HireDate = hireDate
		if _, err := cfg.EmployeeService.CreateEmployee(ctx, p); err != nil {
			return 0, 0, fmt.Errorf("failed to create demo employee: %w", err)
		}
	}
	for _, p := range demoCandidates {
		p.Email = fmt.Sprintf(p.Email, domain)
		if _, err := cfg.EmployeeService.AddCandidate(ctx, p); err != nil {
			return 0, 0, fmt.Errorf("failed to create demo candidate: %w", err)
		}
	}
	return len(demoEmployees), len(demoCandidates), nil
}
