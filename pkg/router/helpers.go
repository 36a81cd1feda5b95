package router

import (
	"github.com/go-chi/jwtauth/v5"
	"github.com/tendant/simple-crm/pkg/audit"
	"github.com/tendant/simple-crm/pkg/auth"
	authapi "github.com/tendant/simple-crm/pkg/auth/api"
	pkgconfig "github.com/tendant/simple-crm/pkg/config"
	"github.com/tendant/simple-crm/pkg/employee"
	employeeapi "github.com/tendant/simple-crm/pkg/employee/api"
	"github.com/tendant/simple-crm/pkg/iam"
	iamapi "github.com/tendant/simple-crm/pkg/iam/api"
	"github.com/tendant/simple-crm/pkg/profile"
	profileapi "github.com/tendant/simple-crm/pkg/profile/api"
	"github.com/tendant/simple-crm/pkg/ratelimit"
	"github.com/tendant/simple-crm/pkg/rbac"
	"github.com/tendant/simple-crm/pkg/role"
	roleapi "github.com/tendant/simple-crm/pkg/role/api"
	"github.com/tendant/simple-crm/pkg/tokengenerator"
)

// MinimalOptions contains the settings for an in-memory CRM.
type MinimalOptions struct {
	JWT pkgconfig.JWTConfig

	// Optional - defaults will be used if not provided
	PrefixConfig *pkgconfig.PrefixConfig // API route prefixes
	Policy       *rbac.Policy            // Access policy (default: rbac.Default())
	BcryptCost   int                     // Password hashing cost (default: bcrypt.DefaultCost)
	RateLimit    *ratelimit.Config       // Rate limiting (default: disabled)
	Audit        audit.Recorder          // Audit trail of mutations (default: none)
}

// Services exposes the stores behind a Config so callers can seed them.
type Services struct {
	Iam         *iam.IamService
	Credentials *auth.InMemoryCredentialStore
	Employees   *employee.EmployeeService
	Policy      *rbac.Policy
}

// NewMinimalConfig builds the full route configuration on in-memory stores.
//
// Example:
//
//	cfg, services, err := router.NewMinimalConfig(router.MinimalOptions{JWT: jwtConfig})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	bootstrap.SeedDemoData(ctx, bootstrap.DemoBootstrapConfig{
//	    Seed:            seedConfig,
//	    IamService:      services.Iam,
//	    Credentials:     services.Credentials,
//	    EmployeeService: services.Employees,
//	})
//	router.SetupRoutes(r, cfg)
func NewMinimalConfig(opts MinimalOptions) (Config, Services, error) {
	expiry, err := opts.JWT.ParseAccessTokenExpiry()
	if err != nil {
		return Config{}, Services{}, err
	}

	policy := opts.Policy
	if policy == nil {
		policy = rbac.Default()
	}

	// 1. Stores and core services
	iamRepo := iam.NewInMemoryIamRepository()
	credentials := auth.NewInMemoryCredentialStore(opts.BcryptCost)
	iamService := iam.NewIamService(iamRepo, iam.WithPolicy(policy), iam.WithCredentials(credentials))
	employeeService := employee.NewEmployeeService(employee.NewInMemoryEmployeeRepository())
	roleService := role.NewRoleService(policy, iamService)
	profileService := profile.NewProfileService(policy)

	// 2. Token services
	tokenGenerator := tokengenerator.NewJwtTokenGenerator(opts.JWT.Secret, opts.JWT.Issuer, opts.JWT.Audience)
	cookies := tokengenerator.NewCookieSetter(opts.JWT.CookieHttpOnly, opts.JWT.CookieSecure, opts.JWT.CookieSameSite())
	loginService := auth.NewLoginService(iamService, credentials, tokenGenerator, expiry)
	tokenAuth := jwtauth.New("HS256", []byte(opts.JWT.Secret), nil)

	// 3. Prefixes
	prefixConfig := opts.PrefixConfig
	if prefixConfig == nil {
		defaults := pkgconfig.DefaultV1Prefixes()
		prefixConfig = &defaults
	}

	var limiter *ratelimit.Middleware
	if opts.RateLimit != nil && opts.RateLimit.Enabled {
		limiter = ratelimit.NewMiddleware(*opts.RateLimit)
	}

	var auditor *audit.Middleware
	if opts.Audit != nil {
		auditor = audit.NewMiddleware(opts.Audit)
	}

	return Config{
			PrefixConfig:   *prefixConfig,
			AuthHandle:     authapi.NewHandle(loginService, cookies),
			ProfileHandle:  profileapi.NewHandle(profileService),
			UserHandle:     iamapi.NewHandle(iamService),
			RoleHandle:     roleapi.NewHandle(roleService),
			EmployeeHandle: employeeapi.NewHandle(employeeService, policy),
			TokenAuth:      tokenAuth,
			Users:          iamService,
			RateLimit:      limiter,
			Audit:          auditor,
		}, Services{
			Iam:         iamService,
			Credentials: credentials,
			Employees:   employeeService,
			Policy:      policy,
		}, nil
}
