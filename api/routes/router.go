package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/payrollz/payrollz-backend/api/controllers"
	"github.com/payrollz/payrollz-backend/api/middleware"
	"github.com/payrollz/payrollz-backend/internal/auth"
	"github.com/payrollz/payrollz-backend/internal/batches"
	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/internal/employees"
	"github.com/payrollz/payrollz-backend/internal/payments"
	"github.com/payrollz/payrollz-backend/internal/payroll"
	"github.com/payrollz/payrollz-backend/pkg/auth/session"
	"github.com/payrollz/payrollz-backend/pkg/config"
	"github.com/payrollz/payrollz-backend/pkg/db"
	"github.com/payrollz/payrollz-backend/pkg/logger"
	"github.com/payrollz/payrollz-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	companyService companies.Service,
	employeeService employees.Service,
	batchService batches.Service,
	payrollService payroll.Service,
	paymentsService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// Assign through a nil check so a missing client disables the redis-backed
	// middlewares instead of becoming a typed-nil interface.
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	// Invite claiming is public: the invitee has no account yet, only the token
	// from their employer. Same abuse profile as register, so same limiter.
	r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
		Post("/api/v1/me/claim", controllers.MeClaim(authService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/me", controllers.Me(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))

			r.Route("/companies", func(r chi.Router) {
				r.Post("/", controllers.CompanyCreate(companyService, logg))
				r.Get("/", controllers.CompanyList(companyService, logg))
				r.Get("/{companyId}", controllers.CompanyDetail(companyService, logg))
			})

			r.Route("/employees", func(r chi.Router) {
				r.Post("/", controllers.EmployeeCreate(employeeService, logg))
				r.Get("/", controllers.EmployeeList(employeeService, logg))
				r.Patch("/{employeeId}", controllers.EmployeeUpdate(employeeService, logg))
			})

			r.Route("/payroll-batches", func(r chi.Router) {
				r.Post("/", controllers.BatchCreate(batchService, logg))
				r.Get("/", controllers.BatchList(batchService, logg))
				r.Get("/{batchId}", controllers.BatchDetail(batchService, logg))
			})

			r.Route("/payroll-items", func(r chi.Router) {
				r.Post("/", controllers.ItemCreate(payrollService, logg))
				r.Get("/", controllers.ItemList(payrollService, logg))
				r.Post("/confirm-submitted", controllers.ItemConfirmSubmitted(payrollService, paymentsService, logg))
				r.Post("/{itemId}/pay", controllers.ItemPay(payrollService, paymentsService, logg))
				r.Post("/{itemId}/confirm", controllers.ItemConfirm(payrollService, paymentsService, logg))
			})
		})

		r.Route("/me/payroll", func(r chi.Router) {
			r.Get("/", controllers.MePayroll(payrollService, logg))
			r.Get("/{itemId}", controllers.MePayrollItem(payrollService, logg))
		})
	})

	r.Route("/api/cron", func(r chi.Router) {
		r.Use(middleware.CronSecret(cfg.Cron.Secret, logg))
		r.Post("/confirm-submitted", controllers.CronConfirmSubmitted(paymentsService, logg))
	})

	return r
}
