package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/payrollz/payrollz-backend/api/routes"
	"github.com/payrollz/payrollz-backend/internal/auth"
	"github.com/payrollz/payrollz-backend/internal/batches"
	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/internal/employees"
	"github.com/payrollz/payrollz-backend/internal/payments"
	"github.com/payrollz/payrollz-backend/internal/payroll"
	"github.com/payrollz/payrollz-backend/pkg/auth/session"
	"github.com/payrollz/payrollz-backend/pkg/chain"
	"github.com/payrollz/payrollz-backend/pkg/config"
	"github.com/payrollz/payrollz-backend/pkg/db"
	"github.com/payrollz/payrollz-backend/pkg/logger"
	"github.com/payrollz/payrollz-backend/pkg/migrate"
	"github.com/payrollz/payrollz-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gateway, err := chain.NewEthGateway(context.Background(), cfg.Chain)
	if err != nil {
		logg.Error(context.Background(), "failed to connect chain gateway", err)
		os.Exit(1)
	}
	defer gateway.Close()

	companyRepo := companies.NewRepository(dbClient.DB())
	employeeRepo := employees.NewRepository(dbClient.DB())
	batchRepo := batches.NewRepository(dbClient.DB())
	payrollRepo := payroll.NewRepository(dbClient.DB())

	companyService, err := companies.NewService(companyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create companies service", err)
		os.Exit(1)
	}

	employeeService, err := employees.NewService(employees.ServiceParams{
		Repo:      employeeRepo,
		Companies: companyRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create employees service", err)
		os.Exit(1)
	}

	batchService, err := batches.NewService(batches.ServiceParams{
		Repo:      batchRepo,
		Companies: companyRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create batches service", err)
		os.Exit(1)
	}

	payrollService, err := payroll.NewService(payroll.ServiceParams{
		Repo:      payrollRepo,
		Batches:   batchRepo,
		Companies: companyRepo,
		Employees: employeeRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payroll service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(dbClient.DB()),
		Gateway: gateway,
		Retrier: chain.NewRetrier(cfg.Chain),
		Logger:  logg,
		Chain:   cfg.Chain,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:      auth.NewRepository(dbClient.DB()),
		Companies: companyRepo,
		Employees: employeeRepo,
		Tx:        dbClient,
		Sessions:  sessionManager,
		JWT:       cfg.JWT,
		Password:  cfg.Password,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			companyService,
			employeeService,
			batchService,
			payrollService,
			paymentsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
