package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/peopleops/hr-backend/internal/hr/events"
	"github.com/peopleops/hr-backend/internal/hr/handler"
	"github.com/peopleops/hr-backend/internal/hr/query"
	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/internal/hr/service"
	"github.com/peopleops/hr-backend/pkg/config"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/httputil"
	"github.com/peopleops/hr-backend/pkg/logger"
	"github.com/peopleops/hr-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("hr-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("hr-service", cfg.Server.Environment)
	log.Info().Msg("starting HR Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Create tables and seed the leave type catalogue
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.InitSchema(initCtx, db); err != nil {
		initCancel()
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}
	initCancel()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	eventsPublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeHREvents, "hr-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	publisher := events.NewHREventPublisher(eventsPublisher, log)

	// Reconnect to the broker if the connection drops
	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	defer monitorCancel()
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				if rmq.Health()["status"] != "up" {
					if err := rmq.Reconnect(monitorCtx); err != nil {
						log.Error().Err(err).Msg("RabbitMQ reconnect failed")
					}
				}
			}
		}
	}()

	// Initialize services
	employeeService := service.NewEmployeeService(db, publisher, log.WithComponent("employee"))
	departmentService := service.NewDepartmentService(db, publisher, log.WithComponent("department"))
	leaveService := service.NewLeaveService(db, publisher, log.WithComponent("leave"))
	salaryService := service.NewSalaryService(db, publisher, log.WithComponent("salary"))
	reviewService := service.NewReviewService(db, publisher, log.WithComponent("review"))
	queryEngine := query.New(db, log.WithComponent("query"))

	// Initialize handlers
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	departmentHandler := handler.NewDepartmentHandler(departmentService, log)
	leaveHandler := handler.NewLeaveHandler(leaveService, log)
	salaryHandler := handler.NewSalaryHandler(salaryService, log)
	reviewHandler := handler.NewReviewHandler(reviewService, log)
	reportsHandler := handler.NewReportsHandler(queryEngine, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "hr-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Post("/", employeeHandler.Create)
			r.Post("/update", employeeHandler.Update)
			r.Post("/terminate", employeeHandler.Terminate)
			r.Post("/reactivate", employeeHandler.Reactivate)
			r.Get("/search", reportsHandler.Search)
		})

		r.Route("/departments", func(r chi.Router) {
			r.Post("/", departmentHandler.Create)
			r.Get("/", departmentHandler.List)
			r.Post("/update", departmentHandler.Update)
			r.Post("/merge", departmentHandler.Merge)
		})

		r.Route("/leave", func(r chi.Router) {
			r.Post("/requests", leaveHandler.Request)
			r.Post("/requests/{id}/decision", leaveHandler.Decide)
			r.Get("/balance", leaveHandler.Balance)
		})

		r.Post("/salaries", salaryHandler.Update)
		r.Get("/salaries/history", salaryHandler.History)
		r.Post("/reviews", reviewHandler.Create)
		r.Get("/reviews", reviewHandler.List)
		r.Get("/audit", reportsHandler.AuditTrail)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/orgchart", reportsHandler.OrgChart)
			r.Get("/compensation", reportsHandler.Compensation)
			r.Get("/dashboard", reportsHandler.Dashboard)
			r.Get("/turnover", reportsHandler.Turnover)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
