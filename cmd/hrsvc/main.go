package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
	"github.com/dhawalhost/staffhub/internal/audit"
	"github.com/dhawalhost/staffhub/internal/auth"
	"github.com/dhawalhost/staffhub/internal/employee"
	"github.com/dhawalhost/staffhub/internal/leave"
	"github.com/dhawalhost/staffhub/internal/payroll"
	"github.com/dhawalhost/staffhub/pkg/database"
	"github.com/dhawalhost/staffhub/pkg/logger"
	"github.com/dhawalhost/staffhub/pkg/middleware"
	"github.com/dhawalhost/staffhub/pkg/observability"
)

const serviceName = "hrsvc"

func main() {
	log, err := logger.New(envOr("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbPort, err := strconv.Atoi(envOr("DB_PORT", "5432"))
	if err != nil {
		log.Error("Invalid DB_PORT", zap.Error(err))
		os.Exit(1)
	}

	db, err := database.NewConnection(database.Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     envOr("DB_USER", "staffhub"),
		Password: envOr("DB_PASSWORD", "staffhub"),
		DBName:   envOr("DB_NAME", "staffhub"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
	})
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}

	ctx := context.Background()
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: envOr("SERVICE_VERSION", "dev"),
		Environment:    envOr("ENVIRONMENT", "development"),
	}, log)
	if err != nil {
		log.Error("Failed to initialize tracing", zap.Error(err))
		os.Exit(1)
	}
	defer shutdownTracer(ctx)

	metrics := observability.NewMetrics()

	employeeStore := employee.NewStore(db)
	resolver := accessfilter.NewResolver(employeeStore, log)

	auditSvc := audit.NewService(audit.NewStore(db))
	authSvc, err := auth.NewService(auth.NewStore(db), serviceName)
	if err != nil {
		log.Error("Failed to create auth service", zap.Error(err))
		os.Exit(1)
	}
	employeeSvc := employee.NewService(employeeStore)
	leaveSvc := leave.NewService(leave.NewStore(db))
	payrollSvc := payroll.NewService(payroll.NewStore(db))

	if envOr("ENVIRONMENT", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{envOr("CORS_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(rate.Limit(50), 100))
	r.Use(observability.PrometheusMiddleware(metrics))
	r.Use(otelgin.Middleware(serviceName))

	r.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(observability.PrometheusHandler()))

	authHandler := auth.NewHTTPHandler(authSvc, auditSvc, log)
	authHandler.RegisterPublicRoutes(r)

	api := r.Group("/api/v1", middleware.Authenticate(authSvc.Keyfunc(), log))
	guard := middleware.NewStrategyGuard(resolver, metrics, log)

	authHandler.RegisterRoutes(api, guard)
	employee.NewHTTPHandler(employeeSvc, auditSvc, log).RegisterRoutes(api, guard)
	leave.NewHTTPHandler(leaveSvc, auditSvc, log).RegisterRoutes(api, guard)
	payroll.NewHTTPHandler(payrollSvc, auditSvc, log).RegisterRoutes(api, guard)
	audit.NewHTTPHandler(auditSvc, log).RegisterRoutes(api, guard)

	addr := ":" + envOr("PORT", "8080")
	log.Info("HTTP server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Error("HTTP server failed", zap.Error(err))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
