// Package api wires the JobLink HTTP routes.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Aman-1206/Joblink/internal/api/auth"
	"github.com/Aman-1206/Joblink/internal/api/middleware"
	"github.com/Aman-1206/Joblink/internal/config"
	"github.com/Aman-1206/Joblink/internal/model"
	"github.com/Aman-1206/Joblink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the collaborators NewServer wires into routes.
type Options struct {
	Service *service.Service
	Tokens  middleware.TokenParser
	// Limiter throttles the public auth routes. Nil disables throttling.
	Limiter middleware.Limiter
	// Redis is pinged by /healthz and closed with the server. Optional.
	Redis *redis.Client
	// DB is pinged by /healthz and closed with the server. Optional.
	DB Pinger
	// UploadDir is served under the storage public prefix when set.
	UploadDir string
	// Google enables Google login when set.
	Google *oauth2.Config
}

// Server holds the router and the dependencies its handlers use.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	svc     *service.Service
	tokens  middleware.TokenParser
	limiter middleware.Limiter
	rdb     *redis.Client
	db      Pinger
	router  *gin.Engine
	auth    *auth.Handler
	http    *http.Server
}

// NewServer builds the router for cfg and opts.
func NewServer(cfg *config.Config, logger *slog.Logger, opts Options) *Server {
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RequestMetrics())
	r.MaxMultipartMemory = 16 << 20

	authHandler := auth.NewHandler(opts.Service, logger)
	if opts.Google != nil {
		authHandler.WithGoogle(opts.Google, cfg.App.FrontendURL)
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		svc:     opts.Service,
		tokens:  opts.Tokens,
		limiter: opts.Limiter,
		rdb:     opts.Redis,
		db:      opts.DB,
		router:  r,
		auth:    authHandler,
	}
	s.registerRoutes(opts.UploadDir)
	return s
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.App.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("api server listening", slog.String("addr", s.cfg.App.HTTPAddr))
		}
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close closes the database and cache connections.
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if c, ok := s.db.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// registerRoutes registers every route.
func (s *Server) registerRoutes(uploadDir string) {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", s.handleHealthz)
	if uploadDir != "" {
		s.router.Static(s.cfg.Storage.PublicPrefix, uploadDir)
	}

	requireAuth := middleware.AuthMiddleware(s.tokens)
	api := s.router.Group("/api")

	authGroup := api.Group("/auth")
	limited := authGroup.Group("")
	limited.Use(middleware.RateLimit(s.limiter, s.logger))
	limited.POST("/send-otp", s.auth.SendCode)
	limited.POST("/verify-otp-register", s.auth.VerifyAndRegister)
	limited.POST("/register/student", s.auth.RegisterStudent)
	limited.POST("/register/hr", s.auth.RegisterHR)
	limited.POST("/login", s.auth.Login)
	authGroup.GET("/me", requireAuth, s.auth.Me)
	authGroup.PUT("/profile", requireAuth, s.auth.UpdateProfile)
	authGroup.POST("/profile/photo", requireAuth, s.auth.UploadPhoto)
	if s.auth.GoogleEnabled() {
		authGroup.GET("/google", s.auth.GoogleLogin)
		authGroup.GET("/google/callback", s.auth.GoogleCallback)
	}

	api.GET("/jobs", s.handleListJobs)
	api.GET("/jobs/:id", s.handleGetJob)

	apps := api.Group("/applications", requireAuth)
	apps.POST("", s.handleApply)
	apps.GET("/my", s.handleMyApplications)
	apps.DELETE("/:id", s.handleWithdraw)

	saved := api.Group("/saved-jobs", requireAuth)
	saved.GET("", s.handleSavedJobIDs)
	saved.GET("/list", s.handleSavedJobs)
	saved.POST("/:jobId", s.handleSaveJob)
	saved.DELETE("/:jobId", s.handleUnsaveJob)

	api.POST("/reports", requireAuth, s.handleReport)

	hr := api.Group("/hr", requireAuth, middleware.RequireRole(model.RoleHR))
	hr.GET("/my-jobs", s.handleMyJobs)
	hr.POST("/jobs", s.handleCreateJob)
	hr.PUT("/jobs/:id", s.handleUpdateJob)
	hr.DELETE("/jobs/:id", s.handleDeleteOwnJob)
	hr.GET("/all-applicants", s.handleAllApplicants)
	hr.GET("/jobs/:id/applications", s.handleJobApplications)
	hr.PATCH("/applications/:id/status", s.handleUpdateStatus)

	admin := api.Group("/admin", requireAuth, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/pending-hr", s.handleListPending)
	admin.POST("/approve-hr/:id", s.handleApprove)
	admin.POST("/reject-hr/:id", s.handleReject)
	admin.POST("/verify-gst/:id", s.handleVerifyGST)
	admin.GET("/company-domains", s.handleListDomains)
	admin.POST("/company-domains", s.handleAddDomain)
	admin.GET("/analytics", s.handleAnalytics)
	admin.GET("/jobs", s.handleAdminJobs)
	admin.DELETE("/jobs/:id", s.handleAdminDeleteJob)
	admin.GET("/reports", s.handleListReports)
	admin.DELETE("/reports/:id", s.handleDismissReport)
	admin.GET("/hrs", s.handleListHRs)
	admin.GET("/students", s.handleListStudents)
	admin.GET("/companies", s.handleListCompanies)
	admin.POST("/add-admin", s.handleAddAdmin)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "component": "database"})
			return
		}
	}
	if s.rdb != nil {
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "component": "redis"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
