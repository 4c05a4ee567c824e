package v1

import (
	"time"

	"go-recruitment-workflow/config"
	"go-recruitment-workflow/internal/delivery/http/middleware"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/internal/usecase"
	"go-recruitment-workflow/pkg/auth"
	"go-recruitment-workflow/pkg/security"
	"go-recruitment-workflow/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	IdentityUC    domain.IdentityUsecase
	CandidateUC   domain.CandidateUsecase
	DocumentUC    domain.DocumentUsecase
	ApplicationUC domain.ApplicationUsecase
	DeletionUC    domain.DeletionUsecase
	AdminUC       domain.AdminUsecase
	SettingsUC    domain.SettingsUsecase
	HealthUC      usecase.HealthUsecase
	Verifier      *auth.Verifier
	LoginGuard    LoginGuard
	Audit         *security.AuditLogger
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	cfg := deps.Config
	session := middleware.SessionConfig{CookieName: cfg.SessionCookieName, Secure: cfg.IsProduction()}
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler(deps.Audit))
	r.Use(middleware.RateLimit(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window), deps.Audit))
	r.Use(middleware.CSRF(session))
	// Everything below is gated except the public paths the gate lets through
	r.Use(middleware.Gate(deps.Verifier, deps.IdentityUC, deps.Audit, session))

	root := r.Group("")

	// Public routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	NewHealthHandler(root, deps.HealthUC)
	NewSettingsHandler(root, deps.SettingsUC)
	authLimit := middleware.RateLimit(middleware.AuthRateLimitConfig(cfg.RateLimitLoginThreshold, window), deps.Audit)
	NewAuthHandler(root, deps.IdentityUC, deps.Verifier, deps.LoginGuard, deps.Audit, session, authLimit)

	// Role-gated routes
	NewProfileHandler(root, deps.IdentityUC, deps.DeletionUC)
	NewCandidateHandler(root, deps.CandidateUC, deps.DocumentUC, deps.ApplicationUC)
	NewDocumentHandler(root, deps.DocumentUC)
	NewApplicationHandler(root, deps.ApplicationUC, deps.DocumentUC)
	NewAdminHandler(root, deps.AdminUC, deps.CandidateUC, deps.DeletionUC, deps.SettingsUC)

	return r
}
