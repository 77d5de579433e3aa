package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/auth"
	"github.com/HansenDafa/indostereoset-annotation/internal/middleware"
	"github.com/HansenDafa/indostereoset-annotation/internal/models"
	"github.com/HansenDafa/indostereoset-annotation/internal/repository"
	"github.com/HansenDafa/indostereoset-annotation/internal/service"
	"github.com/HansenDafa/indostereoset-annotation/internal/state"
)

// Handler handles HTTP requests
type Handler struct {
	auth      *auth.Service
	admin     *service.AdminService
	generator *service.GeneratorService
	annotator *service.AnnotatorService
	logger    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	authService *auth.Service,
	admin *service.AdminService,
	generator *service.GeneratorService,
	annotator *service.AnnotatorService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		auth:      authService,
		admin:     admin,
		generator: generator,
		annotator: annotator,
		logger:    logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	requireAuth := middleware.AuthMiddleware(h.auth.Tokens(), h.logger)

	api := r.Group("/api/v1")
	{
		// Session
		api.POST("/auth/login", h.Login)
		api.GET("/auth/users/count", h.UserCount)
		api.POST("/auth/logout", requireAuth, h.Logout)
		api.GET("/auth/me", requireAuth, h.Me)

		admin := api.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/stats", h.Stats)
			admin.GET("/users", h.ListUsers)
			admin.POST("/users", h.AddUser)
			admin.POST("/users/import", h.ImportUsers)
			admin.GET("/triplets/pending", h.ListPending)
			admin.POST("/triplets", h.AddTriplet)
			admin.POST("/triplets/import", h.ImportTriplets)
			admin.GET("/export/json", h.ExportJSON)
			admin.GET("/export/csv", h.ExportCSV)
			admin.GET("/exports", h.ListExports)
			admin.GET("/exports/:id", h.GetExport)
		}

		generate := api.Group("/generate", requireAuth, middleware.RequireRole(models.RoleGenerator))
		{
			generate.GET("/next", h.NextTriplet)
			generate.POST("/:id", h.SubmitTriplet)
			generate.POST("/:id/drafts", h.Drafts)
		}

		annotate := api.Group("/annotate", requireAuth, middleware.RequireRole(models.RoleAnnotator))
		{
			annotate.GET("/next", h.NextSentence)
			annotate.POST("", h.SubmitLabel)
		}
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "annotation-server",
		"drafts":   h.generator.DraftsEnabled(),
		"users":    h.auth.UserCount(),
		"triplets": h.admin.Stats().TotalTriplets,
	})
}

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, state.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, state.ErrTripletNotFound),
		errors.Is(err, service.ErrArchiveDisabled),
		errors.Is(err, repository.ErrExportNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrAlreadyGenerated),
		errors.Is(err, state.ErrStaleAssignment):
		return http.StatusConflict
	case errors.Is(err, service.ErrDraftsDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrDraftsFailed):
		return http.StatusBadGateway
	}
	var ve *state.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": message}. Unexpected errors are logged and
// answered with fallback.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	message := state.Message(err, fallback)
	switch {
	case errors.Is(err, service.ErrArchiveDisabled), errors.Is(err, repository.ErrExportNotFound),
		errors.Is(err, service.ErrDraftsDisabled):
		message = err.Error()
	case status >= http.StatusInternalServerError:
		h.logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
