package v1

import (
	"net/http"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/usecase"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	health usecase.HealthUsecase
}

func NewHealthHandler(public *gin.RouterGroup, health usecase.HealthUsecase) {
	handler := &HealthHandler{health: health}
	public.GET("/health", handler.Health)
	public.GET("/test", handler.Test)
}

// Health godoc
// @Summary      Health check
// @Description  Probes the database, Redis and object storage
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status, ok := h.health.Check(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}

func (h *HealthHandler) Test(c *gin.Context) {
	response.Success(c, http.StatusOK, "pong", nil)
}
