package v1

import (
	"net/http"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settings domain.SettingsUsecase
}

func NewSettingsHandler(public *gin.RouterGroup, settings domain.SettingsUsecase) {
	handler := &SettingsHandler{settings: settings}
	public.GET("/settings/public", handler.Public)
}

// Public godoc
// @Summary      Public site settings
// @Description  Logo URL and meta tags for the frontend
// @Tags         settings
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /settings/public [get]
func (h *SettingsHandler) Public(c *gin.Context) {
	values, err := h.settings.Public(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Settings retrieved", values)
}
