package v1

import (
	"net/http"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	identity  domain.IdentityUsecase
	deletions domain.DeletionUsecase
}

func NewProfileHandler(protected *gin.RouterGroup, identity domain.IdentityUsecase, deletions domain.DeletionUsecase) {
	handler := &ProfileHandler{identity: identity, deletions: deletions}

	profile := protected.Group("/profile")
	{
		profile.GET("", handler.Get)
		profile.PUT("", handler.Update)
		profile.GET("/me", handler.Get)
		profile.GET("/deletion-request", handler.MyDeletionRequest)
		profile.POST("/deletion-request", handler.RequestDeletion)
	}
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100,valid_name,no_emoji"`
}

type DeletionRequestBody struct {
	ConfirmationText string `json:"confirmation_text" binding:"required"`
}

// Get godoc
// @Summary      Current account
// @Description  The caller's profile, landing route and capability set
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Me}
// @Failure      404  {object}  response.Response
// @Router       /profile [get]
// @Security     BearerAuth
func (h *ProfileHandler) Get(c *gin.Context) {
	me, err := h.identity.Me(c.Request.Context(), actor(c).ID, c.GetString(string(domain.KeyUserEmail)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", me)
}

// Update godoc
// @Summary      Update own name
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body      UpdateProfileRequest  true  "New name"
// @Success      200      {object}  response.Response{data=domain.Profile}
// @Failure      400      {object}  response.Response
// @Router       /profile [put]
// @Security     BearerAuth
func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.identity.UpdateFullName(c.Request.Context(), actor(c).ID, req.FullName)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", p)
}

// RequestDeletion godoc
// @Summary      Request account deletion
// @Description  The confirmation text must equal the required Turkish phrase exactly (surrounding whitespace ignored).
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body      DeletionRequestBody  true  "Confirmation"
// @Success      201      {object}  response.Response{data=domain.AccountDeletionRequest}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /profile/deletion-request [post]
// @Security     BearerAuth
func (h *ProfileHandler) RequestDeletion(c *gin.Context) {
	var req DeletionRequestBody
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.deletions.Submit(c.Request.Context(), actor(c), req.ConfirmationText)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Deletion request submitted", r)
}

// MyDeletionRequest godoc
// @Summary      Latest own deletion request
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.AccountDeletionRequest}
// @Router       /profile/deletion-request [get]
// @Security     BearerAuth
func (h *ProfileHandler) MyDeletionRequest(c *gin.Context) {
	r, err := h.deletions.Mine(c.Request.Context(), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Deletion request retrieved", r)
}
