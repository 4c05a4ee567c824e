package v1

import (
	"net/http"
	"strings"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admin      domain.AdminUsecase
	candidates domain.CandidateUsecase
	deletions  domain.DeletionUsecase
	settings   domain.SettingsUsecase
}

func NewAdminHandler(protected *gin.RouterGroup, admin domain.AdminUsecase, candidates domain.CandidateUsecase, deletions domain.DeletionUsecase, settings domain.SettingsUsecase) {
	handler := &AdminHandler{admin: admin, candidates: candidates, deletions: deletions, settings: settings}

	group := protected.Group("/dashboard/admin")
	{
		group.GET("", handler.GetStats)

		group.GET("/users", handler.ListUsers)
		group.POST("/users", handler.CreateUser)
		group.PATCH("/users/:id/role", handler.ChangeRole)
		group.PATCH("/candidates/:id/middleman", handler.AssignMiddleman)

		group.GET("/deletion-requests", handler.ListDeletionRequests)
		group.POST("/deletion-requests/:id/approve", handler.ApproveDeletion)
		group.POST("/deletion-requests/:id/reject", handler.RejectDeletion)

		group.PUT("/settings", handler.UpdateSetting)
		group.POST("/settings/logo", handler.UploadLogo)
	}
}

type CreateUserRequest struct {
	Email       string                `json:"email" binding:"required,email,max=254"`
	Password    string                `json:"password" binding:"required,min=8,max=72"`
	FullName    string                `json:"full_name" binding:"required,min=2,max=100,valid_name,no_emoji"`
	Role        string                `json:"role" binding:"required,role"`
	MiddlemanID *string               `json:"middleman_id" binding:"omitempty,uuid"`
	Info        *CandidateInfoRequest `json:"info"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

type AssignMiddlemanRequest struct {
	// MiddlemanID null unlinks the candidate
	MiddlemanID *string `json:"middleman_id" binding:"omitempty,uuid"`
}

type UpdateSettingRequest struct {
	Key         string `json:"key" binding:"required,max=100"`
	Value       string `json:"value" binding:"max=2000"`
	Description string `json:"description" binding:"max=500"`
}

// GetStats godoc
// @Summary      Admin dashboard
// @Description  User counts by role, application counts by status and pending review work
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.AdminStats}
// @Failure      403  {object}  response.Response
// @Router       /dashboard/admin [get]
// @Security     BearerAuth
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context(), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Stats retrieved", stats)
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        role             query     string  false  "CANDIDATE, MIDDLEMAN, CONSULTANT, ADMIN"
// @Param        include_deleted  query     bool    false  "Include soft-deleted accounts"
// @Param        q                query     string  false  "Name search"
// @Param        page             query     int     false  "Page"
// @Param        limit            query     int     false  "Page size"
// @Success      200              {object}  response.Response{data=domain.PaginatedResult[domain.Profile]}
// @Router       /dashboard/admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filter domain.ProfileFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}

	res, err := h.admin.ListUsers(c.Request.Context(), actor(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users retrieved", res)
}

// CreateUser godoc
// @Summary      Create a user
// @Description  Provisions an identity and a profile of any role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      CreateUserRequest  true  "User"
// @Success      201      {object}  response.Response{data=domain.Profile}
// @Failure      409      {object}  response.Response
// @Router       /dashboard/admin/users [post]
// @Security     BearerAuth
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	role, _ := domain.ParseRole(req.Role)
	in := domain.NewUserInput{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		FullName:    req.FullName,
		Role:        role,
		MiddlemanID: req.MiddlemanID,
	}
	if req.Info != nil {
		info, err := req.Info.toDomain()
		if err != nil {
			c.Error(err)
			return
		}
		in.Info = info
	}

	p, err := h.admin.CreateUser(c.Request.Context(), actor(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "User created", p)
}

// ChangeRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "User ID"
// @Param        request  body      ChangeRoleRequest  true  "Role"
// @Success      200      {object}  response.Response{data=domain.Profile}
// @Failure      422      {object}  response.Response
// @Router       /dashboard/admin/users/{id}/role [patch]
// @Security     BearerAuth
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, _ := domain.ParseRole(req.Role)

	p, err := h.admin.ChangeRole(c.Request.Context(), actor(c), c.Param("id"), role)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role updated", p)
}

// AssignMiddleman godoc
// @Summary      Link a candidate to a middleman
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Candidate ID"
// @Param        request  body      AssignMiddlemanRequest  true  "Middleman"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /dashboard/admin/candidates/{id}/middleman [patch]
// @Security     BearerAuth
func (h *AdminHandler) AssignMiddleman(c *gin.Context) {
	var req AssignMiddlemanRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.candidates.AssignMiddleman(c.Request.Context(), actor(c), c.Param("id"), req.MiddlemanID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Middleman assigned", nil)
}

// ListDeletionRequests godoc
// @Summary      Account deletion requests
// @Tags         admin
// @Produce      json
// @Param        status  query     string  false  "PENDING, APPROVED, REJECTED"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=domain.PaginatedResult[domain.AccountDeletionRequest]}
// @Router       /dashboard/admin/deletion-requests [get]
// @Security     BearerAuth
func (h *AdminHandler) ListDeletionRequests(c *gin.Context) {
	var filter domain.DeletionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}

	res, err := h.deletions.List(c.Request.Context(), actor(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Deletion requests retrieved", res)
}

// ApproveDeletion godoc
// @Summary      Approve a deletion request
// @Description  Marks the request APPROVED and soft-deletes the account
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=domain.AccountDeletionRequest}
// @Failure      422  {object}  response.Response
// @Router       /dashboard/admin/deletion-requests/{id}/approve [post]
// @Security     BearerAuth
func (h *AdminHandler) ApproveDeletion(c *gin.Context) {
	h.resolveDeletion(c, true)
}

// RejectDeletion godoc
// @Summary      Reject a deletion request
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=domain.AccountDeletionRequest}
// @Failure      422  {object}  response.Response
// @Router       /dashboard/admin/deletion-requests/{id}/reject [post]
// @Security     BearerAuth
func (h *AdminHandler) RejectDeletion(c *gin.Context) {
	h.resolveDeletion(c, false)
}

func (h *AdminHandler) resolveDeletion(c *gin.Context, approve bool) {
	r, err := h.deletions.Resolve(c.Request.Context(), actor(c), c.Param("id"), approve)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Deletion request resolved", r)
}

// UpdateSetting godoc
// @Summary      Update a site setting
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      UpdateSettingRequest  true  "Setting"
// @Success      200      {object}  response.Response{data=domain.Setting}
// @Failure      400      {object}  response.Response
// @Router       /dashboard/admin/settings [put]
// @Security     BearerAuth
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req UpdateSettingRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.settings.Update(c.Request.Context(), actor(c), domain.SettingKey(strings.TrimSpace(req.Key)), req.Value, req.Description)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Setting updated", s)
}

// UploadLogo godoc
// @Summary      Upload the site logo
// @Description  multipart/form-data with 'file' (jpg, png, webp; max 5 MB)
// @Tags         admin
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "Logo image"
// @Success      200   {object}  response.Response{data=domain.Setting}
// @Failure      400   {object}  response.Response
// @Router       /dashboard/admin/settings/logo [post]
// @Security     BearerAuth
func (h *AdminHandler) UploadLogo(c *gin.Context) {
	fh, data, err := readUpload(c, "file", security.ImagePolicy.MaxBytes)
	if err != nil {
		c.Error(err)
		return
	}
	s, err := h.settings.UploadLogo(c.Request.Context(), actor(c), domain.LogoUpload{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Logo updated", s)
}
