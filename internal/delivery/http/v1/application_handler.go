package v1

import (
	"fmt"
	"net/http"
	"time"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/export"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApplicationHandler struct {
	applications domain.ApplicationUsecase
	documents    domain.DocumentUsecase
}

func NewApplicationHandler(protected *gin.RouterGroup, applications domain.ApplicationUsecase, documents domain.DocumentUsecase) {
	handler := &ApplicationHandler{applications: applications, documents: documents}

	protected.GET("/dashboard/consultant", handler.ConsultantDashboard)

	apps := protected.Group("/applications")
	{
		apps.GET("", handler.List)
		apps.GET("/export", handler.Export)
		apps.GET("/:id", handler.Detail)
		apps.POST("/:id/begin-evaluation", handler.decide(domain.ActionBeginEvaluation))
		apps.POST("/:id/approve", handler.decide(domain.ActionApprove))
		apps.POST("/:id/reject", handler.decide(domain.ActionReject))
		apps.POST("/:id/request-update", handler.decide(domain.ActionRequestUpdate))
	}
}

type DecisionRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

func (h *ApplicationHandler) filter(c *gin.Context) (domain.ApplicationFilter, bool) {
	var filter domain.ApplicationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return filter, false
	}
	return filter, true
}

// List godoc
// @Summary      Application pipeline
// @Description  Middlemen see only their own candidates
// @Tags         applications
// @Produce      json
// @Param        status  query     string  false  "NEW_APPLICATION, EVALUATION, APPROVED, REJECTED, UPDATE_REQUIRED"
// @Param        q       query     string  false  "Name search"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=domain.PaginatedResult[domain.ApplicationSummary]}
// @Router       /applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) List(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	res, err := h.applications.List(c.Request.Context(), actor(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", res)
}

// Export godoc
// @Summary      Export applications
// @Description  Every application matching the filter as an xlsx workbook
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status  query  string  false  "Status filter"
// @Param        q       query  string  false  "Name search"
// @Success      200
// @Failure      403  {object}  response.Response
// @Router       /applications/export [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Export(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	data, err := h.applications.Export(c.Request.Context(), actor(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(time.Now())))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Detail godoc
// @Summary      Application detail
// @Description  Profile, info, documents, decision history and the actions the caller may take now
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.ApplicationDetail}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Detail(c *gin.Context) {
	detail, err := h.applications.Detail(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", detail)
}

// Decide godoc
// @Summary      Move an application
// @Description  begin-evaluation, approve, reject (reason required) or request-update. Preconditions on document state are enforced.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id       path      string           true   "Candidate ID"
// @Param        action   path      string           true   "begin-evaluation | approve | reject | request-update"
// @Param        request  body      DecisionRequest  false  "Reason"
// @Success      200      {object}  response.Response{data=domain.Decision}
// @Failure      403      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /applications/{id}/{action} [post]
// @Security     BearerAuth
func (h *ApplicationHandler) decide(action domain.ApplicationAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DecisionRequest
		if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
			return
		}

		dec, err := h.applications.Decide(c.Request.Context(), actor(c), c.Param("id"), action, req.Reason)
		if err != nil {
			c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Application status updated", dec)
	}
}

// ConsultantDashboard godoc
// @Summary      Consultant dashboard
// @Description  Status counts and the first page of documents awaiting review
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /dashboard/consultant [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ConsultantDashboard(c *gin.Context) {
	ctx, a := c.Request.Context(), actor(c)
	stats, err := h.applications.Stats(ctx, a)
	if err != nil {
		c.Error(err)
		return
	}
	queue, err := h.documents.PendingQueue(ctx, a, 1, 10)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard retrieved", gin.H{
		"applications":      stats,
		"pending_documents": queue,
	})
}
