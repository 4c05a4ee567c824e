package v1

import (
	"net/http"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documents domain.DocumentUsecase
}

func NewDocumentHandler(protected *gin.RouterGroup, documents domain.DocumentUsecase) {
	handler := &DocumentHandler{documents: documents}

	review := protected.Group("/documents/review")
	{
		review.GET("", handler.PendingQueue)
		review.POST("/:docId/approve", handler.Approve)
		review.POST("/:docId/reject", handler.Reject)
	}
}

type ReviewRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// PendingQueue godoc
// @Summary      Documents awaiting review
// @Tags         documents
// @Produce      json
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=domain.PaginatedResult[domain.Document]}
// @Failure      403    {object}  response.Response
// @Router       /documents/review [get]
// @Security     BearerAuth
func (h *DocumentHandler) PendingQueue(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.documents.PendingQueue(c.Request.Context(), actor(c), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Pending documents retrieved", res)
}

// Approve godoc
// @Summary      Approve a document
// @Description  Only PENDING documents can be reviewed
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        docId    path      string         true   "Document ID"
// @Param        request  body      ReviewRequest  false  "Notes"
// @Success      200      {object}  response.Response{data=domain.Document}
// @Failure      422      {object}  response.Response
// @Router       /documents/review/{docId}/approve [post]
// @Security     BearerAuth
func (h *DocumentHandler) Approve(c *gin.Context) {
	h.review(c, domain.ReviewApprove)
}

// Reject godoc
// @Summary      Reject a document
// @Description  Rejection requires notes explaining the problem
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        docId    path      string         true  "Document ID"
// @Param        request  body      ReviewRequest  true  "Notes"
// @Success      200      {object}  response.Response{data=domain.Document}
// @Failure      422      {object}  response.Response
// @Router       /documents/review/{docId}/reject [post]
// @Security     BearerAuth
func (h *DocumentHandler) Reject(c *gin.Context) {
	h.review(c, domain.ReviewReject)
}

func (h *DocumentHandler) review(c *gin.Context, decision domain.ReviewDecision) {
	var req ReviewRequest
	// An empty body is a review without notes
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Review(c.Request.Context(), actor(c), c.Param("docId"), decision, req.Notes)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Document reviewed", doc)
}
