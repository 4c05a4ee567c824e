package v1

import (
	"net/http"
	"strings"
	"time"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidates   domain.CandidateUsecase
	documents    domain.DocumentUsecase
	applications domain.ApplicationUsecase
}

func NewCandidateHandler(protected *gin.RouterGroup, candidates domain.CandidateUsecase, documents domain.DocumentUsecase, applications domain.ApplicationUsecase) {
	handler := &CandidateHandler{candidates: candidates, documents: documents, applications: applications}

	self := protected.Group("/dashboard/candidate")
	{
		self.GET("", handler.OwnDashboard)
		self.PUT("/info", handler.UpsertOwnInfo)
		self.GET("/documents", handler.ListOwnDocuments)
		self.POST("/documents", handler.UploadOwnDocument)
		self.GET("/documents/:docId/url", handler.OwnDocumentURL)
	}

	middleman := protected.Group("/dashboard/middleman")
	{
		middleman.GET("", handler.MiddlemanDashboard)
		middleman.POST("/candidates", handler.Create)
	}

	candidateGroup := protected.Group("/candidates")
	{
		candidateGroup.GET("", handler.List)
		candidateGroup.GET("/:id", handler.Get)
		candidateGroup.PUT("/:id/info", handler.UpsertInfo)
		candidateGroup.GET("/:id/documents", handler.ListDocuments)
		candidateGroup.POST("/:id/documents", handler.UploadDocument)
		candidateGroup.GET("/:id/documents/:docId/url", handler.DocumentURL)
	}
}

// CandidateInfoRequest is the editable part of a candidate's record
type CandidateInfoRequest struct {
	Phone           *string           `json:"phone" binding:"omitempty,valid_phone"`
	Email           *string           `json:"email" binding:"omitempty,email,max=254"`
	Address         *string           `json:"address" binding:"omitempty,max=500,no_emoji"`
	DateOfBirth     *string           `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	NationalID      *string           `json:"national_id" binding:"omitempty,national_id"`
	EducationLevel  *string           `json:"education_level" binding:"omitempty,max=100"`
	ExperienceYears *int              `json:"experience_years" binding:"omitempty,min=0,max=60"`
	Skills          []string          `json:"skills" binding:"omitempty,max=50,dive,min=1,max=50"`
	Languages       []domain.Language `json:"languages" binding:"omitempty,max=20,dive"`
}

func (r CandidateInfoRequest) toDomain() (*domain.CandidateInfo, error) {
	info := &domain.CandidateInfo{
		Phone:           r.Phone,
		Email:           r.Email,
		Address:         r.Address,
		NationalID:      r.NationalID,
		EducationLevel:  r.EducationLevel,
		ExperienceYears: r.ExperienceYears,
		Skills:          r.Skills,
		Languages:       r.Languages,
	}
	if r.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *r.DateOfBirth)
		if err != nil {
			return nil, apperror.BadRequest("Date of birth must be YYYY-MM-DD")
		}
		info.DateOfBirth = &dob
	}
	return info, nil
}

type CreateCandidateRequest struct {
	Email    string                `json:"email" binding:"required,email,max=254"`
	Password string                `json:"password" binding:"required,min=8,max=72"`
	FullName string                `json:"full_name" binding:"required,min=2,max=100,valid_name,no_emoji"`
	Info     *CandidateInfoRequest `json:"info"`
}

// OwnDashboard godoc
// @Summary      Candidate dashboard
// @Description  The caller's own profile, info and document summary
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CandidateView}
// @Router       /dashboard/candidate [get]
// @Security     BearerAuth
func (h *CandidateHandler) OwnDashboard(c *gin.Context) {
	a := actor(c)
	view, err := h.candidates.Get(c.Request.Context(), a, a.ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard retrieved", view)
}

// MiddlemanDashboard godoc
// @Summary      Middleman dashboard
// @Description  Candidates linked to the caller and their status counts
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /dashboard/middleman [get]
// @Security     BearerAuth
func (h *CandidateHandler) MiddlemanDashboard(c *gin.Context) {
	ctx, a := c.Request.Context(), actor(c)
	list, err := h.candidates.List(ctx, a)
	if err != nil {
		c.Error(err)
		return
	}
	stats, err := h.applications.Stats(ctx, a)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard retrieved", gin.H{
		"candidates":   list,
		"applications": stats,
	})
}

// List godoc
// @Summary      List candidates
// @Description  Middlemen see their own candidates; consultants and admins see all
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Profile}
// @Router       /candidates [get]
// @Security     BearerAuth
func (h *CandidateHandler) List(c *gin.Context) {
	list, err := h.candidates.List(c.Request.Context(), actor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates retrieved", list)
}

// Get godoc
// @Summary      Candidate detail
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.CandidateView}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
// @Security     BearerAuth
func (h *CandidateHandler) Get(c *gin.Context) {
	view, err := h.candidates.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate retrieved", view)
}

// Create godoc
// @Summary      Create a linked candidate
// @Description  A middleman creates a candidate account that is linked to it
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        request  body      CreateCandidateRequest  true  "Candidate"
// @Success      201      {object}  response.Response{data=domain.Profile}
// @Failure      409      {object}  response.Response
// @Router       /dashboard/middleman/candidates [post]
// @Security     BearerAuth
func (h *CandidateHandler) Create(c *gin.Context) {
	var req CreateCandidateRequest
	if !bindJSON(c, &req) {
		return
	}
	in := domain.NewUserInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		FullName: req.FullName,
		Role:     domain.RoleCandidate,
	}
	if req.Info != nil {
		info, err := req.Info.toDomain()
		if err != nil {
			c.Error(err)
			return
		}
		in.Info = info
	}

	p, err := h.candidates.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Candidate created", p)
}

// UpsertInfo godoc
// @Summary      Update candidate info
// @Description  Candidates and middlemen may edit only while the application is NEW_APPLICATION or UPDATE_REQUIRED
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Candidate ID"
// @Param        request  body      CandidateInfoRequest  true  "Info"
// @Success      200      {object}  response.Response{data=domain.CandidateInfo}
// @Failure      422      {object}  response.Response
// @Router       /candidates/{id}/info [put]
// @Security     BearerAuth
func (h *CandidateHandler) UpsertInfo(c *gin.Context) {
	h.upsertInfo(c, c.Param("id"))
}

func (h *CandidateHandler) UpsertOwnInfo(c *gin.Context) {
	h.upsertInfo(c, actor(c).ID)
}

func (h *CandidateHandler) upsertInfo(c *gin.Context, candidateID string) {
	var req CandidateInfoRequest
	if !bindJSON(c, &req) {
		return
	}
	info, err := req.toDomain()
	if err != nil {
		c.Error(err)
		return
	}
	saved, err := h.candidates.UpsertInfo(c.Request.Context(), actor(c), candidateID, info)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate info saved", saved)
}

// ListDocuments godoc
// @Summary      Candidate documents
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=[]domain.Document}
// @Router       /candidates/{id}/documents [get]
// @Security     BearerAuth
func (h *CandidateHandler) ListDocuments(c *gin.Context) {
	h.listDocuments(c, c.Param("id"))
}

func (h *CandidateHandler) ListOwnDocuments(c *gin.Context) {
	h.listDocuments(c, actor(c).ID)
}

func (h *CandidateHandler) listDocuments(c *gin.Context, candidateID string) {
	docs, err := h.documents.List(c.Request.Context(), actor(c), candidateID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Documents retrieved", docs)
}

// UploadDocument godoc
// @Summary      Upload or replace a document
// @Description  multipart/form-data with 'file' and 'document_type' (CV, POLICE, RESIDENCE, KIMLIK, DIPLOMA). Replacing resets the document to PENDING.
// @Tags         documents
// @Accept       mpfd
// @Produce      json
// @Param        id             path      string  true  "Candidate ID"
// @Param        document_type  formData  string  true  "Document type"
// @Param        file           formData  file    true  "File (pdf, jpg, png, webp, doc, docx; max 10 MB)"
// @Success      201            {object}  response.Response{data=domain.Document}
// @Failure      400            {object}  response.Response
// @Failure      422            {object}  response.Response
// @Failure      429            {object}  response.Response
// @Router       /candidates/{id}/documents [post]
// @Security     BearerAuth
func (h *CandidateHandler) UploadDocument(c *gin.Context) {
	h.upload(c, c.Param("id"))
}

func (h *CandidateHandler) UploadOwnDocument(c *gin.Context) {
	h.upload(c, actor(c).ID)
}

func (h *CandidateHandler) upload(c *gin.Context, candidateID string) {
	docType := domain.DocumentType(c.PostForm("document_type"))
	if !docType.Valid() {
		c.Error(apperror.BadRequest("Unknown document type: " + string(docType)))
		return
	}
	fh, data, err := readUpload(c, "file", security.DocumentPolicy.MaxBytes)
	if err != nil {
		c.Error(err)
		return
	}

	doc, err := h.documents.Upload(c.Request.Context(), actor(c), candidateID, domain.DocumentUpload{
		DocumentType: docType,
		FileName:     fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Data:         data,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Document uploaded", doc)
}

// DocumentURL godoc
// @Summary      Signed document URL
// @Description  Short-lived URL for downloading one document
// @Tags         documents
// @Produce      json
// @Param        id     path      string  true  "Candidate ID"
// @Param        docId  path      string  true  "Document ID"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /candidates/{id}/documents/{docId}/url [get]
// @Security     BearerAuth
func (h *CandidateHandler) DocumentURL(c *gin.Context) {
	h.documentURL(c, c.Param("id"))
}

func (h *CandidateHandler) OwnDocumentURL(c *gin.Context) {
	h.documentURL(c, actor(c).ID)
}

func (h *CandidateHandler) documentURL(c *gin.Context, candidateID string) {
	url, err := h.documents.AccessURL(c.Request.Context(), actor(c), candidateID, c.Param("docId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Document URL issued", gin.H{"url": url})
}
