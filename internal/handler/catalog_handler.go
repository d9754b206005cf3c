package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intelliplan-api/internal/catalog"
	"github.com/noah-isme/intelliplan-api/internal/dto"
	"github.com/noah-isme/intelliplan-api/internal/models"
	"github.com/noah-isme/intelliplan-api/internal/service"
	appErrors "github.com/noah-isme/intelliplan-api/pkg/errors"
	"github.com/noah-isme/intelliplan-api/pkg/response"
)

const uploadField = "file"

type catalogManager interface {
	Reload(ctx context.Context) (*catalog.Snapshot, error)
	Upload(ctx context.Context, filename string, size int64, body io.Reader) (*dto.CatalogReloadResponse, error)
	Stats(ctx context.Context) (models.CatalogStats, error)
	ListCourses(ctx context.Context, query dto.CourseListQuery) ([]models.CourseSummary, *models.Pagination, error)
	GetCourse(ctx context.Context, code string) (*models.CourseSummary, error)
}

// CatalogHandler exposes catalog management and course lookup endpoints.
type CatalogHandler struct {
	service catalogManager
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Reload godoc
// @Summary Rebuild the catalog from the configured file
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /catalog/reload [post]
func (h *CatalogHandler) Reload(c *gin.Context) {
	snapshot, err := h.service.Reload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot.Stats(), nil)
}

// Upload godoc
// @Summary Replace the catalog with an uploaded CSV or XLSX file
// @Tags Catalog
// @Accept mpfd
// @Produce json
// @Param file formData file true "Enrollment export (.csv or .xlsx)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /catalog/upload [post]
func (h *CatalogHandler) Upload(c *gin.Context) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, appErrors.Invalid(err, "multipart field \"file\" is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	result, err := h.service.Upload(c.Request.Context(), header.Filename, header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Stats godoc
// @Summary Describe the active catalog
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/stats [get]
func (h *CatalogHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Code or name fragment"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	var query dto.CourseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid course query"))
		return
	}
	courses, pagination, err := h.service.ListCourses(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// GetCourse godoc
// @Summary Get one course with its slots
// @Tags Catalog
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.service.GetCourse(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
