package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intelliplan-api/internal/dto"
	"github.com/noah-isme/intelliplan-api/internal/middleware"
	"github.com/noah-isme/intelliplan-api/internal/models"
	"github.com/noah-isme/intelliplan-api/internal/service"
	appErrors "github.com/noah-isme/intelliplan-api/pkg/errors"
	"github.com/noah-isme/intelliplan-api/pkg/response"
)

type timetablePlanner interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Filter(ctx context.Context, req dto.FilterTimetablesRequest) (*dto.FilterTimetablesResponse, error)
	Detect(ctx context.Context, req dto.DetectConstraintsRequest) ([]models.Constraint, error)
}

type timetableExporter interface {
	Export(ctx context.Context, req dto.ExportTimetableRequest) (*dto.ExportResult, error)
}

// TimetableHandler exposes generation, filtering and export endpoints.
type TimetableHandler struct {
	planner  timetablePlanner
	exporter timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(planner *service.TimetableService, exporter *service.ExportService) *TimetableHandler {
	return &TimetableHandler{planner: planner, exporter: exporter}
}

// Generate godoc
// @Summary Generate conflict-free timetables
// @Description Enumerates every clash-free combination of one slot per course. Results are kept for filtering under result_id.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Courses and slot preferences"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid timetable generation payload"))
		return
	}
	result, err := h.planner.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.Cached)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Filter godoc
// @Summary Filter timetables with a natural-language constraint
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.FilterTimetablesRequest true "Result id or schedules plus constraint text"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/filter [post]
func (h *TimetableHandler) Filter(c *gin.Context) {
	var req dto.FilterTimetablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid filter payload"))
		return
	}
	result, err := h.planner.Filter(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Detect godoc
// @Summary Detect scheduling constraints in free text
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body dto.DetectConstraintsRequest true "Constraint text"
// @Success 200 {object} response.Envelope
// @Router /constraints/detect [post]
func (h *TimetableHandler) Detect(c *gin.Context) {
	var req dto.DetectConstraintsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid detect payload"))
		return
	}
	constraints, err := h.planner.Detect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"constraints": constraints}, nil)
}

// Export godoc
// @Summary Download a timetable
// @Tags Timetables
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Produce text/calendar
// @Param format query string false "csv, pdf or ics" default(csv)
// @Param payload body dto.ExportTimetableRequest true "Schedule to export"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /timetables/export [post]
func (h *TimetableHandler) Export(c *gin.Context) {
	var req dto.ExportTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid export payload"))
		return
	}
	req.Format = dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportCSV))))

	file, err := h.exporter.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
