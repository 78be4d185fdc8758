package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-progress-api/internal/dto"
	"github.com/noah-isme/lms-progress-api/internal/models"
	appErrors "github.com/noah-isme/lms-progress-api/pkg/errors"
	"github.com/noah-isme/lms-progress-api/pkg/response"
)

type progressService interface {
	Schools(ctx context.Context, claims *models.JWTClaims) ([]models.School, error)
	Cohorts(ctx context.Context, claims *models.JWTClaims, schoolID string) ([]models.Cohort, error)
	Hierarchy(ctx context.Context) ([]models.CurriculumNode, error)
	SelectSchool(ctx context.Context, claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error)
	SelectCohort(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error)
	SelectStudent(ctx context.Context, claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error)
	SelectCurriculum(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error)
	SelectCollection(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error)
	SelectCourse(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error)
	SelectChapter(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error)
	Selection(claims *models.JWTClaims) dto.SelectionStateResponse
	View(claims *models.JWTClaims) dto.ProgressViewResponse
	FilterOptions(ctx context.Context, claims *models.JWTClaims) (dto.FilterOptionsResponse, error)
}

// ProgressHandler wires the progress dashboard service to HTTP endpoints.
type ProgressHandler struct {
	service progressService
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service progressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// Schools godoc
// @Summary List accessible schools
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progress/schools [get]
func (h *ProgressHandler) Schools(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	schools, err := h.service.Schools(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools, nil)
}

// Cohorts godoc
// @Summary List cohorts of a school
// @Tags Progress
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /progress/schools/{id}/cohorts [get]
func (h *ProgressHandler) Cohorts(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	schoolID := strings.TrimSpace(c.Param("id"))
	if schoolID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "school id is required"))
		return
	}
	cohorts, err := h.service.Cohorts(c.Request.Context(), claims, schoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cohorts, nil)
}

// Hierarchy godoc
// @Summary Curriculum hierarchy
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progress/hierarchy [get]
func (h *ProgressHandler) Hierarchy(c *gin.Context) {
	nodes, err := h.service.Hierarchy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nodes, nil)
}

// Selection godoc
// @Summary Current selection state
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progress/selection [get]
func (h *ProgressHandler) Selection(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Selection(claims), nil)
}

// SelectSchool godoc
// @Summary Select or clear the school filter
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /progress/selection/school [put]
func (h *ProgressHandler) SelectSchool(c *gin.Context) {
	h.applySelection(c, func(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
		return h.service.SelectSchool(c.Request.Context(), claims, id)
	})
}

// SelectCohort godoc
// @Summary Select or clear the cohort filter
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /progress/selection/cohort [put]
func (h *ProgressHandler) SelectCohort(c *gin.Context) {
	h.applySelection(c, h.service.SelectCohort)
}

// SelectStudent godoc
// @Summary Select or clear the student filter
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /progress/selection/student [put]
func (h *ProgressHandler) SelectStudent(c *gin.Context) {
	h.applySelection(c, func(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
		return h.service.SelectStudent(c.Request.Context(), claims, id)
	})
}

// SelectCurriculum godoc
// @Summary Select or clear the curriculum filter
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /progress/selection/curriculum [put]
func (h *ProgressHandler) SelectCurriculum(c *gin.Context) {
	h.applySelection(c, h.service.SelectCurriculum)
}

// SelectCollection godoc
// @Summary Select or clear the collection filter
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /progress/selection/collection [put]
func (h *ProgressHandler) SelectCollection(c *gin.Context) {
	h.applySelection(c, h.service.SelectCollection)
}

// SelectCourse godoc
// @Summary Select or clear the course filter
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /progress/selection/course [put]
func (h *ProgressHandler) SelectCourse(c *gin.Context) {
	h.applySelection(c, h.service.SelectCourse)
}

// SelectChapter godoc
// @Summary Select or clear the chapter filter
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /progress/selection/chapter [put]
func (h *ProgressHandler) SelectChapter(c *gin.Context) {
	h.applySelection(c, h.service.SelectChapter)
}

// View godoc
// @Summary Resolved progress view for the current selection
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progress/view [get]
func (h *ProgressHandler) View(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.service.View(claims), nil)
}

// Options godoc
// @Summary Selectable filter options for the current selection
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progress/options [get]
func (h *ProgressHandler) Options(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	options, err := h.service.FilterOptions(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

func (h *ProgressHandler) applySelection(c *gin.Context, apply func(*models.JWTClaims, *string) (dto.SelectionStateResponse, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	state, err := apply(claims, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}
