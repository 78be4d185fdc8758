package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-progress-api/internal/dto"
	"github.com/noah-isme/lms-progress-api/internal/middleware"
	"github.com/noah-isme/lms-progress-api/internal/models"
	appErrors "github.com/noah-isme/lms-progress-api/pkg/errors"
)

type fakeProgressSrv struct {
	schools    []models.School
	schoolsErr error
	cohorts    []models.Cohort
	cohortsErr error
	nodes      []models.CurriculumNode
	selection  dto.SelectionStateResponse
	selectErr  error
	view       dto.ProgressViewResponse
	options    dto.FilterOptionsResponse
	optionsErr error

	lastLevel    string
	lastID       *string
	lastSchoolID string
}

func (f *fakeProgressSrv) Schools(context.Context, *models.JWTClaims) ([]models.School, error) {
	return f.schools, f.schoolsErr
}

func (f *fakeProgressSrv) Cohorts(_ context.Context, _ *models.JWTClaims, schoolID string) ([]models.Cohort, error) {
	f.lastSchoolID = schoolID
	return f.cohorts, f.cohortsErr
}

func (f *fakeProgressSrv) Hierarchy(context.Context) ([]models.CurriculumNode, error) {
	return f.nodes, nil
}

func (f *fakeProgressSrv) apply(level string, id *string) (dto.SelectionStateResponse, error) {
	f.lastLevel = level
	f.lastID = id
	return f.selection, f.selectErr
}

func (f *fakeProgressSrv) SelectSchool(_ context.Context, _ *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	return f.apply("school", id)
}

func (f *fakeProgressSrv) SelectCohort(_ *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	return f.apply("cohort", id)
}

func (f *fakeProgressSrv) SelectStudent(_ context.Context, _ *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	return f.apply("student", id)
}

func (f *fakeProgressSrv) SelectCurriculum(_ *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	return f.apply("curriculum", id)
}

func (f *fakeProgressSrv) SelectCollection(_ *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	return f.apply("collection", id)
}

func (f *fakeProgressSrv) SelectCourse(_ *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	return f.apply("course", id)
}

func (f *fakeProgressSrv) SelectChapter(_ *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	return f.apply("chapter", id)
}

func (f *fakeProgressSrv) Selection(*models.JWTClaims) dto.SelectionStateResponse {
	return f.selection
}

func (f *fakeProgressSrv) View(*models.JWTClaims) dto.ProgressViewResponse {
	return f.view
}

func (f *fakeProgressSrv) FilterOptions(context.Context, *models.JWTClaims) (dto.FilterOptionsResponse, error) {
	return f.options, f.optionsErr
}

func newProgressContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if body != "" {
		c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin})
	return c, rec
}

func TestProgressHandlerSchoolsSuccess(t *testing.T) {
	service := &fakeProgressSrv{schools: []models.School{{ID: "school-1", Name: "Northside"}}}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodGet, "/progress/schools", "")
	handler.Schools(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, "Northside", envelope.Data[0]["name"])
}

func TestProgressHandlerSchoolsUnauthenticated(t *testing.T) {
	handler := NewProgressHandler(&fakeProgressSrv{})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/progress/schools", nil)

	handler.Schools(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProgressHandlerCohortsRequiresSchoolID(t *testing.T) {
	handler := NewProgressHandler(&fakeProgressSrv{})

	c, rec := newProgressContext(t, http.MethodGet, "/progress/schools//cohorts", "")
	c.Params = gin.Params{{Key: "id", Value: "  "}}
	handler.Cohorts(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressHandlerCohortsPassesSchoolID(t *testing.T) {
	service := &fakeProgressSrv{cohorts: []models.Cohort{{ID: "cohort-1", Name: "Class of 2027"}}}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodGet, "/progress/schools/school-1/cohorts", "")
	c.Params = gin.Params{{Key: "id", Value: "school-1"}}
	handler.Cohorts(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "school-1", service.lastSchoolID)
}

func TestProgressHandlerSelectSchool(t *testing.T) {
	id := "school-1"
	service := &fakeProgressSrv{selection: dto.SelectionStateResponse{SchoolID: &id}}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodPut, "/progress/selection/school", `{"id":"school-1"}`)
	handler.SelectSchool(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "school", service.lastLevel)
	if assert.NotNil(t, service.lastID) {
		assert.Equal(t, "school-1", *service.lastID)
	}
	var envelope struct {
		Data dto.SelectionStateResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	if assert.NotNil(t, envelope.Data.SchoolID) {
		assert.Equal(t, "school-1", *envelope.Data.SchoolID)
	}
}

func TestProgressHandlerSelectSchoolClear(t *testing.T) {
	service := &fakeProgressSrv{}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodPut, "/progress/selection/school", `{"id":null}`)
	handler.SelectSchool(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "school", service.lastLevel)
	assert.Nil(t, service.lastID)
}

func TestProgressHandlerSelectInvalidPayload(t *testing.T) {
	service := &fakeProgressSrv{}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodPut, "/progress/selection/cohort", `{"id":`)
	handler.SelectCohort(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.lastLevel)
}

func TestProgressHandlerSelectionErrorsPropagate(t *testing.T) {
	service := &fakeProgressSrv{selectErr: appErrors.Clone(appErrors.ErrValidation, "select a school first")}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodPut, "/progress/selection/student", `{"id":"st-1"}`)
	handler.SelectStudent(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope struct {
		Error map[string]interface{} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error["code"])
}

func TestProgressHandlerCurriculumLevels(t *testing.T) {
	cases := []struct {
		level string
		call  func(h *ProgressHandler, c *gin.Context)
	}{
		{"curriculum", (*ProgressHandler).SelectCurriculum},
		{"collection", (*ProgressHandler).SelectCollection},
		{"course", (*ProgressHandler).SelectCourse},
		{"chapter", (*ProgressHandler).SelectChapter},
	}
	for _, tc := range cases {
		service := &fakeProgressSrv{}
		handler := NewProgressHandler(service)
		c, rec := newProgressContext(t, http.MethodPut, "/progress/selection/"+tc.level, `{"id":"node-1"}`)

		tc.call(handler, c)

		assert.Equal(t, http.StatusOK, rec.Code, tc.level)
		assert.Equal(t, tc.level, service.lastLevel)
	}
}

func TestProgressHandlerView(t *testing.T) {
	service := &fakeProgressSrv{view: dto.ProgressViewResponse{
		HasData:         true,
		Title:           "School: Northside",
		TotalLessons:    100,
		TotalCompleted:  40,
		TotalPercentage: 40,
	}}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodGet, "/progress/view", "")
	handler.View(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.ProgressViewResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.HasData)
	assert.Equal(t, "School: Northside", envelope.Data.Title)
	assert.Equal(t, 40, envelope.Data.TotalPercentage)
}

func TestProgressHandlerOptionsError(t *testing.T) {
	service := &fakeProgressSrv{optionsErr: appErrors.ErrInternal}
	handler := NewProgressHandler(service)

	c, rec := newProgressContext(t, http.MethodGet, "/progress/options", "")
	handler.Options(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
