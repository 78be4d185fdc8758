package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-progress-api/internal/dto"
	"github.com/noah-isme/lms-progress-api/internal/models"
	appErrors "github.com/noah-isme/lms-progress-api/pkg/errors"
	"github.com/noah-isme/lms-progress-api/pkg/export"
)

// Export formats supported by the progress export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type progressExportSource interface {
	View(claims *models.JWTClaims) dto.ProgressViewResponse
	ViewSnapshot(claims *models.JWTClaims) (models.SelectionState, *models.AggregateBundle, []models.LessonRecord)
}

// ExportResult carries a rendered export document.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the caller's current progress view into
// downloadable documents.
type ExportService struct {
	progress progressExportSource
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// ExportServiceParams bundles ExportService dependencies.
type ExportServiceParams struct {
	Progress progressExportSource
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &ExportService{
		progress: params.Progress,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      now,
	}
}

// Export renders the caller's resolved view plus a breakdown table in
// the requested format. A session without any resolvable data exports
// nothing and reports a validation error instead.
func (s *ExportService) Export(claims *models.JWTClaims, format string) (*ExportResult, error) {
	view := s.progress.View(claims)
	if !view.HasData {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no progress data selected to export")
	}

	dataset := s.buildDataset(claims, view)
	stamp := s.now().UTC().Format("20060102-150405")

	switch strings.ToLower(format) {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("progress-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, view.Title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("progress-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

const (
	exportColScope             = "Scope"
	exportColName              = "Name"
	exportColTotalLessons      = "Total Lessons"
	exportColTotalCompleted    = "Total Completed"
	exportColRequiredLessons   = "Required Lessons"
	exportColRequiredCompleted = "Required Completed"
	exportColTotalPct          = "Total %"
	exportColRequiredPct       = "Required %"
)

// buildDataset emits the resolved view as the first row followed by a
// breakdown: per-course tallies while a student is selected, otherwise
// the per-student aggregates of the active cohort or school.
func (s *ExportService) buildDataset(claims *models.JWTClaims, view dto.ProgressViewResponse) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{
			exportColScope,
			exportColName,
			exportColTotalLessons,
			exportColTotalCompleted,
			exportColRequiredLessons,
			exportColRequiredCompleted,
			exportColTotalPct,
			exportColRequiredPct,
		},
	}

	dataset.Rows = append(dataset.Rows, map[string]string{
		exportColScope:             "Current View",
		exportColName:              view.Title,
		exportColTotalLessons:      strconv.Itoa(view.TotalLessons),
		exportColTotalCompleted:    strconv.Itoa(view.TotalCompleted),
		exportColRequiredLessons:   strconv.Itoa(view.RequiredLessons),
		exportColRequiredCompleted: strconv.Itoa(view.RequiredCompleted),
		exportColTotalPct:          strconv.Itoa(view.TotalPercentage),
		exportColRequiredPct:       strconv.Itoa(view.RequiredPercentage),
	})

	state, bundle, records := s.progress.ViewSnapshot(claims)
	switch {
	case state.StudentID != nil && records != nil:
		dataset.Rows = append(dataset.Rows, courseBreakdown(records)...)
	case bundle != nil:
		dataset.Rows = append(dataset.Rows, studentBreakdown(state, bundle)...)
	}

	return dataset
}

func courseBreakdown(records []models.LessonRecord) []map[string]string {
	grouping := GroupLessonRecords(records)
	tallies := make([]LevelTally, 0, len(grouping.ByCourse))
	for _, entry := range grouping.ByCourse {
		tallies = append(tallies, entry)
	}
	sort.Slice(tallies, func(i, j int) bool { return tallies[i].Name < tallies[j].Name })

	rows := make([]map[string]string, 0, len(tallies))
	for _, entry := range tallies {
		rows = append(rows, map[string]string{
			exportColScope:          "Course",
			exportColName:           entry.Name,
			exportColTotalLessons:   strconv.Itoa(entry.TotalLessons),
			exportColTotalCompleted: strconv.Itoa(entry.CompletedLessons),
			exportColTotalPct:       strconv.Itoa(percentage(entry.CompletedLessons, entry.TotalLessons)),
		})
	}
	return rows
}

func studentBreakdown(state models.SelectionState, bundle *models.AggregateBundle) []map[string]string {
	type entry struct {
		name   string
		counts models.LessonCounts
	}

	var entries []entry
	if state.CohortID != nil {
		for _, row := range bundle.CohortStudents {
			if row.CohortID == *state.CohortID {
				entries = append(entries, entry{name: row.StudentName, counts: row.LessonCounts})
			}
		}
	} else {
		for _, row := range bundle.Students {
			entries = append(entries, entry{name: row.StudentName, counts: row.LessonCounts})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			exportColScope:             "Student",
			exportColName:              e.name,
			exportColTotalLessons:      strconv.Itoa(e.counts.TotalLessonsExpected),
			exportColTotalCompleted:    strconv.Itoa(e.counts.TotalLessonsCompleted),
			exportColRequiredLessons:   strconv.Itoa(e.counts.RequiredLessonsExpected),
			exportColRequiredCompleted: strconv.Itoa(e.counts.RequiredLessonsCompleted),
			exportColTotalPct:          strconv.Itoa(percentage(e.counts.TotalLessonsCompleted, e.counts.TotalLessonsExpected)),
			exportColRequiredPct:       strconv.Itoa(percentage(e.counts.RequiredLessonsCompleted, e.counts.RequiredLessonsExpected)),
		})
	}
	return rows
}
