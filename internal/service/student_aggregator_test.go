package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-progress-api/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func lessonRecord(lessonID string, required, completed bool) models.LessonRecord {
	r := models.LessonRecord{
		LessonID:       lessonID,
		LessonName:     "Lesson " + lessonID,
		ChapterID:      "ch-1",
		ChapterName:    "Airway Basics",
		CourseID:       "co-1",
		CourseName:     "Emergency Medicine",
		CollectionID:   "cl-1",
		CollectionName: "Core Clinical",
		CurriculumID:   "cu-1",
		CurriculumName: "Medicine",
		IsRequired:     required,
	}
	if completed {
		r.CompletionDate = timePtr(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	}
	return r
}

func TestGroupLessonRecordsTalliesEveryLevel(t *testing.T) {
	records := []models.LessonRecord{
		lessonRecord("l1", true, true),
		lessonRecord("l2", false, false),
		lessonRecord("l3", true, true),
	}
	// Move one lesson to a second course in the same collection.
	records[2].CourseID = "co-2"
	records[2].CourseName = "Cardiology"
	records[2].ChapterID = "ch-2"
	records[2].ChapterName = "Arrhythmias"

	grouping := GroupLessonRecords(records)

	require.Len(t, grouping.ByCollection, 1)
	assert.Equal(t, 3, grouping.ByCollection["cl-1"].TotalLessons)
	assert.Equal(t, 2, grouping.ByCollection["cl-1"].CompletedLessons)

	require.Len(t, grouping.ByCourse, 2)
	assert.Equal(t, 2, grouping.ByCourse["co-1"].TotalLessons)
	assert.Equal(t, 1, grouping.ByCourse["co-1"].CompletedLessons)
	assert.Equal(t, "Cardiology", grouping.ByCourse["co-2"].Name)
	assert.Equal(t, 1, grouping.ByCourse["co-2"].TotalLessons)

	require.Len(t, grouping.ByChapter, 2)
	assert.Equal(t, 2, grouping.ByChapter["ch-1"].TotalLessons)
}

func TestGroupLessonRecordsIgnoresFilters(t *testing.T) {
	// Grouping is computed over the full record set regardless of the
	// caller's filter selection; filtering happens elsewhere.
	records := []models.LessonRecord{
		lessonRecord("l1", true, true),
		lessonRecord("l2", false, false),
	}
	grouping := GroupLessonRecords(records)
	assert.Equal(t, 2, grouping.ByCourse["co-1"].TotalLessons)
}

func TestFilteredStudentMetricsNoFilter(t *testing.T) {
	records := []models.LessonRecord{
		lessonRecord("l1", true, true),
		lessonRecord("l2", true, false),
		lessonRecord("l3", false, true),
		lessonRecord("l4", false, false),
	}

	metrics := FilteredStudentMetrics(records, models.SelectionState{StudentID: strPtr("st-1")})

	assert.Equal(t, "Student Progress", metrics.Title)
	assert.Equal(t, 4, metrics.TotalLessons)
	assert.Equal(t, 2, metrics.TotalCompleted)
	assert.Equal(t, 2, metrics.RequiredLessons)
	assert.Equal(t, 1, metrics.RequiredCompleted)
}

func TestFilteredStudentMetricsMostSpecificFilterWins(t *testing.T) {
	inChapter := lessonRecord("l1", true, true)
	outOfChapter := lessonRecord("l2", true, true)
	outOfChapter.ChapterID = "ch-other"
	outOfChapter.ChapterName = "Other"

	state := models.SelectionState{
		StudentID:    strPtr("st-1"),
		CurriculumID: strPtr("cu-1"),
		CollectionID: strPtr("cl-1"),
		CourseID:     strPtr("co-1"),
		ChapterID:    strPtr("ch-1"),
	}

	metrics := FilteredStudentMetrics([]models.LessonRecord{inChapter, outOfChapter}, state)

	// Only the chapter filter applies; the coarser levels are implied.
	assert.Equal(t, "Airway Basics", metrics.Title)
	assert.Equal(t, 1, metrics.TotalLessons)
	assert.Equal(t, 1, metrics.TotalCompleted)
}

func TestFilteredStudentMetricsCourseFilter(t *testing.T) {
	records := []models.LessonRecord{
		lessonRecord("l1", true, true),
		lessonRecord("l2", false, false),
	}
	records[1].CourseID = "co-2"

	state := models.SelectionState{
		StudentID:    strPtr("st-1"),
		CurriculumID: strPtr("cu-1"),
		CollectionID: strPtr("cl-1"),
		CourseID:     strPtr("co-1"),
	}
	metrics := FilteredStudentMetrics(records, state)

	assert.Equal(t, "Emergency Medicine", metrics.Title)
	assert.Equal(t, 1, metrics.TotalLessons)
	assert.Equal(t, 1, metrics.RequiredLessons)
}

func TestFilteredStudentMetricsEmptyMatchUsesFallbackTitle(t *testing.T) {
	records := []models.LessonRecord{lessonRecord("l1", true, true)}
	state := models.SelectionState{
		StudentID:    strPtr("st-1"),
		CurriculumID: strPtr("cu-unknown"),
	}

	metrics := FilteredStudentMetrics(records, state)

	assert.Equal(t, "Curriculum", metrics.Title)
	assert.Zero(t, metrics.TotalLessons)
	assert.Zero(t, metrics.TotalCompleted)
	assert.Zero(t, metrics.RequiredLessons)
	assert.Zero(t, metrics.RequiredCompleted)
}

func TestFilteredStudentMetricsEmptyRecords(t *testing.T) {
	metrics := FilteredStudentMetrics(nil, models.SelectionState{StudentID: strPtr("st-1")})
	assert.Equal(t, "Student Progress", metrics.Title)
	assert.Zero(t, metrics.TotalLessons)
}
