package service

import (
	"github.com/noah-isme/lms-progress-api/internal/models"
)

// ProgressMetrics is the uniform four-counter shape shared by the
// per-student aggregation path and the aggregate resolver output.
type ProgressMetrics struct {
	Title             string `json:"title"`
	TotalLessons      int    `json:"total_lessons"`
	TotalCompleted    int    `json:"total_completed"`
	RequiredLessons   int    `json:"required_lessons"`
	RequiredCompleted int    `json:"required_completed"`
}

// LevelTally accumulates counts for one hierarchy entity, used to
// annotate filter-option labels ("Emergency Medicine (23)").
type LevelTally struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TotalLessons     int    `json:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons"`
}

// LessonGrouping holds collection/course/chapter subtotals computed
// over a student's full, unfiltered record set.
type LessonGrouping struct {
	ByCollection map[string]LevelTally
	ByCourse     map[string]LevelTally
	ByChapter    map[string]LevelTally
}

// GroupLessonRecords computes the three grouping maps. Filters are
// deliberately ignored here; the grouping always reflects the full
// record set so option labels stay stable while drilling down.
func GroupLessonRecords(records []models.LessonRecord) LessonGrouping {
	grouping := LessonGrouping{
		ByCollection: make(map[string]LevelTally),
		ByCourse:     make(map[string]LevelTally),
		ByChapter:    make(map[string]LevelTally),
	}
	for _, record := range records {
		tally(grouping.ByCollection, record.CollectionID, record.CollectionName, record)
		tally(grouping.ByCourse, record.CourseID, record.CourseName, record)
		tally(grouping.ByChapter, record.ChapterID, record.ChapterName, record)
	}
	return grouping
}

func tally(m map[string]LevelTally, id, name string, record models.LessonRecord) {
	entry := m[id]
	entry.ID = id
	entry.Name = name
	entry.TotalLessons++
	if record.Completed() {
		entry.CompletedLessons++
	}
	m[id] = entry
}

// FilteredStudentMetrics applies at most one curriculum filter, the
// most specific non-null level of the cascade, and totals the filtered
// set. Empty input produces zero-valued metrics, never an error.
func FilteredStudentMetrics(records []models.LessonRecord, state models.SelectionState) ProgressMetrics {
	match, title := recordFilter(state)

	metrics := ProgressMetrics{Title: title}
	for _, record := range records {
		if !match(record) {
			continue
		}
		if metrics.Title == "" {
			metrics.Title = filterTitle(record, state)
		}
		metrics.TotalLessons++
		if record.Completed() {
			metrics.TotalCompleted++
		}
		if record.IsRequired {
			metrics.RequiredLessons++
			if record.Completed() {
				metrics.RequiredCompleted++
			}
		}
	}
	if metrics.Title == "" {
		metrics.Title = fallbackFilterTitle(state)
	}
	return metrics
}

// recordFilter picks the single active filter predicate. The cascade
// guarantees at most the most specific non-null level matters, so the
// levels are checked from chapter outwards.
func recordFilter(state models.SelectionState) (func(models.LessonRecord) bool, string) {
	switch {
	case state.ChapterID != nil:
		id := *state.ChapterID
		return func(r models.LessonRecord) bool { return r.ChapterID == id }, ""
	case state.CourseID != nil:
		id := *state.CourseID
		return func(r models.LessonRecord) bool { return r.CourseID == id }, ""
	case state.CollectionID != nil:
		id := *state.CollectionID
		return func(r models.LessonRecord) bool { return r.CollectionID == id }, ""
	case state.CurriculumID != nil:
		id := *state.CurriculumID
		return func(r models.LessonRecord) bool { return r.CurriculumID == id }, ""
	default:
		return func(models.LessonRecord) bool { return true }, "Student Progress"
	}
}

func filterTitle(record models.LessonRecord, state models.SelectionState) string {
	switch {
	case state.ChapterID != nil:
		return nonEmpty(record.ChapterName, "Chapter")
	case state.CourseID != nil:
		return nonEmpty(record.CourseName, "Course")
	case state.CollectionID != nil:
		return nonEmpty(record.CollectionName, "Collection")
	case state.CurriculumID != nil:
		return nonEmpty(record.CurriculumName, "Curriculum")
	default:
		return "Student Progress"
	}
}

func fallbackFilterTitle(state models.SelectionState) string {
	switch {
	case state.ChapterID != nil:
		return "Chapter"
	case state.CourseID != nil:
		return "Course"
	case state.CollectionID != nil:
		return "Collection"
	case state.CurriculumID != nil:
		return "Curriculum"
	default:
		return "Student Progress"
	}
}

func nonEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
