package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-progress-api/internal/models"
)

func strPtr(s string) *string { return &s }

func fullSelection() models.SelectionState {
	return models.SelectionState{
		SchoolID:     strPtr("school-1"),
		CohortID:     strPtr("cohort-1"),
		StudentID:    strPtr("student-1"),
		CurriculumID: strPtr("curriculum-1"),
		CollectionID: strPtr("collection-1"),
		CourseID:     strPtr("course-1"),
		ChapterID:    strPtr("chapter-1"),
	}
}

func TestWithSchoolClearsEverythingBelow(t *testing.T) {
	next := withSchool(fullSelection(), strPtr("school-2"))

	require.NotNil(t, next.SchoolID)
	assert.Equal(t, "school-2", *next.SchoolID)
	assert.Nil(t, next.CohortID)
	assert.Nil(t, next.StudentID)
	assert.Nil(t, next.CurriculumID)
	assert.Nil(t, next.CollectionID)
	assert.Nil(t, next.CourseID)
	assert.Nil(t, next.ChapterID)
}

func TestWithSchoolClearToEmpty(t *testing.T) {
	next := withSchool(fullSelection(), nil)
	assert.Equal(t, models.SelectionState{}, next)

	next = withSchool(fullSelection(), strPtr(""))
	assert.Equal(t, models.SelectionState{}, next)
}

func TestWithCohortClearsStudentKeepsFilters(t *testing.T) {
	next := withCohort(fullSelection(), strPtr("cohort-2"))

	require.NotNil(t, next.CohortID)
	assert.Equal(t, "cohort-2", *next.CohortID)
	assert.Nil(t, next.StudentID)
	// The curriculum cascade is independent of the entity cascade.
	assert.Equal(t, "curriculum-1", *next.CurriculumID)
	assert.Equal(t, "collection-1", *next.CollectionID)
	assert.Equal(t, "course-1", *next.CourseID)
	assert.Equal(t, "chapter-1", *next.ChapterID)
}

func TestWithCohortWithoutSchoolCoercesNil(t *testing.T) {
	next := withCohort(models.SelectionState{}, strPtr("cohort-1"))
	assert.Nil(t, next.CohortID)
}

func TestWithStudentKeepsCohortAndFilters(t *testing.T) {
	state := fullSelection()
	state.StudentID = nil

	next := withStudent(state, strPtr("student-9"))
	require.NotNil(t, next.StudentID)
	assert.Equal(t, "student-9", *next.StudentID)
	assert.Equal(t, "cohort-1", *next.CohortID)
	assert.Equal(t, "chapter-1", *next.ChapterID)
}

func TestWithCurriculumClearsFinerFilters(t *testing.T) {
	next := withCurriculum(fullSelection(), strPtr("curriculum-2"))

	assert.Equal(t, "curriculum-2", *next.CurriculumID)
	assert.Nil(t, next.CollectionID)
	assert.Nil(t, next.CourseID)
	assert.Nil(t, next.ChapterID)
	// Entity cascade untouched.
	assert.Equal(t, "student-1", *next.StudentID)
}

func TestWithCollectionClearsCourseAndChapter(t *testing.T) {
	next := withCollection(fullSelection(), strPtr("collection-2"))

	assert.Equal(t, "collection-2", *next.CollectionID)
	assert.Nil(t, next.CourseID)
	assert.Nil(t, next.ChapterID)
	assert.Equal(t, "curriculum-1", *next.CurriculumID)
}

func TestWithCourseClearsChapter(t *testing.T) {
	next := withCourse(fullSelection(), strPtr("course-2"))

	assert.Equal(t, "course-2", *next.CourseID)
	assert.Nil(t, next.ChapterID)
}

func TestParentCoercion(t *testing.T) {
	// Without the parent level set, a child selection coerces to nil.
	assert.Nil(t, withCollection(models.SelectionState{}, strPtr("c")).CollectionID)
	assert.Nil(t, withCourse(models.SelectionState{}, strPtr("c")).CourseID)
	assert.Nil(t, withChapter(models.SelectionState{}, strPtr("c")).ChapterID)
	assert.Nil(t, withStudent(models.SelectionState{}, strPtr("s")).StudentID)
}

// No transition may ever leave a finer level set while a coarser level
// of the same cascade is nil.
func TestCascadeInvariantHoldsAcrossTransitions(t *testing.T) {
	states := []models.SelectionState{
		withSchool(fullSelection(), nil),
		withSchool(fullSelection(), strPtr("s2")),
		withCohort(fullSelection(), nil),
		withCurriculum(fullSelection(), nil),
		withCollection(fullSelection(), nil),
		withCourse(fullSelection(), nil),
		withChapter(fullSelection(), nil),
	}
	for _, s := range states {
		assertCascadeInvariant(t, s)
	}
}

func assertCascadeInvariant(t *testing.T, s models.SelectionState) {
	t.Helper()
	if s.SchoolID == nil {
		assert.Nil(t, s.CohortID)
		assert.Nil(t, s.StudentID)
	}
	if s.CurriculumID == nil {
		assert.Nil(t, s.CollectionID)
	}
	if s.CollectionID == nil {
		assert.Nil(t, s.CourseID)
	}
	if s.CourseID == nil {
		assert.Nil(t, s.ChapterID)
	}
}

func TestCopyIDDetachesPointer(t *testing.T) {
	original := "value"
	copied := copyID(&original)
	require.NotNil(t, copied)
	original = "mutated"
	assert.Equal(t, "value", *copied)
}
