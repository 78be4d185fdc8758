package dto

// ProgressViewResponse is the uniform dashboard payload: four raw
// counts, two derived percentages and a title. HasData false signals
// the empty state; the counters are zero-valued in that case.
type ProgressViewResponse struct {
	HasData            bool   `json:"hasData"`
	Title              string `json:"title"`
	TotalLessons       int    `json:"totalLessons"`
	TotalCompleted     int    `json:"totalCompleted"`
	RequiredLessons    int    `json:"requiredLessons"`
	RequiredCompleted  int    `json:"requiredCompleted"`
	TotalPercentage    int    `json:"totalPercentage"`
	RequiredPercentage int    `json:"requiredPercentage"`
}

// SelectionStateResponse echoes the caller's current selection.
type SelectionStateResponse struct {
	SchoolID     *string `json:"schoolId"`
	CohortID     *string `json:"cohortId"`
	StudentID    *string `json:"studentId"`
	CurriculumID *string `json:"curriculumId"`
	CollectionID *string `json:"collectionId"`
	CourseID     *string `json:"courseId"`
	ChapterID    *string `json:"chapterId"`
}

// SelectRequest carries the identifier for a selection mutator. An
// absent or empty id clears the level.
type SelectRequest struct {
	ID *string `json:"id"`
}

// FilterOption is one selectable hierarchy value. Lesson counts are
// attached only while a student is selected.
type FilterOption struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Label            string `json:"label"`
	TotalLessons     *int   `json:"totalLessons,omitempty"`
	CompletedLessons *int   `json:"completedLessons,omitempty"`
}

// FilterOptionsResponse lists the selectable values for each filter
// level under the currently selected coarser levels, plus the students
// available for selection.
type FilterOptionsResponse struct {
	Curricula   []FilterOption  `json:"curricula"`
	Collections []FilterOption  `json:"collections"`
	Courses     []FilterOption  `json:"courses"`
	Chapters    []FilterOption  `json:"chapters"`
	Students    []StudentOption `json:"students"`
}

// StudentOption is one selectable student with summary counts.
type StudentOption struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CohortID          *string `json:"cohortId,omitempty"`
	TotalLessons      int     `json:"totalLessons"`
	CompletedLessons  int     `json:"completedLessons"`
	RequiredLessons   int     `json:"requiredLessons"`
	RequiredCompleted int     `json:"requiredCompleted"`
}
