package models

import "time"

// School is the root of the selection hierarchy, one per tenant.
type School struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Cohort is a named sub-group of students within a school.
type Cohort struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	SchoolID string `db:"school_id" json:"school_id"`
}

// CurriculumNode is a denormalized curriculum hierarchy row. The full
// hierarchy is the set of all such rows; distinct values per level are
// derived by deduplicating on that level's id.
type CurriculumNode struct {
	CurriculumID   string `db:"curriculum_id" json:"curriculum_id"`
	CurriculumName string `db:"curriculum_name" json:"curriculum_name"`
	CollectionID   string `db:"collection_id" json:"collection_id"`
	CollectionName string `db:"collection_name" json:"collection_name"`
	CourseID       string `db:"course_id" json:"course_id"`
	CourseName     string `db:"course_name" json:"course_name"`
	ChapterID      string `db:"chapter_id" json:"chapter_id"`
	ChapterName    string `db:"chapter_name" json:"chapter_name"`
}

// LessonCounts carries the completion metric fields shared by every
// aggregate row shape. Engagement/in-progress/not-started counts are
// present in the summary tables but not consumed by the resolver.
type LessonCounts struct {
	TotalLessonsExpected     int `db:"total_lessons_expected" json:"total_lessons_expected"`
	TotalLessonsCompleted    int `db:"total_lessons_completed" json:"total_lessons_completed"`
	RequiredLessonsExpected  int `db:"required_lessons_expected" json:"required_lessons_expected"`
	RequiredLessonsCompleted int `db:"required_lessons_completed" json:"required_lessons_completed"`
	LessonsEngaged           int `db:"lessons_engaged" json:"lessons_engaged"`
	LessonsInProgress        int `db:"lessons_in_progress" json:"lessons_in_progress"`
	LessonsNotStarted        int `db:"lessons_not_started" json:"lessons_not_started"`
}

// SchoolAggregate is the single school-wide summary row.
type SchoolAggregate struct {
	SchoolID   string `db:"school_id" json:"school_id"`
	SchoolName string `db:"school_name" json:"school_name"`
	LessonCounts
}

// CurriculumAggregate summarises one curriculum across a school.
type CurriculumAggregate struct {
	SchoolID       string `db:"school_id" json:"school_id"`
	CurriculumID   string `db:"curriculum_id" json:"curriculum_id"`
	CurriculumName string `db:"curriculum_name" json:"curriculum_name"`
	LessonCounts
}

// CollectionAggregate summarises one collection across a school.
type CollectionAggregate struct {
	SchoolID       string `db:"school_id" json:"school_id"`
	CollectionID   string `db:"collection_id" json:"collection_id"`
	CollectionName string `db:"collection_name" json:"collection_name"`
	LessonCounts
}

// CourseAggregate summarises one course across a school.
type CourseAggregate struct {
	SchoolID   string `db:"school_id" json:"school_id"`
	CourseID   string `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
	LessonCounts
}

// ChapterAggregate summarises one chapter across a school.
type ChapterAggregate struct {
	SchoolID    string `db:"school_id" json:"school_id"`
	ChapterID   string `db:"chapter_id" json:"chapter_id"`
	ChapterName string `db:"chapter_name" json:"chapter_name"`
	LessonCounts
}

// StudentAggregate summarises one student's progress school-wide. The
// cohort id is carried so the available-students list can be narrowed
// without a refetch when a cohort is selected.
type StudentAggregate struct {
	SchoolID    string  `db:"school_id" json:"school_id"`
	StudentID   string  `db:"student_id" json:"student_id"`
	StudentName string  `db:"student_name" json:"student_name"`
	CohortID    *string `db:"cohort_id" json:"cohort_id,omitempty"`
	LessonCounts
}

// CohortAggregate summarises one cohort within a school.
type CohortAggregate struct {
	SchoolID   string `db:"school_id" json:"school_id"`
	CohortID   string `db:"cohort_id" json:"cohort_id"`
	CohortName string `db:"cohort_name" json:"cohort_name"`
	LessonCounts
}

// CohortCurriculumAggregate is the cohort-scoped curriculum summary.
type CohortCurriculumAggregate struct {
	CohortID       string `db:"cohort_id" json:"cohort_id"`
	CurriculumID   string `db:"curriculum_id" json:"curriculum_id"`
	CurriculumName string `db:"curriculum_name" json:"curriculum_name"`
	LessonCounts
}

// CohortCollectionAggregate is the cohort-scoped collection summary.
type CohortCollectionAggregate struct {
	CohortID       string `db:"cohort_id" json:"cohort_id"`
	CollectionID   string `db:"collection_id" json:"collection_id"`
	CollectionName string `db:"collection_name" json:"collection_name"`
	LessonCounts
}

// CohortCourseAggregate is the cohort-scoped course summary.
type CohortCourseAggregate struct {
	CohortID   string `db:"cohort_id" json:"cohort_id"`
	CourseID   string `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
	LessonCounts
}

// CohortChapterAggregate is the cohort-scoped chapter summary.
type CohortChapterAggregate struct {
	CohortID    string `db:"cohort_id" json:"cohort_id"`
	ChapterID   string `db:"chapter_id" json:"chapter_id"`
	ChapterName string `db:"chapter_name" json:"chapter_name"`
	LessonCounts
}

// CohortStudentAggregate summarises one student within one cohort.
type CohortStudentAggregate struct {
	CohortID    string `db:"cohort_id" json:"cohort_id"`
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	LessonCounts
}

// AggregateBundle is the immutable snapshot returned by one batched
// bundle fetch: six school-scoped tables, six cohort-scoped tables and
// the school-wide per-student rows. A new bundle replaces the prior one
// wholesale; rows are never mutated in place.
type AggregateBundle struct {
	SchoolID string `json:"school_id"`

	School      *SchoolAggregate      `json:"school,omitempty"`
	Curricula   []CurriculumAggregate `json:"curricula"`
	Collections []CollectionAggregate `json:"collections"`
	Courses     []CourseAggregate     `json:"courses"`
	Chapters    []ChapterAggregate    `json:"chapters"`
	Students    []StudentAggregate    `json:"students"`

	Cohorts           []CohortAggregate           `json:"cohorts"`
	CohortCurricula   []CohortCurriculumAggregate `json:"cohort_curricula"`
	CohortCollections []CohortCollectionAggregate `json:"cohort_collections"`
	CohortCourses     []CohortCourseAggregate     `json:"cohort_courses"`
	CohortChapters    []CohortChapterAggregate    `json:"cohort_chapters"`
	CohortStudents    []CohortStudentAggregate    `json:"cohort_students"`

	FetchedAt time.Time `json:"fetched_at"`
}

// LessonRecord is one raw per-lesson row for a single student.
type LessonRecord struct {
	LessonID       string     `db:"lesson_id" json:"lesson_id"`
	LessonName     string     `db:"lesson_name" json:"lesson_name"`
	ChapterID      string     `db:"chapter_id" json:"chapter_id"`
	ChapterName    string     `db:"chapter_name" json:"chapter_name"`
	CourseID       string     `db:"course_id" json:"course_id"`
	CourseName     string     `db:"course_name" json:"course_name"`
	CollectionID   string     `db:"collection_id" json:"collection_id"`
	CollectionName string     `db:"collection_name" json:"collection_name"`
	CurriculumID   string     `db:"curriculum_id" json:"curriculum_id"`
	CurriculumName string     `db:"curriculum_name" json:"curriculum_name"`
	IsRequired     bool       `db:"is_required" json:"is_required"`
	CompletionDate *time.Time `db:"completion_date" json:"completion_date,omitempty"`
	EngagementDate *time.Time `db:"engagement_date" json:"engagement_date,omitempty"`
}

// Completed reports whether the lesson has a completion date.
func (r LessonRecord) Completed() bool {
	return r.CompletionDate != nil
}

// InProgress reports an engaged but uncompleted lesson.
func (r LessonRecord) InProgress() bool {
	return r.EngagementDate != nil && r.CompletionDate == nil
}

// SelectionState holds the two independent selection cascades: the
// entity cascade (school -> cohort -> student) and the curriculum
// filter cascade (curriculum -> collection -> course -> chapter). A nil
// pointer means "not selected".
type SelectionState struct {
	SchoolID     *string `json:"school_id,omitempty"`
	CohortID     *string `json:"cohort_id,omitempty"`
	StudentID    *string `json:"student_id,omitempty"`
	CurriculumID *string `json:"curriculum_id,omitempty"`
	CollectionID *string `json:"collection_id,omitempty"`
	CourseID     *string `json:"course_id,omitempty"`
	ChapterID    *string `json:"chapter_id,omitempty"`
}
