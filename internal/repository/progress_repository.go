package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-progress-api/internal/models"
)

// ProgressRepository exposes read-only queries over the pre-aggregated
// lesson progress summary tables. The summary tables are maintained by
// out-of-band refresh jobs; this layer only ever reads snapshots.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const lessonCountColumns = "total_lessons_expected, total_lessons_completed, required_lessons_expected, required_lessons_completed, lessons_engaged, lessons_in_progress, lessons_not_started"

// ListSchools returns all schools ordered by name.
func (r *ProgressRepository) ListSchools(ctx context.Context) ([]models.School, error) {
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, "SELECT id, name FROM schools ORDER BY name ASC"); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// ListCohorts returns the cohorts belonging to one school.
func (r *ProgressRepository) ListCohorts(ctx context.Context, schoolID string) ([]models.Cohort, error) {
	var cohorts []models.Cohort
	query := "SELECT id, name, school_id FROM cohorts WHERE school_id = $1 ORDER BY name ASC"
	if err := r.db.SelectContext(ctx, &cohorts, query, schoolID); err != nil {
		return nil, fmt.Errorf("list cohorts: %w", err)
	}
	return cohorts, nil
}

// CurriculumHierarchy returns every denormalized hierarchy row. The
// hierarchy is global and independent of school selection.
func (r *ProgressRepository) CurriculumHierarchy(ctx context.Context) ([]models.CurriculumNode, error) {
	query := `SELECT curriculum_id, curriculum_name, collection_id, collection_name,
        course_id, course_name, chapter_id, chapter_name
        FROM curriculum_hierarchy_v
        ORDER BY curriculum_name, collection_name, course_name, chapter_name`
	var nodes []models.CurriculumNode
	if err := r.db.SelectContext(ctx, &nodes, query); err != nil {
		return nil, fmt.Errorf("query curriculum hierarchy: %w", err)
	}
	return nodes, nil
}

// SchoolAggregateBundle fetches every school-scoped and cohort-scoped
// summary table for one school in a single batched call. The returned
// bundle is a complete snapshot; callers replace prior bundles
// wholesale rather than merging.
func (r *ProgressRepository) SchoolAggregateBundle(ctx context.Context, schoolID string) (*models.AggregateBundle, error) {
	bundle := &models.AggregateBundle{SchoolID: schoolID, FetchedAt: time.Now().UTC()}

	var schoolRows []models.SchoolAggregate
	query := fmt.Sprintf("SELECT school_id, school_name, %s FROM school_progress_mv WHERE school_id = $1", lessonCountColumns)
	if err := r.db.SelectContext(ctx, &schoolRows, query, schoolID); err != nil {
		return nil, fmt.Errorf("query school progress mv: %w", err)
	}
	if len(schoolRows) > 0 {
		bundle.School = &schoolRows[0]
	}

	query = fmt.Sprintf("SELECT school_id, curriculum_id, curriculum_name, %s FROM curriculum_progress_mv WHERE school_id = $1", lessonCountColumns)
	if err := r.db.SelectContext(ctx, &bundle.Curricula, query, schoolID); err != nil {
		return nil, fmt.Errorf("query curriculum progress mv: %w", err)
	}

	query = fmt.Sprintf("SELECT school_id, collection_id, collection_name, %s FROM collection_progress_mv WHERE school_id = $1", lessonCountColumns)
	if err := r.db.SelectContext(ctx, &bundle.Collections, query, schoolID); err != nil {
		return nil, fmt.Errorf("query collection progress mv: %w", err)
	}

	query = fmt.Sprintf("SELECT school_id, course_id, course_name, %s FROM course_progress_mv WHERE school_id = $1", lessonCountColumns)
	if err := r.db.SelectContext(ctx, &bundle.Courses, query, schoolID); err != nil {
		return nil, fmt.Errorf("query course progress mv: %w", err)
	}

	query = fmt.Sprintf("SELECT school_id, chapter_id, chapter_name, %s FROM chapter_progress_mv WHERE school_id = $1", lessonCountColumns)
	if err := r.db.SelectContext(ctx, &bundle.Chapters, query, schoolID); err != nil {
		return nil, fmt.Errorf("query chapter progress mv: %w", err)
	}

	query = fmt.Sprintf("SELECT school_id, student_id, student_name, cohort_id, %s FROM student_progress_mv WHERE school_id = $1 ORDER BY student_name ASC", lessonCountColumns)
	if err := r.db.SelectContext(ctx, &bundle.Students, query, schoolID); err != nil {
		return nil, fmt.Errorf("query student progress mv: %w", err)
	}

	query = fmt.Sprintf("SELECT school_id, cohort_id, cohort_name, %s FROM cohort_progress_mv WHERE school_id = $1", lessonCountColumns)
	if err := r.db.SelectContext(ctx, &bundle.Cohorts, query, schoolID); err != nil {
		return nil, fmt.Errorf("query cohort progress mv: %w", err)
	}

	query = fmt.Sprintf(`SELECT c.cohort_id, c.curriculum_id, c.curriculum_name, %s
        FROM cohort_curriculum_progress_mv c
        JOIN cohorts ch ON ch.id = c.cohort_id WHERE ch.school_id = $1`, prefixedCountColumns("c"))
	if err := r.db.SelectContext(ctx, &bundle.CohortCurricula, query, schoolID); err != nil {
		return nil, fmt.Errorf("query cohort curriculum progress mv: %w", err)
	}

	query = fmt.Sprintf(`SELECT c.cohort_id, c.collection_id, c.collection_name, %s
        FROM cohort_collection_progress_mv c
        JOIN cohorts ch ON ch.id = c.cohort_id WHERE ch.school_id = $1`, prefixedCountColumns("c"))
	if err := r.db.SelectContext(ctx, &bundle.CohortCollections, query, schoolID); err != nil {
		return nil, fmt.Errorf("query cohort collection progress mv: %w", err)
	}

	query = fmt.Sprintf(`SELECT c.cohort_id, c.course_id, c.course_name, %s
        FROM cohort_course_progress_mv c
        JOIN cohorts ch ON ch.id = c.cohort_id WHERE ch.school_id = $1`, prefixedCountColumns("c"))
	if err := r.db.SelectContext(ctx, &bundle.CohortCourses, query, schoolID); err != nil {
		return nil, fmt.Errorf("query cohort course progress mv: %w", err)
	}

	query = fmt.Sprintf(`SELECT c.cohort_id, c.chapter_id, c.chapter_name, %s
        FROM cohort_chapter_progress_mv c
        JOIN cohorts ch ON ch.id = c.cohort_id WHERE ch.school_id = $1`, prefixedCountColumns("c"))
	if err := r.db.SelectContext(ctx, &bundle.CohortChapters, query, schoolID); err != nil {
		return nil, fmt.Errorf("query cohort chapter progress mv: %w", err)
	}

	query = fmt.Sprintf(`SELECT c.cohort_id, c.student_id, c.student_name, %s
        FROM cohort_student_progress_mv c
        JOIN cohorts ch ON ch.id = c.cohort_id WHERE ch.school_id = $1 ORDER BY c.student_name ASC`, prefixedCountColumns("c"))
	if err := r.db.SelectContext(ctx, &bundle.CohortStudents, query, schoolID); err != nil {
		return nil, fmt.Errorf("query cohort student progress mv: %w", err)
	}

	return bundle, nil
}

// StudentLessonRecords fetches the raw per-lesson rows for one student.
func (r *ProgressRepository) StudentLessonRecords(ctx context.Context, studentID string) ([]models.LessonRecord, error) {
	query := `SELECT lesson_id, lesson_name, chapter_id, chapter_name, course_id, course_name,
        collection_id, collection_name, curriculum_id, curriculum_name,
        is_required, completion_date, engagement_date
        FROM student_lesson_records_v
        WHERE student_id = $1
        ORDER BY curriculum_name, collection_name, course_name, chapter_name, lesson_name`
	var records []models.LessonRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("query student lesson records: %w", err)
	}
	return records, nil
}

func prefixedCountColumns(alias string) string {
	return fmt.Sprintf("%[1]s.total_lessons_expected, %[1]s.total_lessons_completed, %[1]s.required_lessons_expected, %[1]s.required_lessons_completed, %[1]s.lessons_engaged, %[1]s.lessons_in_progress, %[1]s.lessons_not_started", alias)
}
