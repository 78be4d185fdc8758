package repository

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgressMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var countCols = []string{"total_lessons_expected", "total_lessons_completed", "required_lessons_expected", "required_lessons_completed", "lessons_engaged", "lessons_in_progress", "lessons_not_started"}

func countVals() []driver.Value { return []driver.Value{100, 40, 60, 30, 50, 10, 50} }

func TestProgressRepositoryListSchools(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectQuery("SELECT id, name FROM schools ORDER BY name ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("school-1", "Northside").
			AddRow("school-2", "Southside"))

	schools, err := repo.ListSchools(context.Background())
	require.NoError(t, err)
	require.Len(t, schools, 2)
	assert.Equal(t, "Northside", schools[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryListCohorts(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectQuery("SELECT id, name, school_id FROM cohorts WHERE school_id = \\$1 ORDER BY name ASC").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "school_id"}).
			AddRow("cohort-1", "Class of 2027", "school-1"))

	cohorts, err := repo.ListCohorts(context.Background(), "school-1")
	require.NoError(t, err)
	require.Len(t, cohorts, 1)
	assert.Equal(t, "Class of 2027", cohorts[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryCurriculumHierarchy(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectQuery("FROM curriculum_hierarchy_v").
		WillReturnRows(sqlmock.NewRows([]string{"curriculum_id", "curriculum_name", "collection_id", "collection_name", "course_id", "course_name", "chapter_id", "chapter_name"}).
			AddRow("cu-1", "Medicine", "cl-1", "Core Clinical", "co-1", "Emergency Medicine", "ch-1", "Airway Basics"))

	nodes, err := repo.CurriculumHierarchy(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Emergency Medicine", nodes[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositorySchoolAggregateBundle(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectQuery("FROM school_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"school_id", "school_name"}, countCols...)).
			AddRow(append([]driver.Value{"school-1", "Northside"}, countVals()...)...))
	mock.ExpectQuery("FROM curriculum_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"school_id", "curriculum_id", "curriculum_name"}, countCols...)).
			AddRow(append([]driver.Value{"school-1", "cu-1", "Medicine"}, countVals()...)...))
	mock.ExpectQuery("FROM collection_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"school_id", "collection_id", "collection_name"}, countCols...)))
	mock.ExpectQuery("FROM course_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"school_id", "course_id", "course_name"}, countCols...)))
	mock.ExpectQuery("FROM chapter_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"school_id", "chapter_id", "chapter_name"}, countCols...)))
	mock.ExpectQuery("FROM student_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"school_id", "student_id", "student_name", "cohort_id"}, countCols...)).
			AddRow(append([]driver.Value{"school-1", "st-1", "Ana", "cohort-1"}, countVals()...)...))
	mock.ExpectQuery("FROM cohort_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"school_id", "cohort_id", "cohort_name"}, countCols...)))
	mock.ExpectQuery("FROM cohort_curriculum_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"cohort_id", "curriculum_id", "curriculum_name"}, countCols...)))
	mock.ExpectQuery("FROM cohort_collection_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"cohort_id", "collection_id", "collection_name"}, countCols...)))
	mock.ExpectQuery("FROM cohort_course_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"cohort_id", "course_id", "course_name"}, countCols...)))
	mock.ExpectQuery("FROM cohort_chapter_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"cohort_id", "chapter_id", "chapter_name"}, countCols...)))
	mock.ExpectQuery("FROM cohort_student_progress_mv").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(append([]string{"cohort_id", "student_id", "student_name"}, countCols...)))

	bundle, err := repo.SchoolAggregateBundle(context.Background(), "school-1")
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, "school-1", bundle.SchoolID)
	require.NotNil(t, bundle.School)
	assert.Equal(t, "Northside", bundle.School.SchoolName)
	assert.Equal(t, 100, bundle.School.TotalLessonsExpected)
	require.Len(t, bundle.Curricula, 1)
	require.Len(t, bundle.Students, 1)
	require.NotNil(t, bundle.Students[0].CohortID)
	assert.Empty(t, bundle.CohortCourses)
	assert.False(t, bundle.FetchedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryStudentLessonRecords(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	completed := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM student_lesson_records_v").
		WithArgs("st-1").
		WillReturnRows(sqlmock.NewRows([]string{"lesson_id", "lesson_name", "chapter_id", "chapter_name", "course_id", "course_name", "collection_id", "collection_name", "curriculum_id", "curriculum_name", "is_required", "completion_date", "engagement_date"}).
			AddRow("l1", "Intubation", "ch-1", "Airway Basics", "co-1", "Emergency Medicine", "cl-1", "Core Clinical", "cu-1", "Medicine", true, completed, completed).
			AddRow("l2", "Cricothyrotomy", "ch-1", "Airway Basics", "co-1", "Emergency Medicine", "cl-1", "Core Clinical", "cu-1", "Medicine", false, nil, nil))

	records, err := repo.StudentLessonRecords(context.Background(), "st-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Completed())
	assert.False(t, records[1].Completed())
	assert.False(t, records[1].InProgress())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryBundleQueryError(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectQuery("FROM school_progress_mv").
		WithArgs("school-1").
		WillReturnError(assert.AnError)

	_, err := repo.SchoolAggregateBundle(context.Background(), "school-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "school progress mv")
	assert.NoError(t, mock.ExpectationsWereMet())
}
