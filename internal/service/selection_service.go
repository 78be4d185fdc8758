package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-progress-api/internal/models"
	appErrors "github.com/noah-isme/lms-progress-api/pkg/errors"
)

type progressGateway interface {
	SchoolAggregateBundle(ctx context.Context, schoolID string) (*models.AggregateBundle, error)
	StudentLessonRecords(ctx context.Context, studentID string) ([]models.LessonRecord, error)
}

// SelectionSession is the single owner of one user's selection state
// and the data snapshots that hang off it: the aggregate bundle for the
// selected school and the raw lesson records for the selected student.
// All mutation happens under one mutex; fetched snapshots are treated
// as immutable and replaced wholesale.
//
// The two fetching mutators tag each request with an epoch captured at
// issue time. A response whose epoch no longer matches is discarded, so
// a slow fetch for a superseded selection can never overwrite fresher
// state.
type SelectionSession struct {
	gateway progressGateway
	logger  *zap.Logger

	mu            sync.Mutex
	state         models.SelectionState
	bundle        *models.AggregateBundle
	lessonRecords []models.LessonRecord
	bundleEpoch   uint64
	recordsEpoch  uint64
	touchedAt     time.Time
}

// NewSelectionSession constructs an empty session.
func NewSelectionSession(gateway progressGateway, logger *zap.Logger) *SelectionSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionSession{gateway: gateway, logger: logger, touchedAt: time.Now()}
}

// SelectSchool sets the school, clears both cascades below it and
// refetches the aggregate bundle. Clearing the school drops the bundle
// and lesson records without any I/O.
func (s *SelectionSession) SelectSchool(ctx context.Context, id *string) error {
	s.mu.Lock()
	s.touch()
	s.state = withSchool(s.state, id)
	s.lessonRecords = nil
	s.recordsEpoch++
	s.bundleEpoch++
	if s.state.SchoolID == nil {
		s.bundle = nil
		s.mu.Unlock()
		return nil
	}
	epoch := s.bundleEpoch
	schoolID := *s.state.SchoolID
	s.mu.Unlock()

	bundle, err := s.gateway.SchoolAggregateBundle(ctx, schoolID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.bundleEpoch {
		s.logger.Debug("discarding stale bundle response", zap.String("school_id", schoolID))
		return nil
	}
	if err != nil {
		// Prior snapshot is kept so the dashboard does not blank out
		// on a transient failure.
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school aggregates")
	}
	s.bundle = bundle
	return nil
}

// SelectCohort sets or clears the cohort. The student is cleared, the
// curriculum filters persist and no I/O is performed; the available
// students list is derived from the already-held bundle.
func (s *SelectionSession) SelectCohort(id *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if normalizeID(id) != nil && s.state.SchoolID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "select a school before selecting a cohort")
	}
	s.state = withCohort(s.state, id)
	s.lessonRecords = nil
	s.recordsEpoch++
	return nil
}

// SelectStudent sets the student and fetches their raw lesson records,
// or clears both when id is empty.
func (s *SelectionSession) SelectStudent(ctx context.Context, id *string) error {
	s.mu.Lock()
	s.touch()
	if normalizeID(id) != nil && s.state.SchoolID == nil {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "select a school before selecting a student")
	}
	s.state = withStudent(s.state, id)
	s.recordsEpoch++
	if s.state.StudentID == nil {
		s.lessonRecords = nil
		s.mu.Unlock()
		return nil
	}
	epoch := s.recordsEpoch
	studentID := *s.state.StudentID
	s.mu.Unlock()

	records, err := s.gateway.StudentLessonRecords(ctx, studentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.recordsEpoch {
		s.logger.Debug("discarding stale lesson record response", zap.String("student_id", studentID))
		return nil
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student lesson records")
	}
	if records == nil {
		records = []models.LessonRecord{}
	}
	s.lessonRecords = records
	return nil
}

// SelectCurriculum sets the coarsest filter and clears the finer three.
func (s *SelectionSession) SelectCurriculum(id *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state = withCurriculum(s.state, id)
	return nil
}

// SelectCollection sets the collection filter and clears course and
// chapter.
func (s *SelectionSession) SelectCollection(id *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if normalizeID(id) != nil && s.state.CurriculumID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "select a curriculum before selecting a collection")
	}
	s.state = withCollection(s.state, id)
	return nil
}

// SelectCourse sets the course filter and clears the chapter.
func (s *SelectionSession) SelectCourse(id *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if normalizeID(id) != nil && s.state.CollectionID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "select a collection before selecting a course")
	}
	s.state = withCourse(s.state, id)
	return nil
}

// SelectChapter sets the finest filter level.
func (s *SelectionSession) SelectChapter(id *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if normalizeID(id) != nil && s.state.CourseID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "select a course before selecting a chapter")
	}
	s.state = withChapter(s.state, id)
	return nil
}

// State returns a copy of the current selection state.
func (s *SelectionSession) State() models.SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the selection state together with the current bundle
// and lesson record snapshots. Lesson records are nil when no student
// data has been loaded, and non-nil (possibly empty) once a fetch for
// the selected student has succeeded.
func (s *SelectionSession) Snapshot() (models.SelectionState, *models.AggregateBundle, []models.LessonRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.bundle, s.lessonRecords
}

// TouchedAt reports the last interaction time, used for TTL eviction.
func (s *SelectionSession) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func (s *SelectionSession) touch() {
	s.touchedAt = time.Now()
}

func normalizeID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
