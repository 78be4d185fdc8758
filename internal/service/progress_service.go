package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-progress-api/internal/dto"
	"github.com/noah-isme/lms-progress-api/internal/models"
	appErrors "github.com/noah-isme/lms-progress-api/pkg/errors"
)

type progressRepository interface {
	ListSchools(ctx context.Context) ([]models.School, error)
	ListCohorts(ctx context.Context, schoolID string) ([]models.Cohort, error)
	CurriculumHierarchy(ctx context.Context) ([]models.CurriculumNode, error)
	SchoolAggregateBundle(ctx context.Context, schoolID string) (*models.AggregateBundle, error)
	StudentLessonRecords(ctx context.Context, studentID string) ([]models.LessonRecord, error)
}

// ProgressServiceConfig tunes caching and session retention.
type ProgressServiceConfig struct {
	BundleCacheTTL time.Duration
	SessionTTL     time.Duration
}

// ProgressService orchestrates the lesson progress dashboard: it owns
// the per-user selection sessions, serves resolved views and filter
// options, and fronts the gateway with a Redis-backed bundle cache.
type ProgressService struct {
	repo    progressRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ProgressServiceConfig
	now     func() time.Time

	mu        sync.Mutex
	sessions  map[string]*SelectionSession
	hierarchy []models.CurriculumNode
}

// ProgressServiceParams groups constructor dependencies.
type ProgressServiceParams struct {
	Repo    progressRepository
	Cache   *CacheService
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  ProgressServiceConfig
}

// NewProgressService constructs a ProgressService with sane defaults.
func NewProgressService(params ProgressServiceParams) *ProgressService {
	cfg := params.Config
	if cfg.BundleCacheTTL <= 0 {
		cfg.BundleCacheTTL = 5 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		repo:     params.Repo,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*SelectionSession),
	}
}

// Schools lists the schools the caller may select.
func (s *ProgressService) Schools(ctx context.Context, claims *models.JWTClaims) ([]models.School, error) {
	schools, err := s.repo.ListSchools(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
	}
	accessible := make([]models.School, 0, len(schools))
	for _, school := range schools {
		if CanAccessSchool(claims, school.ID) {
			accessible = append(accessible, school)
		}
	}
	return accessible, nil
}

// Cohorts lists the cohorts of one school the caller may access.
func (s *ProgressService) Cohorts(ctx context.Context, claims *models.JWTClaims, schoolID string) ([]models.Cohort, error) {
	if schoolID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schoolId is required")
	}
	if !CanAccessSchool(claims, schoolID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to the requested school")
	}
	cohorts, err := s.repo.ListCohorts(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cohorts")
	}
	return cohorts, nil
}

// Hierarchy returns the denormalized curriculum hierarchy, loaded once
// and held for the process lifetime.
func (s *ProgressService) Hierarchy(ctx context.Context) ([]models.CurriculumNode, error) {
	s.mu.Lock()
	if s.hierarchy != nil {
		nodes := s.hierarchy
		s.mu.Unlock()
		return nodes, nil
	}
	s.mu.Unlock()

	nodes, err := s.repo.CurriculumHierarchy(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curriculum hierarchy")
	}
	if nodes == nil {
		nodes = []models.CurriculumNode{}
	}
	s.mu.Lock()
	s.hierarchy = nodes
	s.mu.Unlock()
	return nodes, nil
}

// SelectSchool applies the school mutator after an access check.
func (s *ProgressService) SelectSchool(ctx context.Context, claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	if normalizeID(id) != nil && !CanAccessSchool(claims, *id) {
		// Refused selections must not mutate session state.
		return s.selectionResponse(claims), appErrors.Clone(appErrors.ErrForbidden, "no access to the requested school")
	}
	session := s.session(claims)
	err := session.SelectSchool(ctx, id)
	return toSelectionResponse(session.State()), err
}

// SelectCohort applies the cohort mutator.
func (s *ProgressService) SelectCohort(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	session := s.session(claims)
	err := session.SelectCohort(id)
	return toSelectionResponse(session.State()), err
}

// SelectStudent applies the student mutator.
func (s *ProgressService) SelectStudent(ctx context.Context, claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	session := s.session(claims)
	err := session.SelectStudent(ctx, id)
	return toSelectionResponse(session.State()), err
}

// SelectCurriculum applies the curriculum filter mutator.
func (s *ProgressService) SelectCurriculum(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	session := s.session(claims)
	err := session.SelectCurriculum(id)
	return toSelectionResponse(session.State()), err
}

// SelectCollection applies the collection filter mutator.
func (s *ProgressService) SelectCollection(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	session := s.session(claims)
	err := session.SelectCollection(id)
	return toSelectionResponse(session.State()), err
}

// SelectCourse applies the course filter mutator.
func (s *ProgressService) SelectCourse(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	session := s.session(claims)
	err := session.SelectCourse(id)
	return toSelectionResponse(session.State()), err
}

// SelectChapter applies the chapter filter mutator.
func (s *ProgressService) SelectChapter(claims *models.JWTClaims, id *string) (dto.SelectionStateResponse, error) {
	session := s.session(claims)
	err := session.SelectChapter(id)
	return toSelectionResponse(session.State()), err
}

// Selection echoes the caller's current selection state.
func (s *ProgressService) Selection(claims *models.JWTClaims) dto.SelectionStateResponse {
	return s.selectionResponse(claims)
}

// View resolves and projects the current aggregate for the caller's
// session. Missing data projects the explicit empty state.
func (s *ProgressService) View(claims *models.JWTClaims) dto.ProgressViewResponse {
	state, bundle, records := s.session(claims).Snapshot()

	var studentMetrics *ProgressMetrics
	if state.StudentID != nil && records != nil {
		metrics := FilteredStudentMetrics(records, state)
		studentMetrics = &metrics
	}

	resolved := ResolveCurrentAggregate(state, studentMetrics, bundle)
	return ProjectProgress(resolved)
}

// FilterOptions derives the selectable values for every filter level
// under the currently selected coarser filters, plus the available
// students. While a student is selected the options carry lesson counts.
func (s *ProgressService) FilterOptions(ctx context.Context, claims *models.JWTClaims) (dto.FilterOptionsResponse, error) {
	nodes, err := s.Hierarchy(ctx)
	if err != nil {
		return dto.FilterOptionsResponse{}, err
	}
	state, bundle, records := s.session(claims).Snapshot()

	var grouping *LessonGrouping
	if state.StudentID != nil && records != nil {
		g := GroupLessonRecords(records)
		grouping = &g
	}

	options := dto.FilterOptionsResponse{
		Curricula:   hierarchyOptions(nodes, state, levelCurriculum, nil),
		Collections: hierarchyOptions(nodes, state, levelCollection, grouping),
		Courses:     hierarchyOptions(nodes, state, levelCourse, grouping),
		Chapters:    hierarchyOptions(nodes, state, levelChapter, grouping),
		Students:    availableStudents(state, bundle),
	}
	return options, nil
}

// ViewSnapshot exposes the caller's selection state together with the
// data it resolves against, for export rendering.
func (s *ProgressService) ViewSnapshot(claims *models.JWTClaims) (models.SelectionState, *models.AggregateBundle, []models.LessonRecord) {
	return s.session(claims).Snapshot()
}

// session returns the caller's selection session, creating it when
// absent and opportunistically evicting expired ones.
func (s *ProgressService) session(claims *models.JWTClaims) *SelectionSession {
	key := "anonymous"
	if claims != nil {
		key = claims.UserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.cfg.SessionTTL)
	for id, session := range s.sessions {
		if id != key && session.TouchedAt().Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	session, ok := s.sessions[key]
	if !ok {
		session = NewSelectionSession(s, s.logger)
		s.sessions[key] = session
	}
	return session
}

func (s *ProgressService) selectionResponse(claims *models.JWTClaims) dto.SelectionStateResponse {
	return toSelectionResponse(s.session(claims).State())
}

// SchoolAggregateBundle satisfies the session gateway with a cached
// read-through over the repository. Cache failures degrade to direct
// fetches rather than failing the selection.
func (s *ProgressService) SchoolAggregateBundle(ctx context.Context, schoolID string) (*models.AggregateBundle, error) {
	cacheKey := fmt.Sprintf("progress:bundle:%s", schoolID)
	if s.cache != nil {
		var cached models.AggregateBundle
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}
	start := time.Now()
	bundle, err := s.repo.SchoolAggregateBundle(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("progress_bundle", time.Since(start))
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, bundle, s.cfg.BundleCacheTTL); err != nil {
			s.logger.Warn("bundle cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return bundle, nil
}

// StudentLessonRecords satisfies the session gateway. Raw per-student
// rows are fetched fresh on every student selection.
func (s *ProgressService) StudentLessonRecords(ctx context.Context, studentID string) ([]models.LessonRecord, error) {
	start := time.Now()
	records, err := s.repo.StudentLessonRecords(ctx, studentID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("student_lesson_records", time.Since(start))
	return records, nil
}

// CanAccessSchool reports whether the caller may view the school.
// Admins reach every school, staff only their own.
func CanAccessSchool(claims *models.JWTClaims, schoolID string) bool {
	if claims == nil {
		return false
	}
	switch claims.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		return true
	case models.RoleStaff:
		return claims.SchoolID == schoolID
	default:
		return false
	}
}

type hierarchyLevel int

const (
	levelCurriculum hierarchyLevel = iota
	levelCollection
	levelCourse
	levelChapter
)

// hierarchyOptions deduplicates one hierarchy level's values within the
// rows matching the selected coarser filters.
func hierarchyOptions(nodes []models.CurriculumNode, state models.SelectionState, level hierarchyLevel, grouping *LessonGrouping) []dto.FilterOption {
	seen := make(map[string]struct{})
	options := make([]dto.FilterOption, 0)
	for _, node := range nodes {
		if !matchesCoarser(node, state, level) {
			continue
		}
		id, name := levelValue(node, level)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		options = append(options, buildOption(id, name, level, grouping))
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Name < options[j].Name })
	return options
}

func matchesCoarser(node models.CurriculumNode, state models.SelectionState, level hierarchyLevel) bool {
	if level > levelCurriculum && state.CurriculumID != nil && node.CurriculumID != *state.CurriculumID {
		return false
	}
	if level > levelCollection && state.CollectionID != nil && node.CollectionID != *state.CollectionID {
		return false
	}
	if level > levelCourse && state.CourseID != nil && node.CourseID != *state.CourseID {
		return false
	}
	return true
}

func levelValue(node models.CurriculumNode, level hierarchyLevel) (string, string) {
	switch level {
	case levelCurriculum:
		return node.CurriculumID, node.CurriculumName
	case levelCollection:
		return node.CollectionID, node.CollectionName
	case levelCourse:
		return node.CourseID, node.CourseName
	default:
		return node.ChapterID, node.ChapterName
	}
}

func buildOption(id, name string, level hierarchyLevel, grouping *LessonGrouping) dto.FilterOption {
	option := dto.FilterOption{ID: id, Name: name, Label: name}
	if grouping == nil {
		return option
	}
	var tally LevelTally
	switch level {
	case levelCollection:
		tally = grouping.ByCollection[id]
	case levelCourse:
		tally = grouping.ByCourse[id]
	case levelChapter:
		tally = grouping.ByChapter[id]
	default:
		return option
	}
	total := tally.TotalLessons
	completed := tally.CompletedLessons
	option.TotalLessons = &total
	option.CompletedLessons = &completed
	option.Label = fmt.Sprintf("%s (%d)", name, total)
	return option
}

// availableStudents narrows the student list to the selected cohort
// using the cohort-scoped rows, or falls back to the school-wide rows.
func availableStudents(state models.SelectionState, bundle *models.AggregateBundle) []dto.StudentOption {
	if bundle == nil {
		return []dto.StudentOption{}
	}
	if state.CohortID != nil && len(bundle.CohortStudents) > 0 {
		options := make([]dto.StudentOption, 0)
		for _, row := range bundle.CohortStudents {
			if row.CohortID != *state.CohortID {
				continue
			}
			cohortID := row.CohortID
			options = append(options, dto.StudentOption{
				ID:                row.StudentID,
				Name:              row.StudentName,
				CohortID:          &cohortID,
				TotalLessons:      row.TotalLessonsExpected,
				CompletedLessons:  row.TotalLessonsCompleted,
				RequiredLessons:   row.RequiredLessonsExpected,
				RequiredCompleted: row.RequiredLessonsCompleted,
			})
		}
		return options
	}
	options := make([]dto.StudentOption, 0, len(bundle.Students))
	for _, row := range bundle.Students {
		options = append(options, dto.StudentOption{
			ID:                row.StudentID,
			Name:              row.StudentName,
			CohortID:          row.CohortID,
			TotalLessons:      row.TotalLessonsExpected,
			CompletedLessons:  row.TotalLessonsCompleted,
			RequiredLessons:   row.RequiredLessonsExpected,
			RequiredCompleted: row.RequiredLessonsCompleted,
		})
	}
	return options
}

func toSelectionResponse(state models.SelectionState) dto.SelectionStateResponse {
	return dto.SelectionStateResponse{
		SchoolID:     state.SchoolID,
		CohortID:     state.CohortID,
		StudentID:    state.StudentID,
		CurriculumID: state.CurriculumID,
		CollectionID: state.CollectionID,
		CourseID:     state.CourseID,
		ChapterID:    state.ChapterID,
	}
}
