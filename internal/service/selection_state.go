package service

import (
	"github.com/noah-isme/lms-progress-api/internal/models"
)

// The selection state forms two independent cascades. Every transition
// below is pure: it takes the prior state and returns the next one,
// clearing all identifiers strictly finer than the level being set so
// the state can never hold an orphaned descendant.

func withSchool(s models.SelectionState, id *string) models.SelectionState {
	s.SchoolID = copyID(id)
	s.CohortID = nil
	s.StudentID = nil
	s.CurriculumID = nil
	s.CollectionID = nil
	s.CourseID = nil
	s.ChapterID = nil
	return s
}

func withCohort(s models.SelectionState, id *string) models.SelectionState {
	if s.SchoolID == nil {
		id = nil
	}
	s.CohortID = copyID(id)
	s.StudentID = nil
	return s
}

func withStudent(s models.SelectionState, id *string) models.SelectionState {
	if s.SchoolID == nil {
		id = nil
	}
	s.StudentID = copyID(id)
	return s
}

func withCurriculum(s models.SelectionState, id *string) models.SelectionState {
	s.CurriculumID = copyID(id)
	s.CollectionID = nil
	s.CourseID = nil
	s.ChapterID = nil
	return s
}

func withCollection(s models.SelectionState, id *string) models.SelectionState {
	if s.CurriculumID == nil {
		id = nil
	}
	s.CollectionID = copyID(id)
	s.CourseID = nil
	s.ChapterID = nil
	return s
}

func withCourse(s models.SelectionState, id *string) models.SelectionState {
	if s.CollectionID == nil {
		id = nil
	}
	s.CourseID = copyID(id)
	s.ChapterID = nil
	return s
}

func withChapter(s models.SelectionState, id *string) models.SelectionState {
	if s.CourseID == nil {
		id = nil
	}
	s.ChapterID = copyID(id)
	return s
}

func copyID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}
