package service

import (
	"github.com/noah-isme/lms-progress-api/internal/models"
)

// ResolveCurrentAggregate decides which single aggregate row (or the
// pre-computed student metrics) represents the current view. It is a
// pure function of the selection state, the filtered student metrics
// (nil when no student is selected) and the latest bundle snapshot.
//
// Precedence, first match wins:
//  1. student metrics verbatim
//  2. most specific curriculum filter level, cohort-scoped when a
//     cohort is selected and that level's cohort table is non-empty
//  3. cohort row, else the school-wide row
//
// A missing row resolves to nil, an explicit "no data" result the
// display layer renders as an empty state. Resolution never errors.
func ResolveCurrentAggregate(state models.SelectionState, student *ProgressMetrics, bundle *models.AggregateBundle) *ProgressMetrics {
	if state.StudentID != nil && student != nil {
		metrics := *student
		return &metrics
	}
	if bundle == nil {
		return nil
	}

	cohortID := ""
	if state.CohortID != nil {
		cohortID = *state.CohortID
	}

	switch {
	case state.ChapterID != nil:
		if cohortID != "" && len(bundle.CohortChapters) > 0 {
			for _, row := range bundle.CohortChapters {
				if row.CohortID == cohortID && row.ChapterID == *state.ChapterID {
					return fromCounts(row.LessonCounts, "Chapter: "+row.ChapterName)
				}
			}
			return nil
		}
		for _, row := range bundle.Chapters {
			if row.ChapterID == *state.ChapterID {
				return fromCounts(row.LessonCounts, "Chapter: "+row.ChapterName)
			}
		}
		return nil

	case state.CourseID != nil:
		if cohortID != "" && len(bundle.CohortCourses) > 0 {
			for _, row := range bundle.CohortCourses {
				if row.CohortID == cohortID && row.CourseID == *state.CourseID {
					return fromCounts(row.LessonCounts, "Course: "+row.CourseName)
				}
			}
			return nil
		}
		for _, row := range bundle.Courses {
			if row.CourseID == *state.CourseID {
				return fromCounts(row.LessonCounts, "Course: "+row.CourseName)
			}
		}
		return nil

	case state.CollectionID != nil:
		if cohortID != "" && len(bundle.CohortCollections) > 0 {
			for _, row := range bundle.CohortCollections {
				if row.CohortID == cohortID && row.CollectionID == *state.CollectionID {
					return fromCounts(row.LessonCounts, "Collection: "+row.CollectionName)
				}
			}
			return nil
		}
		for _, row := range bundle.Collections {
			if row.CollectionID == *state.CollectionID {
				return fromCounts(row.LessonCounts, "Collection: "+row.CollectionName)
			}
		}
		return nil

	case state.CurriculumID != nil:
		if cohortID != "" && len(bundle.CohortCurricula) > 0 {
			for _, row := range bundle.CohortCurricula {
				if row.CohortID == cohortID && row.CurriculumID == *state.CurriculumID {
					return fromCounts(row.LessonCounts, "Curriculum: "+row.CurriculumName)
				}
			}
			return nil
		}
		for _, row := range bundle.Curricula {
			if row.CurriculumID == *state.CurriculumID {
				return fromCounts(row.LessonCounts, "Curriculum: "+row.CurriculumName)
			}
		}
		return nil
	}

	if cohortID != "" && len(bundle.Cohorts) > 0 {
		for _, row := range bundle.Cohorts {
			if row.CohortID == cohortID {
				return fromCounts(row.LessonCounts, "Cohort: "+row.CohortName)
			}
		}
		return nil
	}
	if bundle.School != nil {
		return fromCounts(bundle.School.LessonCounts, "School: "+bundle.School.SchoolName)
	}
	return nil
}

func fromCounts(counts models.LessonCounts, title string) *ProgressMetrics {
	return &ProgressMetrics{
		Title:             title,
		TotalLessons:      counts.TotalLessonsExpected,
		TotalCompleted:    counts.TotalLessonsCompleted,
		RequiredLessons:   counts.RequiredLessonsExpected,
		RequiredCompleted: counts.RequiredLessonsCompleted,
	}
}
