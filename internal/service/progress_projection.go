package service

import (
	"math"

	"github.com/noah-isme/lms-progress-api/internal/dto"
)

// ProjectProgress maps a resolved aggregate onto the dashboard payload,
// deriving the two percentages. Nil input projects the explicit empty
// state instead of metrics.
func ProjectProgress(resolved *ProgressMetrics) dto.ProgressViewResponse {
	if resolved == nil {
		return dto.ProgressViewResponse{HasData: false}
	}
	return dto.ProgressViewResponse{
		HasData:            true,
		Title:              resolved.Title,
		TotalLessons:       resolved.TotalLessons,
		TotalCompleted:     resolved.TotalCompleted,
		RequiredLessons:    resolved.RequiredLessons,
		RequiredCompleted:  resolved.RequiredCompleted,
		TotalPercentage:    percentage(resolved.TotalCompleted, resolved.TotalLessons),
		RequiredPercentage: percentage(resolved.RequiredCompleted, resolved.RequiredLessons),
	}
}

// percentage rounds completed/total to a whole percent and defines the
// zero-denominator case as 0 so the projection can never yield NaN.
func percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
