package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectProgressNilResolvesToEmptyState(t *testing.T) {
	view := ProjectProgress(nil)

	assert.False(t, view.HasData)
	assert.Empty(t, view.Title)
	assert.Zero(t, view.TotalLessons)
	assert.Zero(t, view.TotalPercentage)
	assert.Zero(t, view.RequiredPercentage)
}

func TestProjectProgressDerivesPercentages(t *testing.T) {
	view := ProjectProgress(&ProgressMetrics{
		Title:             "School: Northside",
		TotalLessons:      200,
		TotalCompleted:    50,
		RequiredLessons:   80,
		RequiredCompleted: 60,
	})

	assert.True(t, view.HasData)
	assert.Equal(t, "School: Northside", view.Title)
	assert.Equal(t, 25, view.TotalPercentage)
	assert.Equal(t, 75, view.RequiredPercentage)
}

func TestProjectProgressZeroDenominators(t *testing.T) {
	view := ProjectProgress(&ProgressMetrics{Title: "Chapter: Empty"})

	assert.True(t, view.HasData)
	assert.Zero(t, view.TotalPercentage)
	assert.Zero(t, view.RequiredPercentage)
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 33, percentage(1, 3))
	assert.Equal(t, 67, percentage(2, 3))
	assert.Equal(t, 50, percentage(1, 2))
	assert.Equal(t, 100, percentage(3, 3))
	assert.Equal(t, 0, percentage(0, 10))
	assert.Equal(t, 0, percentage(5, 0))
	assert.Equal(t, 0, percentage(5, -1))
}
