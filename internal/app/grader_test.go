package app_test

import (
	"testing"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourQuestions() []domain.Question {
	return []domain.Question{
		{Prompt: "q1", Choices: []string{"a", "b"}, CorrectIndex: 0},
		{Prompt: "q2", Choices: []string{"a", "b"}, CorrectIndex: 1},
		{Prompt: "q3", Choices: []string{"a", "b", "c"}, CorrectIndex: 2},
		{Prompt: "q4", Choices: []string{"a", "b"}, CorrectIndex: 0},
	}
}

func TestGradeHalfCorrectPasses(t *testing.T) {
	// 2 of 4 correct is exactly the 50% threshold.
	score, passed, err := app.Grade(fourQuestions(), []int{0, 1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 50.0, score)
	assert.True(t, passed)
}

func TestGradeAllWrongFails(t *testing.T) {
	score, passed, err := app.Grade(fourQuestions(), []int{1, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
	assert.False(t, passed)
}

func TestGradeRoundsHalfUpToOneDecimal(t *testing.T) {
	questions := []domain.Question{
		{Prompt: "q1", Choices: []string{"a", "b"}, CorrectIndex: 0},
		{Prompt: "q2", Choices: []string{"a", "b"}, CorrectIndex: 0},
		{Prompt: "q3", Choices: []string{"a", "b"}, CorrectIndex: 0},
	}
	// 1/3 = 33.333...% rounds to 33.3.
	score, passed, err := app.Grade(questions, []int{0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 33.3, score)
	assert.False(t, passed)

	// 2/3 = 66.666...% rounds to 66.7.
	score, passed, err = app.Grade(questions, []int{0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 66.7, score)
	assert.True(t, passed)
}

func TestGradeRejectsLengthMismatch(t *testing.T) {
	_, _, err := app.Grade(fourQuestions(), []int{0, 1})
	assert.ErrorIs(t, err, domain.ErrMalformedSubmission)

	_, _, err = app.Grade(fourQuestions(), []int{0, 1, 2, 0, 1})
	assert.ErrorIs(t, err, domain.ErrMalformedSubmission)

	_, _, err = app.Grade(nil, nil)
	assert.ErrorIs(t, err, domain.ErrMalformedSubmission)
}

func TestGradeOutOfRangeChoiceIsJustWrong(t *testing.T) {
	score, passed, err := app.Grade(fourQuestions(), []int{0, 1, 2, 99})
	require.NoError(t, err)
	assert.Equal(t, 75.0, score)
	assert.True(t, passed)
}
