package app

import (
	"math"

	"academy-service/internal/domain"
)

const (
	// PassThresholdPercent is the fixed exam pass mark.
	PassThresholdPercent = 50.0
	// PassPointAward is the fixed number of points granted on first pass.
	PassPointAward = 10
)

// Grade scores an ordered answer set (chosen choice index per question)
// against a lesson's question set. It is a pure function.
//
// The answer set must contain exactly one entry per question; any other
// shape is rejected as malformed rather than padded, so client bugs surface
// instead of scoring as zeros. A choice index outside the question's choice
// list counts as an incorrect answer, not a malformed submission.
//
// The score is correct/total*100 rounded half-up to one decimal; passing is
// score >= PassThresholdPercent.
func Grade(questions []domain.Question, answers []int) (scorePercent float64, passed bool, err error) {
	if len(questions) == 0 || len(answers) != len(questions) {
		return 0, false, domain.ErrMalformedSubmission
	}

	correct := 0
	for i, q := range questions {
		if answers[i] == q.CorrectIndex {
			correct++
		}
	}

	scorePercent = roundHalfUp1(float64(correct) / float64(len(questions)) * 100)
	return scorePercent, scorePercent >= PassThresholdPercent, nil
}

func roundHalfUp1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
