// Package health derives a patient's overall health summary from their
// recorded scores. The calculation is pure and runs on every fetch.
package health

import "math"

// Status labels for the summary, assigned by average score.
const (
	StatusExcellent      = "excellent"
	StatusGood           = "good"
	StatusFair           = "fair"
	StatusNeedsAttention = "needs attention"
)

// Summary aggregates a patient's result scores.
type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Status  string  `json:"status"`
}

// Summarize computes the arithmetic mean of the scores rounded to two
// decimal places and classifies it. An empty score list yields an average
// of exactly 0 (a deliberate zero-default, not NaN) and the lowest status.
// Bounds are inclusive and checked high to low: >=8 excellent, >=6 good,
// >=4 fair, anything below that needs attention.
func Summarize(scores []float64) Summary {
	if len(scores) == 0 {
		return Summary{Count: 0, Average: 0, Status: StatusNeedsAttention}
	}

	var total float64
	for _, s := range scores {
		total += s
	}
	avg := math.Round(total/float64(len(scores))*100) / 100

	return Summary{
		Count:   len(scores),
		Average: avg,
		Status:  statusFor(avg),
	}
}

func statusFor(average float64) string {
	switch {
	case average >= 8:
		return StatusExcellent
	case average >= 6:
		return StatusGood
	case average >= 4:
		return StatusFair
	default:
		return StatusNeedsAttention
	}
}
