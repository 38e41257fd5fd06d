package domain

import "time"

// TestItem is a named, reusable health-check definition.
//
// ScoreRangeMin/Max are stored per item (default 1-10) but result
// validation applies the fixed system-wide bound; the per-item range is
// carried data pending a product decision on whether it should win.
type TestItem struct {
	ID            int64
	Name          string
	Description   string
	ScoreRangeMin int
	ScoreRangeMax int
	CreatedAt     time.Time
}
