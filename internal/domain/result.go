package domain

import "time"

// TestResult is one scored outcome of a TestItem for a patient, recorded
// by a technician. At most one result exists per (patient, item) pair.
type TestResult struct {
	ID           int64
	PatientID    int64
	ItemID       int64
	TechnicianID int64
	Score        float64
	TestDate     string
	Notes        string
	CreatedAt    time.Time
}

// ResultView is a result row denormalized with display names for listing.
// The joins that produce it are a store-layer concern.
type ResultView struct {
	ID              int64
	Score           float64
	TestDate        string
	Notes           string
	PatientID       int64
	PatientName     string
	PatientAccount  string
	ItemID          int64
	ItemName        string
	ItemDescription string
	TechnicianName  string
}
