package repository

import (
	"context"

	"health-metrics/internal/domain"
)

// ResultRepository defines persistence operations for test results. The
// listing calls return rows already joined with patient, item and
// technician display names; the join logic belongs to the store.
type ResultRepository interface {
	Init(ctx context.Context) error
	// ListAll returns every result ordered by test date descending, then
	// patient name, then item name.
	ListAll(ctx context.Context) ([]domain.ResultView, error)
	// ListByPatient returns the given patient's results in the same order.
	ListByPatient(ctx context.Context, patientID int64) ([]domain.ResultView, error)
	// ExistsForPair reports whether the patient already has a result for
	// the item.
	ExistsForPair(ctx context.Context, patientID, itemID int64) (bool, error)
	Create(ctx context.Context, result *domain.TestResult) (int64, error)
	// Update rewrites score, test date, notes and the recording technician.
	// The patient and item of a result never change.
	Update(ctx context.Context, id int64, score float64, testDate, notes string, technicianID int64) error
	Delete(ctx context.Context, id int64) error
}
