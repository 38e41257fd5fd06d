package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"health-metrics/internal/domain"
	"health-metrics/internal/health"
	"health-metrics/internal/repository"
	"health-metrics/internal/session"
)

// Scores are validated against this fixed system-wide bound. The per-item
// score range stored on test items is intentionally not consulted.
const (
	scoreMin = 1
	scoreMax = 10
)

// PatientReport is a patient's own result list with the derived summary.
type PatientReport struct {
	Results []domain.ResultView
	Summary health.Summary
}

// ResultService manages test results. Mutations and the full listing are
// technician only; ListOwnResults is the single patient-facing read,
// scoped by the gate to the session's own identity.
type ResultService interface {
	ListAll(ctx context.Context, sess *session.Session) ([]domain.ResultView, error)
	// Create records a result for a (patient, item) pair that has none
	// yet. The recording technician is the session user.
	Create(ctx context.Context, sess *session.Session, patientID, itemID int64, score float64, testDate, notes string) (*domain.TestResult, error)
	// Update rewrites score, date and notes; the session user becomes the
	// recording technician of record. Patient and item never change.
	Update(ctx context.Context, sess *session.Session, id int64, score float64, testDate, notes string) error
	Delete(ctx context.Context, sess *session.Session, id int64) error
	// ListOwnResults returns the session patient's results and summary.
	// The patient filter comes from the session, never from the client.
	ListOwnResults(ctx context.Context, sess *session.Session) (*PatientReport, error)
}

type resultService struct {
	results repository.ResultRepository
}

func NewResultService(results repository.ResultRepository) ResultService {
	return &resultService{results: results}
}

func (s *resultService) ListAll(ctx context.Context, sess *session.Session) ([]domain.ResultView, error) {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return nil, err
	}

	views, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, domain.WrapStore("list results", err)
	}
	return views, nil
}

func (s *resultService) Create(ctx context.Context, sess *session.Session, patientID, itemID int64, score float64, testDate, notes string) (*domain.TestResult, error) {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return nil, err
	}

	if patientID <= 0 {
		return nil, domain.NewValidationError("patient_id")
	}
	if itemID <= 0 {
		return nil, domain.NewValidationError("item_id")
	}
	if err := validateTestDate(testDate); err != nil {
		return nil, err
	}
	if score < scoreMin || score > scoreMax {
		return nil, domain.ErrScoreOutOfRange
	}

	exists, err := s.results.ExistsForPair(ctx, patientID, itemID)
	if err != nil {
		return nil, domain.WrapStore("check result pair", err)
	}
	if exists {
		return nil, domain.ErrDuplicateResultPair
	}

	result := &domain.TestResult{
		PatientID:    patientID,
		ItemID:       itemID,
		TechnicianID: sess.UserID,
		Score:        score,
		TestDate:     testDate,
		Notes:        strings.TrimSpace(notes),
	}
	if _, err := s.results.Create(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicateResultPair
		}
		return nil, domain.WrapStore("create result", err)
	}
	return result, nil
}

func (s *resultService) Update(ctx context.Context, sess *session.Session, id int64, score float64, testDate, notes string) error {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return err
	}

	if id <= 0 {
		return domain.NewValidationError("result_id")
	}
	if err := validateTestDate(testDate); err != nil {
		return err
	}
	if score < scoreMin || score > scoreMax {
		return domain.ErrScoreOutOfRange
	}

	if err := s.results.Update(ctx, id, score, testDate, strings.TrimSpace(notes), sess.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.WrapStore("update result", err)
	}
	return nil
}

func (s *resultService) Delete(ctx context.Context, sess *session.Session, id int64) error {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return err
	}

	if id <= 0 {
		return domain.NewValidationError("result_id")
	}

	if err := s.results.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.WrapStore("delete result", err)
	}
	return nil
}

func (s *resultService) ListOwnResults(ctx context.Context, sess *session.Session) (*PatientReport, error) {
	if err := sess.RequireRole(domain.RolePatient); err != nil {
		return nil, err
	}

	views, err := s.results.ListByPatient(ctx, sess.UserID)
	if err != nil {
		return nil, domain.WrapStore("list own results", err)
	}

	scores := make([]float64, len(views))
	for i := range views {
		scores[i] = views[i].Score
	}

	return &PatientReport{
		Results: views,
		Summary: health.Summarize(scores),
	}, nil
}

func validateTestDate(testDate string) error {
	if strings.TrimSpace(testDate) == "" {
		return domain.NewValidationError("test_date")
	}
	if _, err := time.Parse("2006-01-02", testDate); err != nil {
		return domain.NewValidationError("test_date")
	}
	return nil
}
