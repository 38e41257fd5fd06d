package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-metrics/internal/domain"
	"health-metrics/internal/health"
)

func TestResultCreate(t *testing.T) {
	repo := newFakeResultRepo()
	svc := NewResultService(repo)
	sess := technicianSession(newTestSessions(), 42)
	ctx := context.Background()

	result, err := svc.Create(ctx, sess, 7, 3, 8.5, "2024-09-20", " within range ")
	require.NoError(t, err)
	assert.NotZero(t, result.ID)
	// recorder is always the session user
	assert.Equal(t, int64(42), result.TechnicianID)
	assert.Equal(t, "within range", result.Notes)
}

func TestResultCreateValidation(t *testing.T) {
	svc := NewResultService(newFakeResultRepo())
	sess := technicianSession(newTestSessions(), 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, sess, 0, 3, 5, "2024-09-20", "")
	assert.True(t, domain.IsValidationError(err))
	_, err = svc.Create(ctx, sess, 7, 0, 5, "2024-09-20", "")
	assert.True(t, domain.IsValidationError(err))
	_, err = svc.Create(ctx, sess, 7, 3, 5, "", "")
	assert.True(t, domain.IsValidationError(err))
	_, err = svc.Create(ctx, sess, 7, 3, 5, "20-09-2024", "")
	assert.True(t, domain.IsValidationError(err))
}

func TestResultCreateScoreBounds(t *testing.T) {
	svc := NewResultService(newFakeResultRepo())
	sess := technicianSession(newTestSessions(), 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, sess, 7, 3, 0.5, "2024-09-20", "")
	assert.ErrorIs(t, err, domain.ErrScoreOutOfRange)
	_, err = svc.Create(ctx, sess, 7, 3, 10.5, "2024-09-20", "")
	assert.ErrorIs(t, err, domain.ErrScoreOutOfRange)

	// bounds are inclusive; fractional scores allowed
	_, err = svc.Create(ctx, sess, 7, 3, 1, "2024-09-20", "")
	assert.NoError(t, err)
	_, err = svc.Create(ctx, sess, 7, 4, 10, "2024-09-20", "")
	assert.NoError(t, err)
	_, err = svc.Create(ctx, sess, 7, 5, 6.5, "2024-09-20", "")
	assert.NoError(t, err)
}

func TestResultCreateDuplicatePairLeavesStoreUnchanged(t *testing.T) {
	repo := newFakeResultRepo()
	svc := NewResultService(repo)
	sess := technicianSession(newTestSessions(), 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, sess, 7, 3, 8, "2024-09-20", "")
	require.NoError(t, err)
	before := len(repo.results)

	_, err = svc.Create(ctx, sess, 7, 3, 9, "2024-09-21", "")
	assert.ErrorIs(t, err, domain.ErrDuplicateResultPair)
	assert.Equal(t, before, len(repo.results))

	// a different item for the same patient is a new pair
	_, err = svc.Create(ctx, sess, 7, 4, 9, "2024-09-21", "")
	assert.NoError(t, err)
}

func TestResultUpdateReassignsRecorder(t *testing.T) {
	repo := newFakeResultRepo()
	svc := NewResultService(repo)
	sessions := newTestSessions()
	ctx := context.Background()

	first := technicianSession(sessions, 1)
	created, err := svc.Create(ctx, first, 7, 3, 8, "2024-09-20", "initial")
	require.NoError(t, err)

	second := technicianSession(sessions, 2)
	require.NoError(t, svc.Update(ctx, second, created.ID, 6.5, "2024-09-25", "revised"))

	stored := repo.results[created.ID]
	assert.Equal(t, 6.5, stored.Score)
	assert.Equal(t, "2024-09-25", stored.TestDate)
	assert.Equal(t, "revised", stored.Notes)
	assert.Equal(t, int64(2), stored.TechnicianID)
	// patient and item identity preserved
	assert.Equal(t, int64(7), stored.PatientID)
	assert.Equal(t, int64(3), stored.ItemID)
}

func TestResultUpdateValidation(t *testing.T) {
	svc := NewResultService(newFakeResultRepo())
	sess := technicianSession(newTestSessions(), 1)
	ctx := context.Background()

	assert.True(t, domain.IsValidationError(svc.Update(ctx, sess, 0, 5, "2024-09-20", "")))
	assert.ErrorIs(t, svc.Update(ctx, sess, 1, 11, "2024-09-20", ""), domain.ErrScoreOutOfRange)
	assert.ErrorIs(t, svc.Update(ctx, sess, 404, 5, "2024-09-20", ""), domain.ErrNotFound)
}

func TestResultDelete(t *testing.T) {
	repo := newFakeResultRepo()
	svc := NewResultService(repo)
	sess := technicianSession(newTestSessions(), 1)
	ctx := context.Background()

	created, err := svc.Create(ctx, sess, 7, 3, 8, "2024-09-20", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sess, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, sess, created.ID), domain.ErrNotFound)
}

func TestListOwnResultsScopedToSession(t *testing.T) {
	repo := newFakeResultRepo()
	svc := NewResultService(repo)
	sessions := newTestSessions()
	tech := technicianSession(sessions, 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, tech, 7, 3, 8, "2024-09-20", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, tech, 7, 4, 10, "2024-09-21", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, tech, 8, 3, 2, "2024-09-22", "")
	require.NoError(t, err)

	report, err := svc.ListOwnResults(ctx, patientSession(sessions, 7, false))
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	for _, r := range report.Results {
		assert.Equal(t, int64(7), r.PatientID)
	}
	assert.Equal(t, health.Summary{Count: 2, Average: 9, Status: health.StatusExcellent}, report.Summary)
}

func TestListOwnResultsEmptySummary(t *testing.T) {
	svc := NewResultService(newFakeResultRepo())
	sess := patientSession(newTestSessions(), 7, false)

	report, err := svc.ListOwnResults(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, health.Summary{Count: 0, Average: 0, Status: health.StatusNeedsAttention}, report.Summary)
}

func TestListOwnResultsDeniedForTechnician(t *testing.T) {
	svc := NewResultService(newFakeResultRepo())
	sess := technicianSession(newTestSessions(), 1)

	_, err := svc.ListOwnResults(context.Background(), sess)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestListOwnResultsDeniedWhilePendingFirstLogin(t *testing.T) {
	svc := NewResultService(newFakeResultRepo())
	sess := patientSession(newTestSessions(), 7, true)

	_, err := svc.ListOwnResults(context.Background(), sess)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestResultListAllRequiresTechnician(t *testing.T) {
	svc := NewResultService(newFakeResultRepo())
	sessions := newTestSessions()

	_, err := svc.ListAll(context.Background(), patientSession(sessions, 7, false))
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = svc.ListAll(context.Background(), technicianSession(sessions, 1))
	assert.NoError(t, err)
}
