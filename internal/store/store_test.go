package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "saa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAssessment(t *testing.T, project string, created time.Time) *assessment.Assessment {
	t.Helper()
	cat, err := grc.Default()
	require.NoError(t, err)
	c := grc.Categorization{
		Confidentiality: grc.ProtectedB,
		Integrity:       grc.High,
		Availability:    grc.Medium,
		Technologies:    []string{"entra-id", "mfa"},
		Description:     "public api",
	}
	return assessment.New(project, c, cat.DetermineProfile(c), cat.RecommendControls(grc.RecommendationRequest{Categorization: c}), created)
}

func TestSaveGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	created := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	a := newAssessment(t, "Grants Portal", created)

	require.NoError(t, a.RecordEvidence("AC-2", "Joiner/mover/leaver SOP", created))
	require.NoError(t, a.RecordAudit("AC-2", assessment.AuditMet, "Sampled 20 accounts", created.Add(time.Hour)))
	require.NoError(t, a.SetApplicable("AC-1", false, created))
	require.NoError(t, s.Save(ctx, a))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, a.ProjectName, got.ProjectName)
	assert.Equal(t, a.ProfileID, got.ProfileID)
	assert.Equal(t, a.ProfileReason, got.ProfileReason)
	assert.Equal(t, a.TailoringNotes, got.TailoringNotes)
	assert.Equal(t, a.Categorization, got.Categorization)
	assert.Equal(t, a.Status, got.Status)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt), "created %v, want %v", got.CreatedAt, a.CreatedAt)
	assert.Nil(t, got.Decision)
	require.Len(t, got.Controls, len(a.Controls))

	for i := range a.Controls {
		assert.Equal(t, a.Controls[i].ControlID, got.Controls[i].ControlID, "order preserved")
	}

	ac2, err := got.Control("AC-2")
	require.NoError(t, err)
	assert.Equal(t, "Joiner/mover/leaver SOP", ac2.EvidenceText)
	assert.Equal(t, assessment.EvidenceProvided, ac2.EvidenceStatus)
	assert.Equal(t, assessment.AuditMet, ac2.AuditResult)
	assert.Equal(t, "Sampled 20 accounts", ac2.AuditComments)
	assert.True(t, ac2.IsInherited)
	assert.Equal(t, []string{"Microsoft Entra ID (Azure AD)"}, ac2.InheritedFrom)
	require.NotNil(t, ac2.ReviewedAt)
	assert.True(t, ac2.ReviewedAt.Equal(created.Add(time.Hour)))

	ac1, err := got.Control("AC-1")
	require.NoError(t, err)
	assert.False(t, ac1.Applicable)
	assert.Nil(t, ac1.ReviewedAt)
}

func TestSaveReplacesControls(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()
	a := newAssessment(t, "Case Management", now)
	require.NoError(t, s.Save(ctx, a))

	removed := a.Controls[0].ControlID
	require.NoError(t, a.RemoveControl(removed, now))
	for _, rec := range a.Controls {
		require.NoError(t, a.RecordAudit(rec.ControlID, assessment.AuditMet, "", now))
	}
	require.NoError(t, a.Transition(assessment.StatusEvidence, now))
	require.NoError(t, a.Transition(assessment.StatusReview, now))
	_, err := a.Complete(now)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, a))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Controls, len(a.Controls))
	_, err = got.Control(removed)
	assert.ErrorIs(t, err, assessment.ErrControlNotFound)
	assert.Equal(t, assessment.StatusCompleted, got.Status)
	require.NotNil(t, got.Decision)
	assert.Equal(t, assessment.ResultATO, got.Decision.Result)
	assert.Equal(t, 100, got.Decision.Score)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	older := newAssessment(t, "Older", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	newer := newAssessment(t, "Newer", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].ProjectName)
	assert.Equal(t, "Older", list[1].ProjectName)
	assert.Equal(t, len(newer.Controls), list[0].Controls)
	assert.Equal(t, assessment.StatusDraft, list[0].Status)
	assert.Empty(t, list[0].Result)
}

func TestListOrdersWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	whole := time.Date(2025, 6, 1, 9, 30, 5, 0, time.UTC)
	first := newAssessment(t, "First", whole)
	second := newAssessment(t, "Second", whole.Add(500*time.Millisecond))
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].ProjectName)
	assert.Equal(t, "First", list[1].ProjectName)

	got, err := s.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(second.CreatedAt), "CreatedAt = %v", got.CreatedAt)
}

func TestGetAndDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	a := newAssessment(t, "Retired System", time.Now())
	require.NoError(t, s.Save(ctx, a))

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err := s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	controls, err := s.controls(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, controls)
}

func TestReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saa.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	a := newAssessment(t, "Durable", time.Now())
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Durable", got.ProjectName)
}
