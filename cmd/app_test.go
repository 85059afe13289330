package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/intake"
	"github.com/ethanolivertroy/saa-tui/internal/report"
	"github.com/ethanolivertroy/saa-tui/internal/store"
)

var testNow = time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cat, err := grc.Default()
	require.NoError(t, err)
	var out bytes.Buffer
	return &App{
		Catalog: cat,
		DBPath:  filepath.Join(t.TempDir(), "saa.db"),
		Out:     &out,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     func() time.Time { return testNow },
		Raw:     true,
	}, &out
}

// savedID saves the portal intake and returns the new assessment's id
func savedID(t *testing.T, app *App) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, app.Assess(ctx, "testdata/portal.yaml", report.FormatJSON, true))

	s, err := store.Open(ctx, app.DBPath)
	require.NoError(t, err)
	defer s.Close()
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0].ID
}

func getAssessment(t *testing.T, app *App, id string) *assessment.Assessment {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, app.DBPath)
	require.NoError(t, err)
	defer s.Close()
	a, err := s.Get(ctx, id)
	require.NoError(t, err)
	return a
}

func TestAssessFormats(t *testing.T) {
	tests := []struct {
		format report.Format
		want   []string
	}{
		{report.FormatMarkdown, []string{"# SA&A Intake Report: Grants Portal", "PBMM"}},
		{report.FormatJSON, []string{`"project_name": "Grants Portal"`, `"profile"`}},
		{report.FormatCSV, []string{"Control ID", "AC-2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			app, out := newTestApp(t)
			require.NoError(t, app.Assess(context.Background(), "testdata/portal.yaml", tt.format, false))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestAssessInvalidIntake(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.Assess(context.Background(), "testdata/invalid.yaml", report.FormatMarkdown, false)
	assert.ErrorIs(t, err, intake.ErrInvalidIntake)

	err = app.Assess(context.Background(), "testdata/missing.yaml", report.FormatMarkdown, false)
	assert.Error(t, err)
}

func TestAssessRendersWithGlamour(t *testing.T) {
	app, out := newTestApp(t)
	app.Raw = false
	app.Width = 80
	require.NoError(t, app.Assess(context.Background(), "testdata/portal.yaml", report.FormatMarkdown, false))
	assert.Contains(t, out.String(), "Grants")
}

func TestProfile(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, app.Profile("testdata/portal.yaml"))
	assert.Contains(t, out.String(), "PB/M/M")
	assert.Contains(t, out.String(), "Profile:        PBMM")
	assert.Contains(t, out.String(), "SA&A required:  true")
}

func TestListControls(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, app.ListControls("ac", ""))
	assert.Contains(t, out.String(), "AC-2")
	assert.NotContains(t, out.String(), "IR-")
	assert.Contains(t, out.String(), "controls")

	out.Reset()
	err := app.ListControls("", "NOPE")
	assert.ErrorIs(t, err, ErrUsage)

	out.Reset()
	require.NoError(t, app.ListControls("ZZ", ""))
	assert.Contains(t, out.String(), "No controls match")
}

func TestListTechnologiesAndGuidance(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, app.ListTechnologies())
	assert.Contains(t, out.String(), "entra-id")

	out.Reset()
	require.NoError(t, app.Guidance())
	assert.Contains(t, out.String(), "Required")
}

func TestAssessmentLifecycle(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t)
	id := savedID(t, app)

	out.Reset()
	require.NoError(t, app.ListAssessments(ctx))
	assert.Contains(t, out.String(), "Grants Portal")
	assert.Contains(t, out.String(), id)

	a := getAssessment(t, app, id)
	first := a.Controls[0].ControlID

	out.Reset()
	require.NoError(t, app.RecordEvidence(ctx, id, strings.ToLower(first), "Runbook v3"))
	assert.Contains(t, out.String(), "Recorded evidence for "+first)

	require.NoError(t, app.RecordAudit(ctx, id, first, "MET", "verified"))
	err := app.RecordAudit(ctx, id, first, "maybe", "")
	assert.ErrorIs(t, err, ErrUsage)
	err = app.RecordAudit(ctx, id, "ZZ-1", "met", "")
	assert.ErrorIs(t, err, assessment.ErrControlNotFound)

	got, err := a.Control(first)
	require.NoError(t, err)
	assert.Equal(t, assessment.AuditPending, got.AuditResult, "in-memory copy is untouched")
	rec, err := getAssessment(t, app, id).Control(first)
	require.NoError(t, err)
	assert.Equal(t, assessment.AuditMet, rec.AuditResult)
	assert.Equal(t, "Runbook v3", rec.EvidenceText)

	out.Reset()
	require.NoError(t, app.ListAssessmentControls(ctx, id, true))
	assert.NotContains(t, out.String(), first+" ")

	err = app.Transition(ctx, id, "review")
	assert.ErrorIs(t, err, assessment.ErrInvalidTransition)
	err = app.Transition(ctx, id, "bogus")
	assert.ErrorIs(t, err, ErrUsage)
	require.NoError(t, app.Transition(ctx, id, "evidence"))
	require.NoError(t, app.Transition(ctx, id, "review"))

	err = app.Complete(ctx, id)
	assert.ErrorIs(t, err, assessment.ErrAuditIncomplete)

	// mark the rest met directly
	s, err := store.Open(ctx, app.DBPath)
	require.NoError(t, err)
	full, err := s.Get(ctx, id)
	require.NoError(t, err)
	for _, c := range full.Controls {
		require.NoError(t, full.RecordAudit(c.ControlID, assessment.AuditMet, "", testNow))
	}
	require.NoError(t, s.Save(ctx, full))
	require.NoError(t, s.Close())

	out.Reset()
	require.NoError(t, app.Complete(ctx, id))
	assert.Contains(t, out.String(), "Authority to Operate (score 100%)")

	out.Reset()
	require.NoError(t, app.Letter(ctx, id))
	assert.Contains(t, out.String(), "# Authority to Operate")
	assert.Contains(t, out.String(), "Signatures")

	err = app.RecordEvidence(ctx, id, first, "late")
	assert.ErrorIs(t, err, assessment.ErrCompleted)

	out.Reset()
	require.NoError(t, app.ShowAssessment(ctx, id))
	assert.Contains(t, out.String(), "Security Assessment Report: Grants Portal")

	err = app.DeleteAssessment(ctx, id)
	assert.ErrorIs(t, err, assessment.ErrNotDraft)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, assessment.StatusCompleted, getAssessment(t, app, id).Status, "decision record survives")
}

func TestDeleteDraftOnly(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t)

	draft := savedID(t, app)
	require.NoError(t, app.DeleteAssessment(ctx, draft))
	assert.Contains(t, out.String(), "Deleted "+draft)
	assert.ErrorIs(t, app.ShowAssessment(ctx, draft), store.ErrNotFound)
	assert.ErrorIs(t, app.DeleteAssessment(ctx, draft), store.ErrNotFound)

	started := savedID(t, app)
	require.NoError(t, app.Transition(ctx, started, "evidence"))
	err := app.DeleteAssessment(ctx, started)
	assert.ErrorIs(t, err, assessment.ErrNotDraft)
	assert.Equal(t, assessment.StatusEvidence, getAssessment(t, app, started).Status)
}

func TestLetterBeforeDecision(t *testing.T) {
	app, _ := newTestApp(t)
	id := savedID(t, app)
	err := app.Letter(context.Background(), id)
	assert.ErrorIs(t, err, report.ErrNoDecision)
}

func TestScopeChanges(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t)
	id := savedID(t, app)
	a := getAssessment(t, app, id)
	first := a.Controls[0].ControlID

	require.NoError(t, app.SetApplicable(ctx, id, first, "false"))
	assert.Contains(t, out.String(), first+" applicable: false")
	err := app.SetApplicable(ctx, id, first, "perhaps")
	assert.ErrorIs(t, err, ErrUsage)

	out.Reset()
	require.NoError(t, app.ListAssessmentControls(ctx, id, false))
	assert.Contains(t, out.String(), "not applicable")

	require.NoError(t, app.RemoveControl(ctx, id, first))
	assert.Len(t, getAssessment(t, app, id).Controls, len(a.Controls)-1)

	require.NoError(t, app.AddControl(ctx, id, first))
	assert.Len(t, getAssessment(t, app, id).Controls, len(a.Controls))
	err = app.AddControl(ctx, id, first)
	assert.ErrorIs(t, err, assessment.ErrDuplicateControl)
	err = app.AddControl(ctx, id, "ZZ-9")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestListAssessmentsEmpty(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, app.ListAssessments(context.Background()))
	assert.Contains(t, out.String(), "No saved assessments")
}
