package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/model"
	"github.com/ethanolivertroy/saa-tui/internal/report"
	"github.com/ethanolivertroy/saa-tui/internal/store"
)

func newAssessment(r report.Report, now time.Time) *assessment.Assessment {
	return assessment.New(r.ProjectName, r.Categorization, r.Determination, r.Recommendations, now)
}

// withStore opens the database for the duration of fn
func (a *App) withStore(ctx context.Context, fn func(s *store.Store) error) error {
	s, err := store.Open(ctx, a.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			a.logger().Warn("close store", "error", cerr)
		}
	}()
	return fn(s)
}

// update loads an assessment, applies fn and saves the result
func (a *App) update(ctx context.Context, id string, fn func(asmt *assessment.Assessment) error) error {
	return a.withStore(ctx, func(s *store.Store) error {
		asmt, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(asmt); err != nil {
			return err
		}
		if err := s.Save(ctx, asmt); err != nil {
			return err
		}
		a.logger().Debug("assessment updated", "id", asmt.ID, "status", asmt.Status)
		return nil
	})
}

// ListAssessments prints saved assessments, newest first
func (a *App) ListAssessments(ctx context.Context) error {
	return a.withStore(ctx, func(s *store.Store) error {
		list, err := s.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			_, err := fmt.Fprintln(a.Out, "No saved assessments. Run `saa-tui assess <intake> --save` to create one.")
			return err
		}
		t := newTable("ID", "Project", "Profile", "Status", "Result", "Controls", "Updated")
		for _, sum := range list {
			result := "-"
			if sum.Result != "" {
				result = sum.Result.Label()
			}
			t.Row(sum.ID, sum.ProjectName, string(sum.ProfileID), string(sum.Status), result,
				strconv.Itoa(sum.Controls), sum.UpdatedAt.Format("2006-01-02 15:04"))
		}
		_, err = fmt.Fprintln(a.Out, t.Render())
		return err
	})
}

// ShowAssessment prints an assessment's status report
func (a *App) ShowAssessment(ctx context.Context, id string) error {
	return a.withStore(ctx, func(s *store.Store) error {
		asmt, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.printMarkdown(report.AssessmentMarkdown(asmt))
	})
}

// ListAssessmentControls prints an assessment's controls, optionally only
// the applicable controls still awaiting a finding
func (a *App) ListAssessmentControls(ctx context.Context, id string, pendingOnly bool) error {
	return a.withStore(ctx, func(s *store.Store) error {
		asmt, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		var b strings.Builder
		for _, item := range model.NewAssessmentItems(asmt.Controls) {
			if pendingOnly && (!item.Applicable || item.AuditResult != assessment.AuditPending) {
				continue
			}
			fmt.Fprintf(&b, "%s\n    %s\n", item.Title(), item.Description())
		}
		if b.Len() == 0 {
			b.WriteString("No controls match.\n")
		}
		_, err = io.WriteString(a.Out, b.String())
		return err
	})
}

// RecordEvidence stores evidence text for a control
func (a *App) RecordEvidence(ctx context.Context, id, controlID, text string) error {
	controlID = normalizeControlID(controlID)
	if err := a.update(ctx, id, func(asmt *assessment.Assessment) error {
		return asmt.RecordEvidence(controlID, text, a.now())
	}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.Out, "Recorded evidence for %s\n", controlID)
	return err
}

// RecordAudit stores an assessor finding for a control
func (a *App) RecordAudit(ctx context.Context, id, controlID, result, comments string) error {
	r, err := assessment.ParseAuditResult(strings.ToLower(result))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	controlID = normalizeControlID(controlID)
	if err := a.update(ctx, id, func(asmt *assessment.Assessment) error {
		return asmt.RecordAudit(controlID, r, comments, a.now())
	}); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.Out, "Recorded %s for %s\n", r, controlID)
	return err
}

// SetApplicable scopes a control in or out
func (a *App) SetApplicable(ctx context.Context, id, controlID, value string) error {
	applicable, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: applicable must be true or false, got %q", ErrUsage, value)
	}
	controlID = normalizeControlID(controlID)
	if err := a.update(ctx, id, func(asmt *assessment.Assessment) error {
		return asmt.SetApplicable(controlID, applicable, a.now())
	}); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.Out, "%s applicable: %t\n", controlID, applicable)
	return err
}

// AddControl adds a catalogue control to an assessment's baseline
func (a *App) AddControl(ctx context.Context, id, controlID string) error {
	controlID = normalizeControlID(controlID)
	ctrl, ok := a.Catalog.Control(controlID)
	if !ok {
		return fmt.Errorf("%w: unknown control %q", ErrUsage, controlID)
	}
	rec := assessment.RecordFromRecommendation(grc.Recommendation{
		Control:    ctrl,
		FamilyName: a.Catalog.FamilyName(ctrl.Family),
	})
	if err := a.update(ctx, id, func(asmt *assessment.Assessment) error {
		return asmt.AddControl(rec, a.now())
	}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.Out, "Added %s\n", controlID)
	return err
}

// RemoveControl drops a control from an assessment's baseline
func (a *App) RemoveControl(ctx context.Context, id, controlID string) error {
	controlID = normalizeControlID(controlID)
	if err := a.update(ctx, id, func(asmt *assessment.Assessment) error {
		return asmt.RemoveControl(controlID, a.now())
	}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.Out, "Removed %s\n", controlID)
	return err
}

// Transition moves an assessment through draft, evidence and review
func (a *App) Transition(ctx context.Context, id, status string) error {
	to, err := assessment.ParseStatus(strings.ToLower(status))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := a.update(ctx, id, func(asmt *assessment.Assessment) error {
		return asmt.Transition(to, a.now())
	}); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.Out, "Assessment %s is now %s\n", id, to)
	return err
}

// Complete decides a reviewed assessment and prints the outcome
func (a *App) Complete(ctx context.Context, id string) error {
	var d assessment.Decision
	if err := a.update(ctx, id, func(asmt *assessment.Assessment) error {
		var err error
		d, err = asmt.Complete(a.now())
		return err
	}); err != nil {
		return err
	}
	a.logger().Info("assessment completed", "id", id, "result", d.Result, "score", d.Score)
	_, err := fmt.Fprintf(a.Out, "%s (score %d%%)\n", d.Result.Label(), d.Score)
	return err
}

// Letter prints the authorization letter of a completed assessment
func (a *App) Letter(ctx context.Context, id string) error {
	return a.withStore(ctx, func(s *store.Store) error {
		asmt, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		md, err := report.AuthorizationMarkdown(asmt)
		if err != nil {
			return err
		}
		return a.printMarkdown(md)
	})
}

// DeleteAssessment removes a draft assessment and its control records
func (a *App) DeleteAssessment(ctx context.Context, id string) error {
	if err := a.withStore(ctx, func(s *store.Store) error {
		asmt, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := asmt.Deletable(); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return s.Delete(ctx, id)
	}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.Out, "Deleted %s\n", id)
	return err
}

func normalizeControlID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
