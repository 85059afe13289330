// Package store persists assessments in a single-file SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
	"github.com/ethanolivertroy/saa-tui/internal/grc"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for an unknown assessment id
var ErrNotFound = errors.New("assessment not found")

// Store is a SQLite-backed assessment repository
type Store struct {
	db *sql.DB
}

// Summary is a list row for one assessment
type Summary struct {
	ID          string            `json:"id"`
	ProjectName string            `json:"project_name"`
	ProfileID   grc.ProfileID     `json:"profile_id"`
	Status      assessment.Status `json:"status"`
	Result      assessment.Result `json:"result,omitempty"`
	Controls    int               `json:"controls"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Open opens (creating if needed) the database at path and migrates it
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	slog.Debug("store opened", "path", path)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			project_name TEXT NOT NULL,
			categorization JSON NOT NULL,
			profile_id TEXT NOT NULL,
			profile_reason TEXT NOT NULL DEFAULT '',
			tailoring_notes JSON,
			status TEXT NOT NULL,
			decision JSON,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS assessment_controls (
			assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			control_id TEXT NOT NULL,
			family TEXT NOT NULL,
			family_name TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			evidence_guidance TEXT NOT NULL DEFAULT '',
			is_inherited INTEGER NOT NULL DEFAULT 0,
			inherited_from JSON,
			applicable INTEGER NOT NULL DEFAULT 1,
			evidence_text TEXT NOT NULL DEFAULT '',
			evidence_status TEXT NOT NULL,
			audit_result TEXT NOT NULL,
			audit_comments TEXT NOT NULL DEFAULT '',
			reviewed_at DATETIME,
			PRIMARY KEY (assessment_id, control_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assessment_controls_position ON assessment_controls(assessment_id, position);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces an assessment together with its control records
func (s *Store) Save(ctx context.Context, a *assessment.Assessment) (err error) {
	catJSON, err := json.Marshal(a.Categorization)
	if err != nil {
		return fmt.Errorf("encode categorization: %w", err)
	}
	notesJSON, err := json.Marshal(a.TailoringNotes)
	if err != nil {
		return fmt.Errorf("encode tailoring notes: %w", err)
	}
	var decisionJSON sql.NullString
	if a.Decision != nil {
		b, err := json.Marshal(a.Decision)
		if err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
		decisionJSON = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assessments (id, project_name, categorization, profile_id, profile_reason, tailoring_notes, status, decision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_name = excluded.project_name,
			categorization = excluded.categorization,
			profile_id = excluded.profile_id,
			profile_reason = excluded.profile_reason,
			tailoring_notes = excluded.tailoring_notes,
			status = excluded.status,
			decision = excluded.decision,
			updated_at = excluded.updated_at`,
		a.ID, a.ProjectName, string(catJSON), string(a.ProfileID), a.ProfileReason, string(notesJSON),
		string(a.Status), decisionJSON, formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert assessment: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM assessment_controls WHERE assessment_id = ?`, a.ID); err != nil {
		return fmt.Errorf("failed to clear controls: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assessment_controls (
			assessment_id, position, control_id, family, family_name, title, description, priority, evidence_guidance,
			is_inherited, inherited_from, applicable, evidence_text, evidence_status, audit_result, audit_comments, reviewed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range a.Controls {
		inherited, err := json.Marshal(rec.InheritedFrom)
		if err != nil {
			return fmt.Errorf("encode %s inheritance: %w", rec.ControlID, err)
		}
		var reviewed sql.NullString
		if rec.ReviewedAt != nil {
			reviewed = sql.NullString{String: formatTime(*rec.ReviewedAt), Valid: true}
		}
		_, err = stmt.ExecContext(ctx,
			a.ID, i, rec.ControlID, rec.Family, rec.FamilyName, rec.Title, rec.Description, string(rec.Priority), rec.EvidenceGuidance,
			rec.IsInherited, string(inherited), rec.Applicable, rec.EvidenceText, string(rec.EvidenceStatus), string(rec.AuditResult), rec.AuditComments, reviewed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert control %s: %w", rec.ControlID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	slog.Debug("assessment saved", "id", a.ID, "status", a.Status, "controls", len(a.Controls))
	return nil
}

// Get loads an assessment and its control records
func (s *Store) Get(ctx context.Context, id string) (*assessment.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_name, categorization, profile_id, profile_reason, tailoring_notes, status, decision, created_at, updated_at
		FROM assessments
		WHERE id = ?`, id)

	var (
		a         assessment.Assessment
		catJSON   string
		notesJSON sql.NullString
		decision  sql.NullString
		profileID string
		status    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&a.ID, &a.ProjectName, &catJSON, &profileID, &a.ProfileReason, &notesJSON, &status, &decision, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	a.ProfileID = grc.ProfileID(profileID)
	a.Status = assessment.Status(status)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)

	if err := json.Unmarshal([]byte(catJSON), &a.Categorization); err != nil {
		return nil, fmt.Errorf("decode categorization: %w", err)
	}
	if notesJSON.Valid && notesJSON.String != "" {
		if err := json.Unmarshal([]byte(notesJSON.String), &a.TailoringNotes); err != nil {
			return nil, fmt.Errorf("decode tailoring notes: %w", err)
		}
	}
	if decision.Valid && decision.String != "" {
		var d assessment.Decision
		if err := json.Unmarshal([]byte(decision.String), &d); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		a.Decision = &d
	}

	a.Controls, err = s.controls(ctx, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) controls(ctx context.Context, id string) ([]assessment.ControlRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT control_id, family, family_name, title, description, priority, evidence_guidance,
			is_inherited, inherited_from, applicable, evidence_text, evidence_status, audit_result, audit_comments, reviewed_at
		FROM assessment_controls
		WHERE assessment_id = ?
		ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := []assessment.ControlRecord{}
	for rows.Next() {
		var (
			rec       assessment.ControlRecord
			priority  string
			inherited sql.NullString
			evidence  string
			audit     string
			reviewed  sql.NullString
		)
		if err := rows.Scan(&rec.ControlID, &rec.Family, &rec.FamilyName, &rec.Title, &rec.Description, &priority, &rec.EvidenceGuidance,
			&rec.IsInherited, &inherited, &rec.Applicable, &rec.EvidenceText, &evidence, &audit, &rec.AuditComments, &reviewed); err != nil {
			return nil, err
		}
		rec.Priority = grc.Priority(priority)
		rec.EvidenceStatus = assessment.EvidenceStatus(evidence)
		rec.AuditResult = assessment.AuditResult(audit)
		rec.InheritedFrom = []string{}
		if inherited.Valid && inherited.String != "" {
			if err := json.Unmarshal([]byte(inherited.String), &rec.InheritedFrom); err != nil {
				return nil, fmt.Errorf("decode %s inheritance: %w", rec.ControlID, err)
			}
		}
		if reviewed.Valid && reviewed.String != "" {
			t := parseTime(reviewed.String)
			rec.ReviewedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// List returns all assessments, newest first
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.project_name, a.profile_id, a.status, a.decision, a.created_at, a.updated_at,
			(SELECT COUNT(*) FROM assessment_controls c WHERE c.assessment_id = a.id)
		FROM assessments a
		ORDER BY a.created_at DESC, a.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var (
			sum       Summary
			profileID string
			status    string
			decision  sql.NullString
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.ProjectName, &profileID, &status, &decision, &createdAt, &updatedAt, &sum.Controls); err != nil {
			return nil, err
		}
		sum.ProfileID = grc.ProfileID(profileID)
		sum.Status = assessment.Status(status)
		sum.CreatedAt = parseTime(createdAt)
		sum.UpdatedAt = parseTime(updatedAt)
		if decision.Valid && decision.String != "" {
			var d assessment.Decision
			if err := json.Unmarshal([]byte(decision.String), &d); err == nil {
				sum.Result = d.Result
			}
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an assessment and its control records
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	// foreign_keys is per connection; clear explicitly in case it was off
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assessment_controls WHERE assessment_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete controls: %w", err)
	}
	slog.Debug("assessment deleted", "id", id)
	return nil
}

// timeLayout is fixed width so text ordering in SQL matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
