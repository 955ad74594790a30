package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/burakseven/returns-ai/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, image_url, original_filename, classification, confidence,
       scores, features, reasoning, damage_reasons, shoe_model, warranty_period,
       user_notes, is_user_error, user_error_reason, is_approved, manual_override,
       created_at, updated_at`

// Create inserts a new analysis record
func (r *AnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO shoe_analyses
(id, image_url, original_filename, classification, confidence,
 scores, features, reasoning, damage_reasons, shoe_model, warranty_period,
 user_notes, is_user_error, user_error_reason, is_approved, manual_override,
 created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);
`
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := a.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	isUserError := 0
	if a.Result.IsUserError {
		isUserError = 1
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.ImageURL, a.OriginalFilename, string(a.Result.Classification), a.Result.Confidence,
		jsonOrDefault(a.Result.Scores, "{}"),
		jsonOrDefault(a.Result.Features, "[]"),
		a.Result.Reasoning,
		jsonOrDefault(a.Result.DamageReasons, "[]"),
		nullIfEmpty(a.Result.ShoeModel), a.Result.WarrantyPeriod,
		nullIfEmpty(a.UserNotes), isUserError, nullIfEmpty(a.Result.UserErrorReason),
		a.IsApproved, nullIfEmpty(string(a.ManualOverride)),
		created, updated,
	)
	return err
}

// Get by ID
func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	const q = `
SELECT ` + analysisColumns + `
FROM shoe_analyses
WHERE id=? LIMIT 1;
`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

// Recent analyses, newest first
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT ` + analysisColumns + `
FROM shoe_analyses
ORDER BY created_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnalyses(rows)
}

// ListBetween returns records created in [from, to)
func (r *AnalysisRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Analysis, error) {
	const q = `
SELECT ` + analysisColumns + `
FROM shoe_analyses
WHERE created_at >= ? AND created_at < ?
ORDER BY created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnalyses(rows)
}

// Approve sets is_approved and the optional override
func (r *AnalysisRepository) Approve(ctx context.Context, id domain.AnalysisID, override domain.Category, at time.Time) error {
	const q = `
UPDATE shoe_analyses
SET is_approved = ?, manual_override = ?, updated_at = ?
WHERE id = ?;
`
	_, err := r.db.ExecContext(ctx, q, domain.ApprovalApproved, nullIfEmpty(string(override)), at, id)
	return err
}

// ManualEdit sets is_approved plus the mandatory override and reviewer notes
func (r *AnalysisRepository) ManualEdit(ctx context.Context, id domain.AnalysisID, override domain.Category, notes string, at time.Time) error {
	const q = `
UPDATE shoe_analyses
SET is_approved = ?, manual_override = ?, user_notes = ?, updated_at = ?
WHERE id = ?;
`
	_, err := r.db.ExecContext(ctx, q, domain.ApprovalApproved, string(override), nullIfEmpty(notes), at, id)
	return err
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var (
		a                                  domain.Analysis
		classification                     string
		scoresRaw, featuresRaw, damagesRaw []byte
		shoeModel, userNotes               sql.NullString
		userErrorReason, manualOverride    sql.NullString
		isUserError                        int
	)
	if err := row.Scan(
		&a.ID, &a.ImageURL, &a.OriginalFilename, &classification, &a.Result.Confidence,
		&scoresRaw, &featuresRaw, &a.Result.Reasoning, &damagesRaw,
		&shoeModel, &a.Result.WarrantyPeriod,
		&userNotes, &isUserError, &userErrorReason,
		&a.IsApproved, &manualOverride,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	cat, err := domain.ParseCategory(classification)
	if err != nil {
		return nil, err
	}
	a.Result.Classification = cat
	if manualOverride.Valid && manualOverride.String != "" {
		cat, err := domain.ParseCategory(manualOverride.String)
		if err != nil {
			return nil, err
		}
		a.ManualOverride = cat
	}

	if len(scoresRaw) > 0 {
		if err := json.Unmarshal(scoresRaw, &a.Result.Scores); err != nil {
			return nil, err
		}
	}
	a.Result.Features = []string{}
	if len(featuresRaw) > 0 {
		if err := json.Unmarshal(featuresRaw, &a.Result.Features); err != nil {
			return nil, err
		}
	}
	a.Result.DamageReasons = []string{}
	if len(damagesRaw) > 0 {
		if err := json.Unmarshal(damagesRaw, &a.Result.DamageReasons); err != nil {
			return nil, err
		}
	}

	a.Result.ShoeModel = shoeModel.String
	a.Result.IsUserError = isUserError == 1
	a.Result.UserErrorReason = userErrorReason.String
	a.UserNotes = userNotes.String
	return &a, nil
}

func collectAnalyses(rows *sql.Rows) ([]*domain.Analysis, error) {
	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
