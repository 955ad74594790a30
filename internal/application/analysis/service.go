package analysis

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	domainai "github.com/burakseven/returns-ai/internal/domain/ai"
	domain "github.com/burakseven/returns-ai/internal/domain/analysis"
	"github.com/burakseven/returns-ai/internal/middleware"
)

// Service implements the analysis use-cases. Stateless across requests;
// safe for concurrent use.
type Service struct {
	Repo       domain.Repository
	Classifier domainai.Classifier
	Images     domain.ImageStore
	Fallback   *domain.FallbackSelector
	Clock      Clock
}

// Clock abstraction so the lifecycle timestamps are testable
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

//
// ==== USE CASES ====
//

// AnalyzeCommand carries one upload through the pipeline.
type AnalyzeCommand struct {
	Image            []byte
	ContentType      string
	OriginalFilename string
	CustomerNotes    string
}

// Analyze runs the classification pipeline and persists the outcome.
//
// The classification itself never fails: when the backend cannot produce a
// usable result the fallback selector supplies a canned one, so the only
// errors that escape here are from the image store or the repository.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.Analysis, error) {
	now := s.Clock.Now()
	id := uuid.New().String()

	result, err := s.Classifier.Classify(ctx, cmd.Image, cmd.ContentType, cmd.CustomerNotes)
	if err != nil {
		// absorb the outage: log it, count it, hand out a canned result
		log.Printf("classifier unavailable, serving fallback: %v", err)
		middleware.IncrementAnalysesFallback()
		fb := s.Fallback.Select()
		result = &fb
	}

	key := fmt.Sprintf("shoes/%s%s", id, safeExt(cmd.OriginalFilename))
	imageURL, err := s.Images.Put(ctx, key, cmd.Image, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("storing image: %w", err)
	}

	a := &domain.Analysis{
		ID:               domain.AnalysisID(id),
		ImageURL:         imageURL,
		OriginalFilename: cmd.OriginalFilename,
		Result:           *result,
		UserNotes:        cmd.CustomerNotes,
		IsApproved:       domain.ApprovalPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("saving analysis: %w", err)
	}
	// counted only once the record is committed
	middleware.IncrementAnalyses()
	return a, nil
}

// Approve moves pending → approved, optionally attaching a validated override.
// The record is unchanged on any validation failure.
func (s *Service) Approve(ctx context.Context, id domain.AnalysisID, override string) error {
	var cat domain.Category
	if override != "" {
		c, err := domain.ParseCategory(override)
		if err != nil {
			return err
		}
		cat = c
	}
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.Approve(ctx, id, cat, s.Clock.Now())
}

// ManualEdit is approve with a mandatory override plus reviewer notes.
// The AI's original classification is retained on the record for audit.
func (s *Service) ManualEdit(ctx context.Context, id domain.AnalysisID, override, notes string) error {
	cat, err := domain.ParseCategory(override)
	if err != nil {
		return err
	}
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.ManualEdit(ctx, id, cat, notes, s.Clock.Now())
}

// Get one analysis by id
func (s *Service) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, id)
}

// Recent returns the newest analyses
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Recent(ctx, limit)
}

// DailyStats counts the day's records per effective category (override wins).
// Computed freshly per request from the committed records; no caching.
func (s *Service) DailyStats(ctx context.Context, date time.Time) (domain.DailyStats, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	records, err := s.Repo.ListBetween(ctx, from, to)
	if err != nil {
		return domain.DailyStats{}, err
	}
	var stats domain.DailyStats
	for _, a := range records {
		stats.Add(a.Effective())
	}
	return stats, nil
}

// safeExt keeps only a plain image extension for the object key.
func safeExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return ".jpg"
	case ".png":
		return ".png"
	case ".webp":
		return ".webp"
	}
	return ""
}
