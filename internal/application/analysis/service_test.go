package analysis

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	domainai "github.com/burakseven/returns-ai/internal/domain/ai"
	domain "github.com/burakseven/returns-ai/internal/domain/analysis"
	"github.com/burakseven/returns-ai/internal/middleware"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type stubClassifier struct {
	result *domain.Result
	err    error
}

func (s stubClassifier) Classify(ctx context.Context, image []byte, contentType, notes string) (*domain.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubStore struct {
	err  error
	keys []string
}

func (s *stubStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	return "http://minio.local/shoe-photos/" + key, nil
}

type memRepo struct {
	records map[domain.AnalysisID]*domain.Analysis
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[domain.AnalysisID]*domain.Analysis)}
}

func (r *memRepo) Create(ctx context.Context, a *domain.Analysis) error {
	cp := *a
	r.records[a.ID] = &cp
	return nil
}

func (r *memRepo) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	a, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) Recent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	var out []*domain.Analysis
	for _, a := range r.records {
		cp := *a
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Analysis, error) {
	var out []*domain.Analysis
	for _, a := range r.records {
		if !a.CreatedAt.Before(from) && a.CreatedAt.Before(to) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) Approve(ctx context.Context, id domain.AnalysisID, override domain.Category, at time.Time) error {
	a, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsApproved = domain.ApprovalApproved
	a.ManualOverride = override
	a.UpdatedAt = at
	return nil
}

func (r *memRepo) ManualEdit(ctx context.Context, id domain.AnalysisID, override domain.Category, notes string, at time.Time) error {
	a, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsApproved = domain.ApprovalApproved
	a.ManualOverride = override
	a.UserNotes = notes
	a.UpdatedAt = at
	return nil
}

func okResult() *domain.Result {
	return &domain.Result{
		Classification: domain.CategoryReturnable,
		Confidence:     0.9,
		Scores:         domain.Scores{Returnable: 0.8, NotReturnable: 0.05, SendBack: 0.05, Donation: 0.05, Disposal: 0.05},
		Features:       []string{"clean surface"},
		Reasoning:      "looks barely worn",
		DamageReasons:  []string{},
		ShoeModel:      "Nike Air Force 1",
		WarrantyPeriod: 24,
	}
}

func newService(cls domainai.Classifier, repo domain.Repository) (*Service, *stubStore) {
	store := &stubStore{}
	return &Service{
		Repo:       repo,
		Classifier: cls,
		Images:     store,
		Fallback:   domain.NewFallbackSelector(domain.DefaultFallbackResults(), func(n int) int { return 1 }),
		Clock:      fixedClock{t: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)},
	}, store
}

func TestAnalyzePersistsClassifierResult(t *testing.T) {
	repo := newMemRepo()
	svc, store := newService(stubClassifier{result: okResult()}, repo)

	a, err := svc.Analyze(context.Background(), AnalyzeCommand{
		Image:            []byte{0xFF, 0xD8, 0x01},
		ContentType:      "image/jpeg",
		OriginalFilename: "left-shoe.jpg",
		CustomerNotes:    "sole came off",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if a.IsApproved != domain.ApprovalPending {
		t.Fatalf("IsApproved = %d, want pending", a.IsApproved)
	}
	if a.Result.Classification != domain.CategoryReturnable {
		t.Fatalf("classification = %s", a.Result.Classification)
	}
	if a.UserNotes != "sole came off" {
		t.Fatalf("UserNotes = %q", a.UserNotes)
	}
	if len(store.keys) != 1 {
		t.Fatalf("expected one stored image, got %d", len(store.keys))
	}
	if _, err := repo.Get(context.Background(), a.ID); err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
}

func TestAnalyzeFallsBackWhenClassifierUnavailable(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{err: domainai.ErrUnavailable}, repo)

	a, err := svc.Analyze(context.Background(), AnalyzeCommand{
		Image:            []byte{0xFF, 0xD8, 0x01},
		ContentType:      "image/jpeg",
		OriginalFilename: "shoe.jpg",
	})
	if err != nil {
		t.Fatalf("Analyze must absorb the outage, got %v", err)
	}

	// chooser pinned to index 1: the disposal canned result
	if a.Result.Classification != domain.CategoryDisposal {
		t.Fatalf("classification = %s, want canned disposal result", a.Result.Classification)
	}
	if sum := a.Result.Scores.Sum(); math.Abs(sum-1.0) > 0.1 {
		t.Fatalf("fallback scores sum %v far from 1.0", sum)
	}
	if a.Result.Reasoning == "" || a.Result.ShoeModel == "" {
		t.Fatalf("fallback result not fully formed: %+v", a.Result)
	}
}

type failingRepo struct {
	*memRepo
}

func (r failingRepo) Create(ctx context.Context, a *domain.Analysis) error {
	return errors.New("db down")
}

func analysesTotal() uint64 {
	return middleware.GetMetrics()["analyses_total"].(uint64)
}

func TestAnalysesCounterTracksPersistedRecordsOnly(t *testing.T) {
	svc, _ := newService(stubClassifier{result: okResult()}, failingRepo{newMemRepo()})

	before := analysesTotal()
	if _, err := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"}); err == nil {
		t.Fatalf("expected error from failing repo")
	}
	if got := analysesTotal(); got != before {
		t.Fatalf("analyses_total moved %d -> %d on a failed save", before, got)
	}

	svc, _ = newService(stubClassifier{result: okResult()}, newMemRepo())
	if _, err := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := analysesTotal(); got != before+1 {
		t.Fatalf("analyses_total = %d, want %d after one persisted analysis", got, before+1)
	}
}

func TestApproveWithoutOverride(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)
	a, _ := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"})

	if err := svc.Approve(context.Background(), a.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	got, _ := repo.Get(context.Background(), a.ID)
	if got.IsApproved != domain.ApprovalApproved {
		t.Fatalf("IsApproved = %d, want approved", got.IsApproved)
	}
	if got.ManualOverride != "" {
		t.Fatalf("ManualOverride = %q, want empty", got.ManualOverride)
	}
}

func TestApproveWithOverride(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)
	a, _ := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"})

	if err := svc.Approve(context.Background(), a.ID, "donation"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	got, _ := repo.Get(context.Background(), a.ID)
	if got.ManualOverride != domain.CategoryDonation {
		t.Fatalf("ManualOverride = %q, want donation", got.ManualOverride)
	}
}

func TestApproveInvalidOverrideLeavesRecordUnchanged(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)
	a, _ := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"})

	err := svc.Approve(context.Background(), a.ID, "shred_it")
	if !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}
	got, _ := repo.Get(context.Background(), a.ID)
	if got.IsApproved != domain.ApprovalPending {
		t.Fatalf("record changed after failed validation")
	}
}

func TestApproveNotFound(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)

	err := svc.Approve(context.Background(), "11111111-2222-3333-4444-555555555555", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestManualEditSetsOverrideAndNotes(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)
	a, _ := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"})

	if err := svc.ManualEdit(context.Background(), a.ID, "disposal", "cracked sole"); err != nil {
		t.Fatalf("ManualEdit: %v", err)
	}
	got, _ := repo.Get(context.Background(), a.ID)
	if got.ManualOverride != domain.CategoryDisposal {
		t.Fatalf("ManualOverride = %q, want disposal", got.ManualOverride)
	}
	if got.IsApproved != domain.ApprovalApproved {
		t.Fatalf("IsApproved = %d, want approved", got.IsApproved)
	}
	if got.UserNotes != "cracked sole" {
		t.Fatalf("UserNotes = %q", got.UserNotes)
	}
}

func TestManualEditRequiresOverride(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)
	a, _ := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"})

	if err := svc.ManualEdit(context.Background(), a.ID, "", "notes"); !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}
}

func TestDailyStatsOverrideWins(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	a, _ := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{1}, ContentType: "image/jpeg", OriginalFilename: "a.jpg"})
	b, _ := svc.Analyze(context.Background(), AnalyzeCommand{Image: []byte{2}, ContentType: "image/jpeg", OriginalFilename: "b.jpg"})
	_ = a

	if err := svc.ManualEdit(context.Background(), b.ID, "disposal", "actually ruined"); err != nil {
		t.Fatalf("ManualEdit: %v", err)
	}

	stats, err := svc.DailyStats(context.Background(), day)
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.Returnable != 1 || stats.Disposal != 1 {
		t.Fatalf("stats = %+v, want returnable:1 disposal:1", stats)
	}
	if stats.Total != 2 {
		t.Fatalf("Total = %d, want 2", stats.Total)
	}
}

func TestDailyStatsEmptyWindow(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(stubClassifier{result: okResult()}, repo)

	stats, err := svc.DailyStats(context.Background(), time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("Total = %d, want 0", stats.Total)
	}
}
