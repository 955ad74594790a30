package analysis

import (
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Category enum: disposition assigned to a returned shoe
type Category string

const (
	CategoryReturnable    Category = "returnable"
	CategoryNotReturnable Category = "not_returnable"
	CategorySendBack      Category = "send_back"
	CategoryDonation      Category = "donation"
	CategoryDisposal      Category = "disposal"
)

// Categories returns the closed set, in score-key order.
func Categories() []Category {
	return []Category{
		CategoryReturnable,
		CategoryNotReturnable,
		CategorySendBack,
		CategoryDonation,
		CategoryDisposal,
	}
}

// ParseCategory converts an untrusted string into a Category.
// Every boundary (HTTP body, stored-record decode) goes through here.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryReturnable, CategoryNotReturnable, CategorySendBack, CategoryDonation, CategoryDisposal:
		return Category(s), nil
	}
	return "", ErrInvalidCategory
}

// Approval state encoding. -1 is reserved for a future rejected state
// and is never written by this service.
const (
	ApprovalPending  = 0
	ApprovalApproved = 1
	ApprovalRejected = -1
)

// ModelUndetermined is the sentinel the classifier emits when it cannot
// identify a brand or model from the photo.
const ModelUndetermined = "Belirlenemedi"

// Scores value object: the full distribution over all five categories.
type Scores struct {
	Returnable    float64 `json:"returnable"`
	NotReturnable float64 `json:"not_returnable"`
	SendBack      float64 `json:"send_back"`
	Donation      float64 `json:"donation"`
	Disposal      float64 `json:"disposal"`
}

// Sum of all five scores.
func (s Scores) Sum() float64 {
	return s.Returnable + s.NotReturnable + s.SendBack + s.Donation + s.Disposal
}

// Result is what one classification run produces.
type Result struct {
	Classification  Category `json:"classification"`
	Confidence      float64  `json:"confidence"`
	Scores          Scores   `json:"scores"`
	Features        []string `json:"features"`
	Reasoning       string   `json:"reasoning"`
	DamageReasons   []string `json:"damageReasons"`
	ShoeModel       string   `json:"shoeModel"`
	WarrantyPeriod  int      `json:"warrantyPeriod"`
	IsUserError     bool     `json:"isUserError"`
	UserErrorReason string   `json:"userErrorReason"`
}

// Aggregate Root: Analysis (one persisted classification of one photo)
type Analysis struct {
	ID               AnalysisID `json:"id"`
	ImageURL         string     `json:"image_url"`
	OriginalFilename string     `json:"original_filename"`
	Result           Result     `json:"result"`
	UserNotes        string     `json:"user_notes,omitempty"`
	IsApproved       int        `json:"is_approved"`
	ManualOverride   Category   `json:"manual_override,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Effective is the classification used for any reporting purpose:
// the human override when present, otherwise the AI's original value.
func (a *Analysis) Effective() Category {
	if a.ManualOverride != "" {
		return a.ManualOverride
	}
	return a.Result.Classification
}

// DailyStats per-category counts for one day
type DailyStats struct {
	Returnable    int `json:"returnable"`
	NotReturnable int `json:"not_returnable"`
	SendBack      int `json:"send_back"`
	Donation      int `json:"donation"`
	Disposal      int `json:"disposal"`
	Total         int `json:"total"`
}

// Add attributes one record to its effective category.
func (d *DailyStats) Add(c Category) {
	switch c {
	case CategoryReturnable:
		d.Returnable++
	case CategoryNotReturnable:
		d.NotReturnable++
	case CategorySendBack:
		d.SendBack++
	case CategoryDonation:
		d.Donation++
	case CategoryDisposal:
		d.Disposal++
	}
	d.Total++
}
