package analysis

import "strings"

// WarrantyEntry maps a brand or model-line token to a warranty in months.
type WarrantyEntry struct {
	Token  string
	Months int
}

// WarrantyTable is an insertion-ordered lookup table. Matching is
// first-match-wins over the enumerated order, not best-match: model-line
// tokens such as "air max" only apply when no earlier brand token matched.
type WarrantyTable []WarrantyEntry

// DefaultWarrantyMonths applies when no token matches or the model is undetermined.
const DefaultWarrantyMonths = 12

// DefaultWarrantyTable is the authoritative brand table. The classifier's
// own warranty guess is discarded whenever one of these tokens matches.
var DefaultWarrantyTable = WarrantyTable{
	{"nike", 24},
	{"adidas", 24},
	{"puma", 12},
	{"reebok", 12},
	{"new balance", 12},
	{"vans", 24},
	{"converse", 24},
	{"skechers", 12},
	{"timberland", 12},
	{"dr. martens", 12},
	{"asics", 12},
	{"under armour", 12},
	{"jordan", 24},
	{"air max", 24},
	{"air force", 24},
	{"stan smith", 24},
	{"superstar", 24},
	{"gazelle", 24},
	{"ultra boost", 24},
	{"nmd", 24},
}

// Resolve maps a detected model string to a warranty period in months.
// Pure and total: unknown brands and the undetermined sentinel fall back
// to the default.
func (t WarrantyTable) Resolve(model string) int {
	if model == "" || model == ModelUndetermined {
		return DefaultWarrantyMonths
	}
	lower := strings.ToLower(model)
	for _, e := range t {
		if strings.Contains(lower, e.Token) {
			return e.Months
		}
	}
	return DefaultWarrantyMonths
}
