package model

import "time"

// TransactionLine is one row of imported sales history. OrderDate is the
// zero value when the source column was missing or unparseable.
type TransactionLine struct {
	CustomerID string
	ProductID  string
	Name       string
	Qty        float64
	OrderID    string
	OrderDate  time.Time
}

// CatalogItem is one sellable product. NameNorm is derived once at load time.
type CatalogItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	NameNorm  string `json:"-"`
}

// OrderRecord is one line extracted from an incoming order document.
type OrderRecord struct {
	Code     string `json:"order_itemcode"`
	Desc     string `json:"order_desc"`
	DescNorm string `json:"order_desc_norm"`
	Qty      int    `json:"order_qty"` // >= 1, defaults to 1
}

// Document is a raw order document as delivered by the upstream extraction
// adapter: table cells, page text, or both.
type Document struct {
	Rows  [][]string
	Pages []string
}

// Match methods.
const (
	MethodCode      = "code"
	MethodDescExact = "desc_exact"
	MethodDescFuzzy = "desc_fuzzy"
	MethodNoName    = "no_name"
)

// Match statuses.
const (
	StatusOK       = "OK"
	StatusReview   = "REVIEW"
	StatusNotFound = "NOT_FOUND"
)

type Candidate struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type MatchResult struct {
	Code       string      `json:"order_itemcode"`
	Desc       string      `json:"order_desc"`
	Qty        int         `json:"order_qty"`
	ProductID  string      `json:"matched_itemcode,omitempty"`
	Name       string      `json:"matched_name,omitempty"`
	Confidence float64     `json:"confidence"`
	Method     string      `json:"method"`
	Status     string      `json:"status"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// CustomerStats holds normalized purchase signals for one customer.
// Both maps are keyed by product id and hold values in [0,1].
type CustomerStats struct {
	Frequency map[string]float64
	Recency   map[string]float64
}

// AssociationRule is a co-purchase relationship with ProductA < ProductB.
type AssociationRule struct {
	ProductA     string  `json:"product_a"`
	ProductB     string  `json:"product_b"`
	CoCount      int     `json:"co_count"`
	Support      float64 `json:"support"`
	ConfidenceAB float64 `json:"confidence_ab"`
	ConfidenceBA float64 `json:"confidence_ba"`
	Lift         float64 `json:"lift"`
}

type Recommendation struct {
	CustomerID string   `json:"customer_id"`
	ProductID  string   `json:"product_id"`
	Name       string   `json:"name,omitempty"`
	Qty        int      `json:"predicted_qty,omitempty"`
	Score      float64  `json:"score"`
	Normalized float64  `json:"normalized_score"`
	Reasons    []string `json:"reasons"`
}

// MatchOptions tunes the catalog matcher. Zero values are replaced by the
// defaults below; the two blend weights must sum to 1.
type MatchOptions struct {
	AcceptThreshold float64 `json:"accept_threshold"`
	ReviewThreshold float64 `json:"review_threshold"`
	TopK            int     `json:"top_k"`
	SimWeight       float64 `json:"sim_weight"`
	AffinityWeight  float64 `json:"affinity_weight"`
}

const (
	DefaultAcceptThreshold = 0.70
	DefaultReviewThreshold = 0.50
	DefaultTopK            = 5
	DefaultSimWeight       = 0.35
	DefaultAffinityWeight  = 0.65
)

// WithDefaults fills unset fields and repairs weight pairs that do not sum
// to 1.
func (o MatchOptions) WithDefaults() MatchOptions {
	if o.AcceptThreshold <= 0 {
		o.AcceptThreshold = DefaultAcceptThreshold
	}
	if o.ReviewThreshold <= 0 {
		o.ReviewThreshold = DefaultReviewThreshold
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.SimWeight <= 0 && o.AffinityWeight <= 0 {
		o.SimWeight = DefaultSimWeight
		o.AffinityWeight = DefaultAffinityWeight
	}
	if s := o.SimWeight + o.AffinityWeight; s < 0.999 || s > 1.001 {
		o.SimWeight = DefaultSimWeight
		o.AffinityWeight = DefaultAffinityWeight
	}
	return o
}

// AssocOptions tunes the association miner. ExcludeNameContains drops
// products whose catalog name contains one of the substrings
// (case-insensitive); used to keep freight and fee rows out of the rules.
type AssocOptions struct {
	ExcludeNameContains []string
}

// RecommendOptions tunes the recommendation scorer. A zero ReferenceDate
// means "latest order date in the data"; CadenceDays is the reference gap
// for single-purchase products; MaxPartners caps cross-sell partners per
// source product (0 = no cap).
type RecommendOptions struct {
	ReferenceDate time.Time
	CadenceDays   int
	MaxPartners   int
}

const DefaultCadenceDays = 180
