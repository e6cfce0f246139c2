package comparisons

import (
	"errors"
	"time"

	"offertanalys/internal/quotes"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrComparisonFailed covers too few quotes and model output that cannot be decoded.
	ErrComparisonFailed = errors.New("comparison failed")
)

// ComparisonQuote is one supplier's quote as handed to the engine.
type ComparisonQuote struct {
	SupplierName string                `json:"supplier_name"`
	Data         quotes.ExtractedQuote `json:"ai_analysis"`
}

type ScopeDifference struct {
	Supplier          string   `json:"supplier"`
	ExtraCategories   []string `json:"extra_categories"`
	ExtraValue        float64  `json:"extra_value"`
	MissingCategories []string `json:"missing_categories"`
}

type ScopeAnalysis struct {
	CategoriesFound  []string          `json:"categories_found"`
	CommonCategories []string          `json:"common_categories"`
	ScopeDifferences []ScopeDifference `json:"scope_differences"`
	Warning          string            `json:"warning"`
}

// RankingEntry is one supplier's price position. Total is only set by older
// comparisons that predate raw and adjusted totals.
type RankingEntry struct {
	Supplier             string   `json:"supplier"`
	Total                *float64 `json:"total,omitempty"`
	RawTotal             *float64 `json:"raw_total,omitempty"`
	AdjustedTotal        *float64 `json:"adjusted_total,omitempty"`
	AdjustmentDetails    string   `json:"adjustment_details,omitempty"`
	DifferenceFromLowest float64  `json:"difference_from_lowest"`
	PercentDifference    float64  `json:"percent_difference"`
}

type PriceComparison struct {
	Ranking         []RankingEntry `json:"ranking"`
	PriceNotes      string         `json:"price_notes"`
	ComparisonBasis string         `json:"comparison_basis,omitempty"`
}

type SupplierCompliance struct {
	Supplier           string   `json:"supplier"`
	ComplianceScore    float64  `json:"compliance_score"`
	MeetsRequirements  []string `json:"meets_requirements"`
	MissingOrDeviating []string `json:"missing_or_deviating"`
	ExtrasIncluded     []string `json:"extras_included"`
}

type SpecificationCompliance struct {
	PerSupplier []SupplierCompliance `json:"per_supplier"`
}

type SectionComparison struct {
	Summary     string   `json:"summary"`
	Differences []string `json:"differences"`
}

type TermComparison struct {
	Comparison string `json:"comparison"`
}

type TermsComparison struct {
	Payment  TermComparison `json:"payment"`
	Delivery TermComparison `json:"delivery"`
	Warranty TermComparison `json:"warranty"`
}

type DetailedComparison struct {
	Products    SectionComparison `json:"products"`
	Accessories SectionComparison `json:"accessories"`
	Terms       TermsComparison   `json:"terms"`
}

type ProsCons struct {
	Supplier string   `json:"supplier"`
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
}

type Recommendation struct {
	RecommendedSupplier string   `json:"recommended_supplier"`
	Reasoning           string   `json:"reasoning"`
	Caveats             []string `json:"caveats"`
	NegotiationPoints   []string `json:"negotiation_points"`
}

type Question struct {
	Supplier string `json:"supplier"`
	Question string `json:"question"`
}

// ComparisonResult is the structured outcome of comparing quotes.
type ComparisonResult struct {
	Summary                 string                  `json:"summary"`
	ScopeAnalysis           *ScopeAnalysis          `json:"scope_analysis,omitempty"`
	PriceComparison         PriceComparison         `json:"price_comparison"`
	SpecificationCompliance SpecificationCompliance `json:"specification_compliance"`
	DetailedComparison      *DetailedComparison     `json:"detailed_comparison,omitempty"`
	ProsCons                []ProsCons              `json:"pros_cons"`
	Recommendation          Recommendation          `json:"recommendation"`
	QuestionsToClarify      []Question              `json:"questions_to_clarify"`
}

// Comparison is the stored comparison of a category; there is at most one per category.
type Comparison struct {
	ID              string           `json:"id"`
	CategoryID      string           `json:"categoryId"`
	SpecificationID string           `json:"specificationId,omitempty"`
	QuoteIDs        []string         `json:"quoteIds"`
	Result          ComparisonResult `json:"result"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
