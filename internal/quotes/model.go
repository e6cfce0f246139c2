package quotes

import "time"

const (
	StatusPending   = "pending"
	StatusAnalyzed  = "analyzed"
	StatusReceived  = "received"
	StatusReviewing = "reviewing"
	StatusSelected  = "selected"
	StatusRejected  = "rejected"
)

const (
	ItemTypeProduct   = "product"
	ItemTypeAccessory = "accessory"
	ItemTypeService   = "service"
	ItemTypeOption    = "option"
)

const defaultCurrency = "SEK"

// ValidStatus reports whether status is a known quote status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAnalyzed, StatusReceived, StatusReviewing, StatusSelected, StatusRejected:
		return true
	}
	return false
}

// SupplierInfo identifies the supplier as printed on the quote.
type SupplierInfo struct {
	Name          string `json:"name"`
	OrgNumber     string `json:"org_number,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

type QuoteInfo struct {
	QuoteNumber string `json:"quote_number,omitempty"`
	Date        string `json:"date,omitempty"`
	ValidUntil  string `json:"valid_until,omitempty"`
	Reference   string `json:"reference,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

type Terms struct {
	Payment         string   `json:"payment,omitempty"`
	Delivery        string   `json:"delivery,omitempty"`
	Warranty        string   `json:"warranty,omitempty"`
	OtherConditions []string `json:"other_conditions"`
}

type ItemSpecifications struct {
	Type          string         `json:"type,omitempty"`
	Dimensions    string         `json:"dimensions,omitempty"`
	Color         string         `json:"color,omitempty"`
	PressureClass string         `json:"pressure_class,omitempty"`
	Other         map[string]any `json:"other,omitempty"`
}

// LineItem is one priced row of a quote. Zero numeric values mean "not stated".
type LineItem struct {
	Position        string              `json:"position,omitempty"`
	ArticleNumber   string              `json:"article_number,omitempty"`
	Description     string              `json:"description"`
	Quantity        float64             `json:"quantity,omitempty"`
	Unit            string              `json:"unit,omitempty"`
	UnitPrice       float64             `json:"unit_price,omitempty"`
	DiscountPercent float64             `json:"discount_percent,omitempty"`
	Total           float64             `json:"total,omitempty"`
	Type            string              `json:"type,omitempty"`
	Category        string              `json:"category,omitempty"`
	Specifications  *ItemSpecifications `json:"specifications,omitempty"`
}

// Totals are net of VAT once normalized.
type Totals struct {
	Subtotal float64 `json:"subtotal,omitempty"`
	VAT      float64 `json:"vat,omitempty"`
	Total    float64 `json:"total"`
}

// ExtractedQuote is the structured form of a supplier quote.
type ExtractedQuote struct {
	Supplier    SupplierInfo `json:"supplier"`
	QuoteInfo   QuoteInfo    `json:"quote_info"`
	Terms       Terms        `json:"terms"`
	Items       []LineItem   `json:"items"`
	Totals      Totals       `json:"totals"`
	Included    []string     `json:"included"`
	NotIncluded []string     `json:"not_included"`
	Options     []string     `json:"options"`
	Notes       []string     `json:"notes"`
}

// Quote is a persisted supplier quote within a category.
type Quote struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"categoryId"`
	SupplierName   string          `json:"supplierName"`
	QuoteNumber    string          `json:"quoteNumber,omitempty"`
	QuoteDate      string          `json:"quoteDate,omitempty"`
	ValidUntil     string          `json:"validUntil,omitempty"`
	ContactPerson  string          `json:"contactPerson,omitempty"`
	ContactEmail   string          `json:"contactEmail,omitempty"`
	ContactPhone   string          `json:"contactPhone,omitempty"`
	TotalAmount    *float64        `json:"totalAmount,omitempty"`
	Currency       string          `json:"currency"`
	VATIncluded    bool            `json:"vatIncluded"`
	PaymentTerms   string          `json:"paymentTerms,omitempty"`
	DeliveryTerms  string          `json:"deliveryTerms,omitempty"`
	WarrantyPeriod string          `json:"warrantyPeriod,omitempty"`
	FilePath       string          `json:"filePath,omitempty"`
	FileName       string          `json:"fileName,omitempty"`
	ExtractedText  string          `json:"-"`
	AISummary      string          `json:"aiSummary,omitempty"`
	AIAnalysis     *ExtractedQuote `json:"aiAnalysis,omitempty"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	Items          []QuoteItem     `json:"items"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// QuoteItem is a persisted line item.
type QuoteItem struct {
	ID              string              `json:"id"`
	QuoteID         string              `json:"quoteId"`
	Position        string              `json:"position,omitempty"`
	ArticleNumber   string              `json:"articleNumber,omitempty"`
	Description     string              `json:"description"`
	Quantity        *float64            `json:"quantity,omitempty"`
	Unit            string              `json:"unit"`
	UnitPrice       *float64            `json:"unitPrice,omitempty"`
	DiscountPercent *float64            `json:"discountPercent,omitempty"`
	TotalAmount     *float64            `json:"totalAmount,omitempty"`
	ItemType        string              `json:"itemType,omitempty"`
	ProductCategory string              `json:"productCategory,omitempty"`
	Specifications  *ItemSpecifications `json:"specifications,omitempty"`
	SortOrder       int                 `json:"sortOrder"`
}

// AnalysisUpdate carries the fields written when a quote is analyzed.
type AnalysisUpdate struct {
	SupplierName   string
	QuoteNumber    string
	QuoteDate      string
	ValidUntil     string
	ContactPerson  string
	ContactEmail   string
	ContactPhone   string
	TotalAmount    *float64
	PaymentTerms   string
	DeliveryTerms  string
	WarrantyPeriod string
	AISummary      string
	AIAnalysis     ExtractedQuote
	UpdatedAt      time.Time
}

// BatchResult summarizes one AnalyzeBatch run.
type BatchResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}
