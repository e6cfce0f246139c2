package suppliers

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Supplier is a company that has sent at least one quote.
type Supplier struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	OrgNumber     string    `json:"orgNumber,omitempty"`
	CategoryTags  []string  `json:"categoryTags"`
	ContactEmail  string    `json:"contactEmail,omitempty"`
	ContactPhone  string    `json:"contactPhone,omitempty"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Contacts holds contact fields to fill on an existing supplier.
type Contacts struct {
	Email  string
	Phone  string
	Person string
}

func (c Contacts) empty() bool {
	return c.Email == "" && c.Phone == "" && c.Person == ""
}

// ListFilter narrows List. Tags match on overlap; Search is a case-insensitive substring of the name.
type ListFilter struct {
	Tags   []string
	Search string
}
