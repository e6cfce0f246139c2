package suppliers

import (
	"context"
	"time"
)

type Repo interface {
	// FindByName matches name case-insensitively.
	FindByName(ctx context.Context, name string) (Supplier, error)
	// FindOrCreate stores s unless a supplier with the same name exists, in
	// which case that supplier is returned and created is false.
	FindOrCreate(ctx context.Context, s Supplier) (stored Supplier, created bool, err error)
	// FillContacts sets only the contact fields that are currently empty.
	FillContacts(ctx context.Context, id string, c Contacts, at time.Time) error
	List(ctx context.Context, f ListFilter) ([]Supplier, error)
}
