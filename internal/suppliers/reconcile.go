package suppliers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ttacon/libphonenumber"

	"offertanalys/internal/quotes"
	"offertanalys/internal/shared/telemetry"
)

const DefaultRegion = "SE"

// Reconciler records suppliers seen on analyzed quotes. Existing suppliers
// only gain contact details they lack; tags and filled fields stay as they are.
type Reconciler struct {
	Repo   Repo
	Region string
	Now    func() time.Time
}

func NewReconciler(repo Repo) *Reconciler {
	return &Reconciler{Repo: repo, Region: DefaultRegion}
}

// Reconcile never fails the caller; problems are logged.
func (r *Reconciler) Reconcile(ctx context.Context, info quotes.SupplierInfo) {
	name := strings.Join(strings.Fields(info.Name), " ")
	if name == "" || r.Repo == nil {
		return
	}
	contacts := Contacts{
		Email:  strings.TrimSpace(info.Email),
		Phone:  NormalizePhone(info.Phone, r.region()),
		Person: strings.TrimSpace(info.ContactPerson),
	}

	now := r.now()
	existing, created, err := r.Repo.FindOrCreate(ctx, Supplier{
		ID:            uuid.NewString(),
		Name:          name,
		OrgNumber:     strings.TrimSpace(info.OrgNumber),
		CategoryTags:  []string{},
		ContactEmail:  contacts.Email,
		ContactPhone:  contacts.Phone,
		ContactPerson: contacts.Person,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		telemetry.Warn("supplier.reconcile_failed", map[string]any{"supplier": name, "error": err})
		return
	}
	if created {
		telemetry.Info("supplier.created", map[string]any{"supplier_id": existing.ID, "supplier": name})
		return
	}
	fill := missingContacts(existing, contacts)
	if fill.empty() {
		return
	}
	if err := r.Repo.FillContacts(ctx, existing.ID, fill, now); err != nil {
		telemetry.Warn("supplier.update_failed", map[string]any{"supplier_id": existing.ID, "error": err})
	}
}

func missingContacts(s Supplier, c Contacts) Contacts {
	var out Contacts
	if s.ContactEmail == "" {
		out.Email = c.Email
	}
	if s.ContactPhone == "" {
		out.Phone = c.Phone
	}
	if s.ContactPerson == "" {
		out.Person = c.Person
	}
	return out
}

// NormalizePhone formats a valid number internationally, e.g. "070-123 45 67"
// becomes "+46 70 123 45 67". Anything it cannot parse is returned trimmed.
func NormalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.INTERNATIONAL)
}

func (r *Reconciler) region() string {
	if r.Region == "" {
		return DefaultRegion
	}
	return r.Region
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

var _ quotes.SupplierReconciler = (*Reconciler)(nil)
