// Package dedup decides whether an extracted product is new or replaces a
// stored product with the same name in the same channel.
package dedup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
)

const (
	idNameLength   = 20
	idSuffixDigits = 6
	idSuffixModulo = 1_000_000
)

// Action is the store operation for a record.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
)

// Finder looks up a stored product by case-insensitive name and exact
// channel. It returns nil and no error when none exists.
type Finder interface {
	FindByNameAndChannel(ctx context.Context, name, channel string) (*domain.ProductRecord, error)
}

// Decision is what the store should do with Target.
type Decision struct {
	Action Action
	Target domain.ProductRecord
}

// Policy resolves records against the store.
type Policy struct {
	finder Finder
	now    func() time.Time
}

// NewPolicy creates a policy over finder.
func NewPolicy(finder Finder) *Policy {
	return &Policy{finder: finder, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// Resolve returns an insert with a fresh ID, or an update of the matching
// stored record.
func (p *Policy) Resolve(ctx context.Context, rec domain.ProductRecord) (Decision, error) {
	existing, err := p.finder.FindByNameAndChannel(ctx, rec.Name, rec.Channel)
	if err != nil {
		return Decision{}, fmt.Errorf("find product %q: %w", rec.Name, err)
	}

	now := p.now().UTC()
	if existing == nil {
		rec.ID = NewProductID(rec.Name, now)
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if rec.Status == "" {
			rec.Status = domain.StatusImported
		}
		return Decision{Action: ActionInsert, Target: rec}, nil
	}
	return Decision{Action: ActionUpdate, Target: Merge(*existing, rec, now)}, nil
}

// Merge replaces existing with incoming. ID, name and CreatedAt are kept;
// absent incoming values keep the stored ones.
func Merge(existing, incoming domain.ProductRecord, now time.Time) domain.ProductRecord {
	out := existing
	out.UpdatedAt = now

	if incoming.SalePrice > 0 {
		out.SalePrice = incoming.SalePrice
	}
	if incoming.BoxPrice != nil {
		out.BoxPrice = incoming.BoxPrice
	}
	if incoming.UnitPrice != nil {
		out.UnitPrice = incoming.UnitPrice
	}
	switch {
	case incoming.ConsumerPrice != nil:
		out.ConsumerPrice = incoming.ConsumerPrice
	case staleConsumer(out):
		out.ConsumerPrice = nil
	}
	keepString(&out.PriceType, incoming.PriceType)
	keepString(&out.Currency, incoming.Currency)
	keepString(&out.Packaging, incoming.Packaging)
	keepString(&out.Volume, incoming.Volume)
	keepString(&out.Variation, incoming.Variation)
	keepString(&out.StockStatus, incoming.StockStatus)
	keepString(&out.Category, incoming.Category)
	keepString(&out.Description, incoming.Description)
	keepString(&out.Location, incoming.Location)
	keepString(&out.ContactInfo, incoming.ContactInfo)
	keepString(&out.MessageID, incoming.MessageID)

	if incoming.ExtractionConfidence > 0 {
		out.ExtractionConfidence = incoming.ExtractionConfidence
	}
	out.ReviewReason = incoming.ReviewReason
	out.Status = domain.StatusUpdated
	if incoming.Status == domain.StatusNeedsReview {
		out.Status = domain.StatusNeedsReview
	}
	return out
}

// staleConsumer reports a kept consumer price that the new sale price has
// overtaken. Box-priced sales are quoted on another basis and are left alone.
func staleConsumer(rec domain.ProductRecord) bool {
	if rec.ConsumerPrice == nil || rec.SalePrice <= *rec.ConsumerPrice {
		return false
	}
	return rec.BoxPrice == nil || *rec.BoxPrice != rec.SalePrice
}

func keepString[T ~string](dst *T, v T) {
	if v != "" {
		*dst = v
	}
}

// NewProductID builds "<slug>_<last six digits of unix millis>" where the
// slug is the lowercased name with every rune outside [a-z0-9] replaced by
// "_", cut to 20 runes.
func NewProductID(name string, now time.Time) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(name) {
		if n == idNameLength {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}

	suffix := strconv.FormatInt(now.UnixMilli()%idSuffixModulo, 10)
	if pad := idSuffixDigits - len(suffix); pad > 0 {
		suffix = strings.Repeat("0", pad) + suffix
	}
	return b.String() + "_" + suffix
}
