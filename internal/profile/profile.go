// Package profile maps a channel identifier to the parsing strategy used for
// its messages.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind is the segmentation strategy of a profile.
type Kind string

const (
	// KindStructuredBlock channels post one product per blank-line separated
	// block, with labeled price lines.
	KindStructuredBlock Kind = "structured_block"
	// KindStructuredList channels post short "name / : price" pairs.
	KindStructuredList Kind = "structured_list"
	// KindGeneric is the fallback for unknown channels.
	KindGeneric Kind = "generic"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindStructuredBlock, KindStructuredList, KindGeneric:
		return true
	}
	return false
}

// PriceRole says which price a label pattern yields.
type PriceRole string

const (
	RoleBox      PriceRole = "box"
	RoleUnit     PriceRole = "unit"
	RoleConsumer PriceRole = "consumer"
	RoleSale     PriceRole = "sale"
	// RoleGeneric marks "price: N" or "N toman" without a sale/consumer hint.
	RoleGeneric PriceRole = "generic"
)

// Valid reports whether r is a known role.
func (r PriceRole) Valid() bool {
	switch r {
	case RoleBox, RoleUnit, RoleConsumer, RoleSale, RoleGeneric:
		return true
	}
	return false
}

// PriceLabel is a pattern whose first capture group is a price numeral.
type PriceLabel struct {
	Role    PriceRole
	Pattern *regexp.Regexp
}

// PackagingPattern captures a quantity per package. With a Suffix the value
// becomes "<capture> <suffix>", otherwise the whole match.
type PackagingPattern struct {
	Pattern *regexp.Regexp
	Suffix  string
}

// CategoryHint assigns Category when any keyword occurs in the segment.
type CategoryHint struct {
	Category string
	Keywords []string
}

// Profile is one entry of the registry.
type Profile struct {
	Name          string
	Identifiers   []string
	Kind          Kind
	PriceLabels   []PriceLabel
	Packaging     []PackagingPattern
	CategoryHints []CategoryHint
	// MirrorConsumerPrice copies the sale price into an absent consumer price.
	MirrorConsumerPrice bool
	// BaseConfidence is the floor of extraction confidence for this channel.
	BaseConfidence float64
}

// Structured reports whether the profile uses channel-specific segmentation.
func (p Profile) Structured() bool {
	return p.Kind == KindStructuredBlock || p.Kind == KindStructuredList
}

// Validate checks the profile is usable.
func (p Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("profile name is required"))
	}
	if !p.Kind.Valid() {
		errs = append(errs, fmt.Errorf("profile %q: unknown kind %q", p.Name, p.Kind))
	}
	if p.Kind != KindGeneric && len(p.Identifiers) == 0 {
		errs = append(errs, fmt.Errorf("profile %q: at least one identifier is required", p.Name))
	}
	if p.BaseConfidence < 0 || p.BaseConfidence > 1 {
		errs = append(errs, fmt.Errorf("profile %q: base confidence %.2f outside [0,1]", p.Name, p.BaseConfidence))
	}
	for i, l := range p.PriceLabels {
		if !l.Role.Valid() || l.Pattern == nil {
			errs = append(errs, fmt.Errorf("profile %q: price label %d is invalid", p.Name, i))
		} else if l.Pattern.NumSubexp() < 1 {
			errs = append(errs, fmt.Errorf("profile %q: price label %d has no capture group", p.Name, i))
		}
	}
	for i, pk := range p.Packaging {
		if pk.Pattern == nil {
			errs = append(errs, fmt.Errorf("profile %q: packaging pattern %d is nil", p.Name, i))
		} else if pk.Suffix != "" && pk.Pattern.NumSubexp() < 1 {
			errs = append(errs, fmt.Errorf("profile %q: packaging pattern %d has a suffix but no capture group", p.Name, i))
		}
	}
	return errors.Join(errs...)
}

// NormalizeIdentifier lowercases a channel identifier and drops a leading "@".
func NormalizeIdentifier(id string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(id)), "@")
}
