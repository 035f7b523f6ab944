package profile

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk profile registry.
type fileSchema struct {
	// IncludeBuiltin keeps the compiled-in channel profiles; file entries
	// with the same name replace them.
	IncludeBuiltin bool           `yaml:"include_builtin"`
	Generic        *profileEntry  `yaml:"generic"`
	Profiles       []profileEntry `yaml:"profiles"`
}

type profileEntry struct {
	Name                string           `yaml:"name"`
	Identifiers         []string         `yaml:"identifiers"`
	Kind                Kind             `yaml:"kind"`
	BaseConfidence      float64          `yaml:"base_confidence"`
	MirrorConsumerPrice bool             `yaml:"mirror_consumer_price"`
	DefaultLabels       *bool            `yaml:"default_labels"`
	DefaultPackaging    bool             `yaml:"default_packaging"`
	PriceLabels         []labelEntry     `yaml:"price_labels"`
	Packaging           []packagingEntry `yaml:"packaging"`
	CategoryHints       []hintEntry      `yaml:"category_hints"`
}

type labelEntry struct {
	Role    PriceRole `yaml:"role"`
	Pattern string    `yaml:"pattern"`
}

type packagingEntry struct {
	Pattern string `yaml:"pattern"`
	Suffix  string `yaml:"suffix"`
}

type hintEntry struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// LoadFile reads a YAML profile file and builds a registry from it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML profile definitions.
func Parse(data []byte) (*Registry, error) {
	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse profile file: %w", err)
	}

	fallback := Generic()
	if schema.Generic != nil {
		schema.Generic.Kind = KindGeneric
		if schema.Generic.Name == "" {
			schema.Generic.Name = fallback.Name
		}
		p, err := schema.Generic.compile()
		if err != nil {
			return nil, err
		}
		fallback = p
	}

	var profiles []Profile
	if schema.IncludeBuiltin {
		profiles = Builtin()
	}

	reg, err := NewRegistry(fallback, profiles...)
	if err != nil {
		return nil, err
	}
	for i := range schema.Profiles {
		p, compileErr := schema.Profiles[i].compile()
		if compileErr != nil {
			return nil, compileErr
		}
		if reg, err = reg.Register(p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (e *profileEntry) compile() (Profile, error) {
	p := Profile{
		Name:                e.Name,
		Identifiers:         e.Identifiers,
		Kind:                e.Kind,
		MirrorConsumerPrice: e.MirrorConsumerPrice,
		BaseConfidence:      e.BaseConfidence,
	}
	if p.Kind == "" {
		p.Kind = KindGeneric
	}
	if p.BaseConfidence == 0 {
		p.BaseConfidence = 0.8
	}

	for _, l := range e.PriceLabels {
		re, err := regexp.Compile(l.Pattern)
		if err != nil {
			return Profile{}, fmt.Errorf("profile %q: price label %q: %w", e.Name, l.Pattern, err)
		}
		p.PriceLabels = append(p.PriceLabels, PriceLabel{Role: l.Role, Pattern: re})
	}
	if e.DefaultLabels == nil || *e.DefaultLabels {
		p.PriceLabels = append(p.PriceLabels, DefaultPriceLabels()...)
	}

	for _, pk := range e.Packaging {
		re, err := regexp.Compile(pk.Pattern)
		if err != nil {
			return Profile{}, fmt.Errorf("profile %q: packaging %q: %w", e.Name, pk.Pattern, err)
		}
		p.Packaging = append(p.Packaging, PackagingPattern{Pattern: re, Suffix: pk.Suffix})
	}
	if e.DefaultPackaging {
		p.Packaging = append(p.Packaging, DefaultPackaging()...)
	}

	for _, h := range e.CategoryHints {
		p.CategoryHints = append(p.CategoryHints, CategoryHint(h))
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
