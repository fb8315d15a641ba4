package markup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tableFile is the YAML shape of the markup registration table.
//
//	policies:
//	  - id: ng-ndc-ngn
//	    type: percent
//	    rate_bps: 450
//	  - id: global-default
//	    type: flat
//	    amount_minor: 1500
//	rules:
//	  - provider: ndc-aggregator
//	    market: NG
//	    currency: NGN
//	    policy: ng-ndc-ngn
//	  - policy: global-default
type tableFile struct {
	Policies []policySpec `yaml:"policies"`
	Rules    []ruleSpec   `yaml:"rules"`
}

type policySpec struct {
	ID          string       `yaml:"id"`
	Type        string       `yaml:"type"`
	AmountMinor int64        `yaml:"amount_minor"`
	RateBps     int64        `yaml:"rate_bps"`
	Discount    bool         `yaml:"discount"`
	Bands       []bandSpec   `yaml:"bands"`
	Parts       []policySpec `yaml:"parts"`
}

type bandSpec struct {
	UpToMinor int64 `yaml:"up_to_minor"`
	FlatMinor int64 `yaml:"flat_minor"`
	RateBps   int64 `yaml:"rate_bps"`
}

type ruleSpec struct {
	Provider string `yaml:"provider"`
	Market   string `yaml:"market"`
	Currency string `yaml:"currency"`
	Policy   string `yaml:"policy"`
}

// LoadTable reads a YAML registration table and returns a populated selector.
func LoadTable(path string) (*Selector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markup table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable builds a selector from YAML registration-table bytes.
func ParseTable(data []byte) (*Selector, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse markup table: %w", err)
	}

	policies := make(map[string]Policy, len(file.Policies))
	for _, spec := range file.Policies {
		if spec.ID == "" {
			return nil, fmt.Errorf("markup table: policy without id")
		}
		if _, dup := policies[spec.ID]; dup {
			return nil, fmt.Errorf("markup table: duplicate policy id %q", spec.ID)
		}
		policy, err := buildPolicy(spec, false)
		if err != nil {
			return nil, err
		}
		policies[spec.ID] = policy
	}

	selector := NewSelector()
	for _, rule := range file.Rules {
		policy, ok := policies[rule.Policy]
		if !ok {
			return nil, fmt.Errorf("markup table: rule references unknown policy %q", rule.Policy)
		}
		selector.Register(Rule{
			Provider: rule.Provider,
			Market:   rule.Market,
			Currency: rule.Currency,
			Policy:   policy,
		})
	}
	return selector, nil
}

// buildPolicy constructs a policy from its spec. Parts nested inside a
// composite get the discount check relaxed; the composite enforces the
// contract on the combined markup.
func buildPolicy(spec policySpec, insideComposite bool) (Policy, error) {
	allowDiscount := spec.Discount || insideComposite

	switch spec.Type {
	case "flat":
		return FlatPolicy{PolicyID: spec.ID, AmountMinor: spec.AmountMinor, AllowDiscount: allowDiscount}, nil
	case "percent":
		return PercentPolicy{PolicyID: spec.ID, RateBps: spec.RateBps, AllowDiscount: allowDiscount}, nil
	case "tiered":
		if len(spec.Bands) == 0 {
			return nil, fmt.Errorf("markup table: tiered policy %q has no bands", spec.ID)
		}
		bands := make([]Band, 0, len(spec.Bands))
		for _, b := range spec.Bands {
			bands = append(bands, Band{UpToMinor: b.UpToMinor, FlatMinor: b.FlatMinor, RateBps: b.RateBps})
		}
		if bands[len(bands)-1].UpToMinor != 0 {
			return nil, fmt.Errorf("markup table: tiered policy %q must end with an unbounded band", spec.ID)
		}
		return TieredPolicy{PolicyID: spec.ID, Bands: bands, AllowDiscount: allowDiscount}, nil
	case "composite":
		if len(spec.Parts) == 0 {
			return nil, fmt.Errorf("markup table: composite policy %q has no parts", spec.ID)
		}
		parts := make([]Policy, 0, len(spec.Parts))
		for i, partSpec := range spec.Parts {
			if partSpec.ID == "" {
				partSpec.ID = fmt.Sprintf("%s#%d", spec.ID, i)
			}
			part, err := buildPolicy(partSpec, true)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		return CompositePolicy{PolicyID: spec.ID, Parts: parts, AllowDiscount: allowDiscount}, nil
	default:
		return nil, fmt.Errorf("markup table: policy %q has unknown type %q", spec.ID, spec.Type)
	}
}
