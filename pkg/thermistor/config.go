package thermistor

import "fmt"

// Anchor policy names.
const (
	AnchorBracketing = "bracketing"
	AnchorFixed      = "fixed"
)

// Config selects the calibration table and anchor policy.
type Config struct {
	Table        Curve  `yaml:"table"`
	Anchor       string `yaml:"anchor"`        // "bracketing" (default) or "fixed"
	FixedIndices Window `yaml:"fixed_indices"` // Table indices for the fixed policy
}

// DefaultConfig uses the MF52 table with bracketing anchors.
func DefaultConfig() Config {
	table := make(Curve, len(MF52))
	copy(table, MF52)
	return Config{
		Table:        table,
		Anchor:       AnchorBracketing,
		FixedIndices: Window{10, 11, 12}, // 20, 25 and 30 °C
	}
}

// Policy returns the anchor policy named by the configuration.
func (c Config) Policy() (Policy, error) {
	switch c.Anchor {
	case "", AnchorBracketing:
		return Bracketing{}, nil
	case AnchorFixed:
		return Fixed{Indices: c.FixedIndices}, nil
	default:
		return nil, fmt.Errorf("%w: unknown anchor policy %q", ErrAnchors, c.Anchor)
	}
}

// NewResolver builds a resolver from the configuration.
func (c Config) NewResolver() (*Resolver, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}
	return NewResolver(c.Table, policy)
}
