package config

import (
	"fmt"
	"strings"
)

const (
	OptimizerFieldAdvance       = "advance"
	OptimizerFieldContentBudget = "contentBudget"

	OptimizerKindBreakEven = "breakEven"
	OptimizerKindVaRFloor  = "varFloor"

	defaultTolerance     = 1.0
	defaultMaxIterations = 50

	// MaxOptimizerIterations caps bisection steps; each step is a full run.
	MaxOptimizerIterations = 100
)

// OptimizerConfig defines a single-parameter optimization directive: find the
// largest value of Field within [Min, Max] whose risk metrics still satisfy
// the constraint named by Kind.
//
// For breakEven, Target is the minimum break-even probability in percent. For
// varFloor, Target is the largest acceptable 5th-percentile loss, as a
// positive amount.
type OptimizerConfig struct {
	Field         string   `yaml:"field,omitempty" mapstructure:"field" json:"field"`
	Kind          string   `yaml:"kind,omitempty" mapstructure:"kind" json:"kind"`
	Target        float64  `yaml:"target" mapstructure:"target" json:"target" validate:"gte=0"`
	Min           *float64 `yaml:"min,omitempty" mapstructure:"min" json:"min,omitempty"`
	Max           *float64 `yaml:"max,omitempty" mapstructure:"max" json:"max,omitempty"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance" json:"tolerance,omitempty" validate:"gte=0"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations" json:"maxIterations,omitempty" validate:"gte=0"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldAdvance
	}
	switch strings.ToLower(trimmed) {
	case "advance":
		return OptimizerFieldAdvance
	case "contentbudget", "content_budget", "content-budget":
		return OptimizerFieldContentBudget
	default:
		return strings.ToLower(trimmed)
	}
}

// CanonicalOptimizerKind returns the canonical identifier for an optimizer kind.
func CanonicalOptimizerKind(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerKindBreakEven
	}
	switch strings.ToLower(trimmed) {
	case "breakeven", "break_even", "break-even":
		return OptimizerKindBreakEven
	case "varfloor", "var_floor", "var-floor", "var95":
		return OptimizerKindVaRFloor
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)
	o.Kind = CanonicalOptimizerKind(o.Kind)
	if o.Tolerance <= 0 {
		o.Tolerance = defaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
	if o.MaxIterations > MaxOptimizerIterations {
		o.MaxIterations = MaxOptimizerIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	switch o.Field {
	case OptimizerFieldAdvance, OptimizerFieldContentBudget:
	default:
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}

	switch o.Kind {
	case OptimizerKindBreakEven:
		if o.Target < 0 || o.Target > 100 {
			return fmt.Errorf("optimizer break-even target %.2f must be between 0 and 100", o.Target)
		}
	case OptimizerKindVaRFloor:
		if o.Target < 0 {
			return fmt.Errorf("optimizer loss target %.2f must not be negative", o.Target)
		}
	default:
		return fmt.Errorf("optimizer kind %q is not supported", o.Kind)
	}

	if o.Min == nil {
		return fmt.Errorf("optimizer requires a minimum bound")
	}
	if o.Max == nil {
		return fmt.Errorf("optimizer requires a maximum bound")
	}
	if *o.Min < 0 {
		return fmt.Errorf("optimizer minimum %.2f must not be negative", *o.Min)
	}
	if *o.Min >= *o.Max {
		return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", *o.Min, *o.Max)
	}

	return nil
}
