package config

import "testing"

func TestCanonicalOptimizerField(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty defaults to advance", input: "", expected: OptimizerFieldAdvance},
		{name: "advance casing", input: "Advance", expected: OptimizerFieldAdvance},
		{name: "content budget variations", input: "content_budget", expected: OptimizerFieldContentBudget},
		{name: "content budget camel", input: "ContentBudget", expected: OptimizerFieldContentBudget},
		{name: "unknown lowered", input: "Marketing", expected: "marketing"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := CanonicalOptimizerField(tc.input)
			if actual != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestCanonicalOptimizerKind(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", OptimizerKindBreakEven},
		{"break-even", OptimizerKindBreakEven},
		{"VAR95", OptimizerKindVaRFloor},
		{"var_floor", OptimizerKindVaRFloor},
		{"sharpe", "sharpe"},
	}

	for _, tc := range testCases {
		if actual := CanonicalOptimizerKind(tc.input); actual != tc.expected {
			t.Errorf("CanonicalOptimizerKind(%q) = %q, expected %q", tc.input, actual, tc.expected)
		}
	}
}

func TestOptimizerConfigNormalizeDefaults(t *testing.T) {
	cfg := &OptimizerConfig{Field: "CONTENT-BUDGET", Kind: "varfloor"}
	cfg.Normalize()

	if cfg.Field != OptimizerFieldContentBudget {
		t.Fatalf("expected field %q, got %q", OptimizerFieldContentBudget, cfg.Field)
	}
	if cfg.Kind != OptimizerKindVaRFloor {
		t.Fatalf("expected kind %q, got %q", OptimizerKindVaRFloor, cfg.Kind)
	}
	if cfg.Tolerance != defaultTolerance {
		t.Fatalf("expected tolerance %.2f, got %.2f", defaultTolerance, cfg.Tolerance)
	}
	if cfg.MaxIterations != defaultMaxIterations {
		t.Fatalf("expected max iterations %d, got %d", defaultMaxIterations, cfg.MaxIterations)
	}

	var nilCfg *OptimizerConfig
	nilCfg.Normalize()
}

func TestOptimizerConfigNormalizeCapsIterations(t *testing.T) {
	cfg := &OptimizerConfig{Field: "advance", Kind: "breakeven", MaxIterations: 1000000000}
	cfg.Normalize()

	if cfg.MaxIterations != MaxOptimizerIterations {
		t.Fatalf("expected max iterations capped at %d, got %d", MaxOptimizerIterations, cfg.MaxIterations)
	}
}

func TestOptimizerConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *OptimizerConfig
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "valid break-even", cfg: &OptimizerConfig{Target: 50, Min: floatPtr(0), Max: floatPtr(1000)}},
		{name: "valid var floor", cfg: &OptimizerConfig{Kind: "varFloor", Field: "contentBudget", Target: 20000, Min: floatPtr(0), Max: floatPtr(1000)}},
		{name: "unsupported field", cfg: &OptimizerConfig{Field: "marketing", Min: floatPtr(0), Max: floatPtr(1)}, wantErr: true},
		{name: "unsupported kind", cfg: &OptimizerConfig{Kind: "sharpe", Min: floatPtr(0), Max: floatPtr(1)}, wantErr: true},
		{name: "break-even above 100", cfg: &OptimizerConfig{Target: 101, Min: floatPtr(0), Max: floatPtr(1)}, wantErr: true},
		{name: "negative loss target", cfg: &OptimizerConfig{Kind: "varFloor", Target: -1, Min: floatPtr(0), Max: floatPtr(1)}, wantErr: true},
		{name: "missing min", cfg: &OptimizerConfig{Max: floatPtr(1)}, wantErr: true},
		{name: "missing max", cfg: &OptimizerConfig{Min: floatPtr(0)}, wantErr: true},
		{name: "negative min", cfg: &OptimizerConfig{Min: floatPtr(-1), Max: floatPtr(1)}, wantErr: true},
		{name: "inverted bounds", cfg: &OptimizerConfig{Min: floatPtr(5), Max: floatPtr(1)}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error but got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func floatPtr(value float64) *float64 {
	return &value
}
