package router

import (
	"errors"
	"testing"

	"dlpgate/internal/core"
	"dlpgate/internal/policy"
)

func TestParams(t *testing.T) {
	p := policy.Default()

	tests := []struct {
		name      string
		strategy  core.ProcessingStrategy
		wantModel string
	}{
		{name: "standard", strategy: core.StrategyCloudStandard, wantModel: "gpt-4o-mini"},
		{name: "enterprise", strategy: core.StrategyCloudEnterprise, wantModel: "gpt-4o"},
		{name: "secure", strategy: core.StrategyCloudEnterpriseSecure, wantModel: "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Params(tt.strategy, p)
			if err != nil {
				t.Fatalf("Params(%s) returned error: %v", tt.strategy, err)
			}
			if got.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", got.Model, tt.wantModel)
			}
			if got.MaxTokens <= 0 {
				t.Errorf("MaxTokens = %d, want > 0", got.MaxTokens)
			}
		})
	}
}

func TestParamsSecureStrategyHeaders(t *testing.T) {
	got, err := Params(core.StrategyCloudEnterpriseSecure, policy.Default())
	if err != nil {
		t.Fatalf("Params returned error: %v", err)
	}

	if got.Temperature > policy.SafeModeTemperatureCeiling {
		t.Errorf("Temperature = %.2f, want <= %.2f", got.Temperature, policy.SafeModeTemperatureCeiling)
	}
	for _, header := range []string{"X-Data-Residency", "X-Training-Opt-In", "X-Retention"} {
		if _, ok := got.Headers[header]; !ok {
			t.Errorf("missing header %s", header)
		}
	}
}

func TestParamsNonCloudStrategies(t *testing.T) {
	for _, strategy := range []core.ProcessingStrategy{core.StrategyLocalOnly, core.StrategyRejected} {
		_, err := Params(strategy, policy.Default())
		if err == nil {
			t.Errorf("Params(%s) = nil error, want routing error", strategy)
			continue
		}

		var screeningErr *core.ScreeningError
		if !errors.As(err, &screeningErr) {
			t.Errorf("Params(%s) error type = %T, want *core.ScreeningError", strategy, err)
			continue
		}
		if screeningErr.Type != core.ErrorTypeRouting {
			t.Errorf("Params(%s) error type = %s, want %s", strategy, screeningErr.Type, core.ErrorTypeRouting)
		}
	}
}

func TestParamsUnknownStrategy(t *testing.T) {
	_, err := Params(core.ProcessingStrategy("made_up"), policy.Default())
	if err == nil {
		t.Fatal("Params(made_up) = nil error, want routing error")
	}
}

func TestParamsPolicyOverride(t *testing.T) {
	p := policy.Default()
	p.StrategyParams = map[core.ProcessingStrategy]core.ModelParams{
		core.StrategyCloudStandard: {
			Model:       "gpt-4o",
			Temperature: 0.1,
			MaxTokens:   1024,
			TopP:        0.8,
		},
	}

	got, err := Params(core.StrategyCloudStandard, p)
	if err != nil {
		t.Fatalf("Params returned error: %v", err)
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 1024 {
		t.Errorf("override not applied, got %+v", got)
	}

	// Strategies without an override still use the static table.
	got, err = Params(core.StrategyCloudEnterprise, p)
	if err != nil {
		t.Fatalf("Params returned error: %v", err)
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 4096 {
		t.Errorf("static table not used for non-overridden strategy, got %+v", got)
	}
}
