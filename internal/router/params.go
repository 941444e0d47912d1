package router

import (
	"dlpgate/internal/core"
	"dlpgate/internal/policy"
)

// strategyParams is the static strategy-to-configuration table. The three
// cloud tiers trade capability for stricter transport guarantees; LocalOnly
// and Rejected resolve to no transport configuration.
var strategyParams = map[core.ProcessingStrategy]core.ModelParams{
	core.StrategyCloudStandard: {
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   2048,
		TopP:        1.0,
	},
	core.StrategyCloudEnterprise: {
		Model:       "gpt-4o",
		Temperature: 0.5,
		MaxTokens:   4096,
		TopP:        0.95,
		Headers: map[string]string{
			"X-Data-Residency": "eu",
		},
	},
	core.StrategyCloudEnterpriseSecure: {
		Model:       "gpt-4o",
		Temperature: 0.2,
		MaxTokens:   2048,
		TopP:        0.9,
		Headers: map[string]string{
			"X-Data-Residency":  "eu",
			"X-Training-Opt-In": "false",
			"X-Retention":       "zero",
		},
	},
}

// Params resolves the provider-call configuration for a cloud strategy,
// applying any per-strategy policy override. A cloud strategy without a
// mapping is a programming defect and returns a routing error rather than
// silently defaulting to the standard tier. LocalOnly and Rejected return a
// routing error as well: they carry no transport configuration and asking
// for one is a caller bug.
func Params(strategy core.ProcessingStrategy, p policy.EnterprisePolicy) (core.ModelParams, error) {
	if !strategy.IsCloud() {
		return core.ModelParams{}, core.NewRoutingError(
			"strategy " + string(strategy) + " has no transport configuration")
	}

	if params, ok := p.StrategyParams[strategy]; ok {
		return params, nil
	}

	params, ok := strategyParams[strategy]
	if !ok {
		return core.ModelParams{}, core.NewRoutingError(
			"no configuration mapped for strategy " + string(strategy))
	}
	return params, nil
}
