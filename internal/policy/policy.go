// Package policy defines the enterprise processing policy consumed by the
// strategy router: retention rules, per-strategy model parameters, fallback
// and rejection behavior, and audit switches.
//
// A policy is validated once at construction time and treated as immutable
// afterwards. Validation produces a list of human-readable violations rather
// than an error, so the caller decides whether violations are fatal.
package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"dlpgate/internal/core"
)

// Regulatory bounds enforced by Validate.
const (
	// MaxDataRetentionDays is the regulatory cap on content retention.
	MaxDataRetentionDays = 30

	// MinAuditRetentionDays is the regulatory minimum for audit trails.
	MinAuditRetentionDays = 365

	// SafeModeTemperatureCeiling bounds sampling temperature for the
	// secure cloud strategy.
	SafeModeTemperatureCeiling = 0.3
)

// EnterprisePolicy is the validated, immutable configuration the router
// evaluates for every screening decision.
type EnterprisePolicy struct {
	// DataRetentionDays is how long downstream processors may retain
	// content derived from screened requests.
	DataRetentionDays int `yaml:"data_retention_days"`

	// AllowTrainingDataUse permits providers to train on submitted
	// content. Always a violation; present so a misconfigured file is
	// reported rather than silently ignored.
	AllowTrainingDataUse bool `yaml:"allow_training_data_use"`

	// AllowLocalFallback routes content requiring local handling to the
	// on-premises processor instead of rejecting it.
	AllowLocalFallback bool `yaml:"allow_local_fallback"`

	// RejectIfUnsafe blocks content requiring local handling when no
	// local fallback is allowed.
	RejectIfUnsafe bool `yaml:"reject_if_unsafe"`

	// RejectionMessage is surfaced verbatim to the end user when content
	// is not permitted.
	RejectionMessage string `yaml:"rejection_message"`

	// StrategyParams optionally overrides the built-in per-strategy model
	// parameters. Only cloud strategies may carry parameters.
	StrategyParams map[core.ProcessingStrategy]core.ModelParams `yaml:"strategy_params"`

	// Audit switches.
	AuditEnabled       bool `yaml:"audit_enabled"`
	AuditRetentionDays int  `yaml:"audit_retention_days"`
	AlertOnSensitive   bool `yaml:"alert_on_sensitive"`
}

// Default returns a compliant policy: local fallback enabled, auditing on,
// retention within regulatory bounds.
func Default() EnterprisePolicy {
	return EnterprisePolicy{
		DataRetentionDays:  30,
		AllowLocalFallback: true,
		RejectIfUnsafe:     true,
		RejectionMessage:   "El contenido contiene información sensible y no puede ser procesado externamente.",
		AuditEnabled:       true,
		AuditRetentionDays: 730,
		AlertOnSensitive:   true,
	}
}

// Validate checks the policy against the regulatory bounds and returns one
// human-readable string per violation. An empty slice means the policy is
// compliant.
func (p EnterprisePolicy) Validate() []string {
	var violations []string

	if p.DataRetentionDays > MaxDataRetentionDays {
		violations = append(violations, fmt.Sprintf(
			"data retention of %d days exceeds the regulatory cap of %d days",
			p.DataRetentionDays, MaxDataRetentionDays))
	}

	if p.AllowTrainingDataUse {
		violations = append(violations,
			"training-data reuse is enabled; screened content must never be used for model training")
	}

	if params, ok := p.StrategyParams[core.StrategyCloudEnterpriseSecure]; ok {
		if params.Temperature > SafeModeTemperatureCeiling {
			violations = append(violations, fmt.Sprintf(
				"secure strategy temperature %.2f exceeds the safe-mode ceiling of %.2f",
				params.Temperature, SafeModeTemperatureCeiling))
		}
	}

	for strategy := range p.StrategyParams {
		if !strategy.IsCloud() {
			violations = append(violations, fmt.Sprintf(
				"strategy %q carries model parameters but has no cloud transport", strategy))
		}
	}

	if p.AuditEnabled && p.AuditRetentionDays < MinAuditRetentionDays {
		violations = append(violations, fmt.Sprintf(
			"audit retention of %d days is below the regulatory minimum of %d days",
			p.AuditRetentionDays, MinAuditRetentionDays))
	}

	return violations
}

// FromYAML parses a policy document. Parsing errors are returned as errors;
// regulatory violations are the caller's to collect via Validate.
func FromYAML(data []byte) (EnterprisePolicy, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return EnterprisePolicy{}, fmt.Errorf("failed to parse policy document: %w", err)
	}
	return p, nil
}
