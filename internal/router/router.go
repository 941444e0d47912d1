// Package router decides the processing strategy for screened text: which
// cloud tier may receive it, whether it must stay on-premises, or whether it
// is rejected outright under the enterprise policy.
package router

import (
	"dlpgate/internal/core"
	"dlpgate/internal/policy"
)

// Route evaluates the decision matrix for one screened text.
//
// Any structurally detected sensitive datum forces local handling regardless
// of the keyword-only sensitivity score; only keyword-driven levels can reach
// the cloud tiers.
func Route(level core.SensitivityLevel, matchCount int, detectedTypes []string, p policy.EnterprisePolicy) core.RouteDecision {
	requiresLocal := matchCount > 0 ||
		level >= core.LevelConfidential ||
		(level == core.LevelInternal && matchCount > 0)

	if requiresLocal {
		if p.AllowLocalFallback {
			return core.RouteDecision{
				Strategy:  core.StrategyLocalOnly,
				Permitted: true,
			}
		}

		decision := core.RouteDecision{
			Strategy:  core.StrategyRejected,
			Permitted: !p.RejectIfUnsafe,
		}
		if !decision.Permitted {
			decision.RejectionMessage = rejectionMessage(p)
		}
		return decision
	}

	switch level {
	case core.LevelPublic:
		return core.RouteDecision{Strategy: core.StrategyCloudStandard, Permitted: true}
	case core.LevelInternal:
		return core.RouteDecision{Strategy: core.StrategyCloudEnterprise, Permitted: true}
	default:
		// Confidential/TopSecret reached on keyword signal alone.
		return core.RouteDecision{Strategy: core.StrategyCloudEnterpriseSecure, Permitted: true}
	}
}

func rejectionMessage(p policy.EnterprisePolicy) string {
	if p.RejectionMessage != "" {
		return p.RejectionMessage
	}
	return policy.Default().RejectionMessage
}
