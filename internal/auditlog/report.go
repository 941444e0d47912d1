package auditlog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dlpgate/internal/core"
)

// Report renders a plain-text compliance report for the range. The output is
// stable across runs so reports can be diffed and archived.
func Report(ctx context.Context, r Reader, from, to time.Time) (string, error) {
	metrics, err := r.Metrics(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("failed to aggregate compliance metrics: %w", err)
	}

	return FormatReport(metrics), nil
}

// FormatReport renders an already-computed aggregate.
func FormatReport(m *core.ComplianceMetrics) string {
	var b strings.Builder

	b.WriteString("COMPLIANCE REPORT\n")
	b.WriteString("=================\n")
	fmt.Fprintf(&b, "Range: %s to %s\n\n", formatBound(m.From), formatBound(m.To))

	fmt.Fprintf(&b, "Total events:     %d\n", m.TotalEvents)
	fmt.Fprintf(&b, "Sensitive events: %d (%.1f%%)\n", m.SensitiveEvents, m.SensitivePercent)
	fmt.Fprintf(&b, "Rejected events:  %d\n\n", m.RejectedEvents)

	b.WriteString("By sensitivity level:\n")
	for _, level := range []core.SensitivityLevel{core.LevelPublic, core.LevelInternal, core.LevelConfidential, core.LevelTopSecret} {
		fmt.Fprintf(&b, "  %-14s %d\n", level.String(), m.ByLevel[level])
	}
	b.WriteString("\n")

	b.WriteString("By processing strategy:\n")
	for _, strategy := range core.AllStrategies {
		fmt.Fprintf(&b, "  %-24s %d\n", string(strategy), m.ByStrategy[strategy])
	}
	b.WriteString("\n")

	b.WriteString("Detected data types:\n")
	if len(m.DetectedTypeFrequency) == 0 {
		b.WriteString("  (none)\n")
	} else {
		types := make([]string, 0, len(m.DetectedTypeFrequency))
		for t := range m.DetectedTypeFrequency {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool {
			if m.DetectedTypeFrequency[types[i]] != m.DetectedTypeFrequency[types[j]] {
				return m.DetectedTypeFrequency[types[i]] > m.DetectedTypeFrequency[types[j]]
			}
			return types[i] < types[j]
		})
		for _, t := range types {
			fmt.Fprintf(&b, "  %-16s %d\n", t, m.DetectedTypeFrequency[t])
		}
	}

	return b.String()
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "(open)"
	}
	return t.UTC().Format("2006-01-02")
}
