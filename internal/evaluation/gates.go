package evaluation

import "fmt"

// GateConfig sets the minimum quality bar a golden-query run must clear.
type GateConfig struct {
	MinTopHitRate float64
	MinHitAt5Rate float64
}

// Gates grades an evaluation summary against configured thresholds so a
// regression fails the run instead of silently shipping.
type Gates struct {
	config GateConfig
}

func NewGates(config GateConfig) *Gates {
	return &Gates{config: config}
}

// Check returns one message per violated threshold. An empty slice
// means the run passed.
func (g *Gates) Check(summary *EvalSummary) []string {
	var violations []string
	if summary.TopHitRate < g.config.MinTopHitRate {
		violations = append(violations, fmt.Sprintf(
			"top-hit rate %.3f below minimum %.3f", summary.TopHitRate, g.config.MinTopHitRate))
	}
	if summary.HitAt5Rate < g.config.MinHitAt5Rate {
		violations = append(violations, fmt.Sprintf(
			"hit@5 rate %.3f below minimum %.3f", summary.HitAt5Rate, g.config.MinHitAt5Rate))
	}
	return violations
}
