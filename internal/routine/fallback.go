package routine

import (
	"fmt"

	"github.com/myrjola/routinegen/internal/metrics"
)

// FallbackRecommendations derives advice from the metrics alone, for error
// envelopes emitted when the language model is unavailable or unrepairable.
// The most worked muscles get rest; everything else gets a generic nudge.
func FallbackRecommendations(weekly metrics.WeeklyMetrics) []string {
	var out []string
	for _, muscle := range weekly.TopMuscles {
		out = append(out, fmt.Sprintf("Give your %s a rest day; it carried most of this week's load.", muscle))
		if len(out) == 3 {
			break
		}
	}
	if weekly.RestDays == 0 {
		out = append(out, "Schedule at least one full rest day next week.")
	}
	if len(out) == 0 {
		out = append(out, "Log a few workouts so we can tailor recommendations to your training.")
	}
	return out
}
