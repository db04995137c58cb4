package routine

import (
	"strings"
	"testing"

	"github.com/myrjola/routinegen/internal/metrics"
)

func TestFallbackRecommendations(t *testing.T) {
	t.Run("rests the most worked muscles", func(t *testing.T) {
		weekly := metrics.WeeklyMetrics{
			RestDays:   2,
			TopMuscles: []string{"quadriceps", "hamstring", "calf", "biceps"},
		}
		got := FallbackRecommendations(weekly)
		if len(got) != 3 {
			t.Fatalf("got %d recommendations, want 3", len(got))
		}
		for i, muscle := range []string{"quadriceps", "hamstring", "calf"} {
			if !strings.Contains(got[i], muscle) {
				t.Errorf("recommendation %d = %q, want it to mention %s", i, got[i], muscle)
			}
		}
	})

	t.Run("no rest days earns a rest day nudge", func(t *testing.T) {
		weekly := metrics.WeeklyMetrics{RestDays: 0, TopMuscles: []string{"quadriceps"}}
		got := FallbackRecommendations(weekly)
		found := false
		for _, recommendation := range got {
			if strings.Contains(recommendation, "rest day") {
				found = true
			}
		}
		if !found {
			t.Errorf("recommendations %v never suggest a rest day", got)
		}
	})

	t.Run("empty journal still says something", func(t *testing.T) {
		got := FallbackRecommendations(metrics.WeeklyMetrics{RestDays: 7})
		if len(got) == 0 {
			t.Fatal("no recommendations for an empty journal")
		}
	})
}
