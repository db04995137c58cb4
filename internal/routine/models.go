// Package routine implements the synthesis pipeline: it turns a journal and
// an LLM-sketched plan into a routine whose every exercise is backed by the
// catalog.
package routine

import (
	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/llm"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/vocab"
)

// Day is one routine day with its resolved catalog exercises, ordered by
// descending similarity score.
type Day struct {
	Day               int                `json:"day"`
	Focus             string             `json:"focus"`
	TargetMuscles     []vocab.Label      `json:"target_muscles"`
	RagQuery          string             `json:"rag_query"`
	EstimatedDuration int                `json:"estimated_duration"`
	Exercises         []catalog.Exercise `json:"exercises"`
}

// Routine is the final synthesized plan.
type Routine struct {
	Strengths         string            `json:"strengths"`
	Weaknesses        string            `json:"weaknesses"`
	MuscleBalance     llm.MuscleBalance `json:"muscle_balance"`
	NextTargetMuscles []vocab.Label     `json:"next_target_muscles"`
	DailyDetails      []Day             `json:"daily_details"`
	// NextTargetExercises maps each next-target muscle to a short list of
	// catalog exercise identifiers.
	NextTargetExercises map[string][]int `json:"next_target_exercises"`
	// RecommendedExercises flattens the daily plan day-major, score-major,
	// deduplicated preserving first occurrence.
	RecommendedExercises []int `json:"recommended_exercises"`
}

// Analysis is the single-day journal analysis with catalog-backed follow-up
// exercises per suggested muscle.
type Analysis struct {
	llm.Analysis
	NextTargetExercises map[string][]int `json:"next_target_exercises"`
}

// MuscleAnalysis summarizes the week's muscle balance for the weekly-pattern
// response.
type MuscleAnalysis struct {
	Overworked        []vocab.Label `json:"overworked"`
	Underworked       []vocab.Label `json:"underworked"`
	NextTargetMuscles []vocab.Label `json:"next_target_muscles"`
	Focus             string        `json:"focus"`
}

// WeeklyPatternResult is the full weekly-pattern response payload.
type WeeklyPatternResult struct {
	Result               Routine               `json:"result"`
	MetricsSummary       metrics.WeeklyMetrics `json:"metrics_summary"`
	RecommendedExercises []int                 `json:"recommended_exercises"`
	MuscleAnalysis       MuscleAnalysis        `json:"muscle_analysis"`
}
