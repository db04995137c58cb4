// Package llm wraps the chat-completion service: prompt assembly, strict-JSON
// parsing with truncation repair, and vocabulary validation of everything the
// model says about muscles.
package llm

import (
	"github.com/myrjola/routinegen/internal/vocab"
)

// Analysis is the model's evaluation of a single journal day.
type Analysis struct {
	WorkoutEvaluation string        `json:"workout_evaluation"`
	TargetMuscles     []vocab.Label `json:"target_muscles"`
	Recommendations   []string      `json:"recommendations"`
	NextTargetMuscles []vocab.Label `json:"next_target_muscles"`
	Encouragement     string        `json:"encouragement"`
}

// MuscleBalance names what the user trains too much and too little.
type MuscleBalance struct {
	Overworked  []vocab.Label `json:"overworked"`
	Underworked []vocab.Label `json:"underworked"`
}

// DayPlan is one sketched day: target muscles and a retrieval query, but no
// concrete exercises. The orchestrator fills those from the catalog.
type DayPlan struct {
	Day               int           `json:"day"`
	Focus             string        `json:"focus"`
	TargetMuscles     []vocab.Label `json:"target_muscles"`
	RagQuery          string        `json:"rag_query"`
	EstimatedDuration int           `json:"estimated_duration"`
}

// Draft is the model's first-pass plan. Every muscle field has already been
// normalized against the canonical vocabulary; out-of-vocabulary labels were
// dropped.
type Draft struct {
	Strengths         string        `json:"strengths"`
	Weaknesses        string        `json:"weaknesses"`
	MuscleBalance     MuscleBalance `json:"muscle_balance"`
	NextTargetMuscles []vocab.Label `json:"next_target_muscles"`
	DailyDetails      []DayPlan     `json:"daily_details"`
}

// analysisPayload mirrors the analysis response schema before vocabulary
// normalization.
type analysisPayload struct {
	WorkoutEvaluation string   `json:"workout_evaluation"`
	TargetMuscles     []string `json:"target_muscles"`
	Recommendations   []string `json:"recommendations"`
	NextTargetMuscles []string `json:"next_target_muscles"`
	Encouragement     string   `json:"encouragement"`
}

// draftPayload mirrors the routine response schema before normalization. The
// per-day exercises arrays are deliberately dropped: the pipeline only admits
// catalog-backed exercises, so whatever the model put there is discarded.
type draftPayload struct {
	Strengths     string `json:"strengths"`
	Weaknesses    string `json:"weaknesses"`
	MuscleBalance struct {
		Overworked  []string `json:"overworked"`
		Underworked []string `json:"underworked"`
	} `json:"muscle_balance"`
	NextTargetMuscles []string `json:"next_target_muscles"`
	DailyDetails      []struct {
		Day               int      `json:"day"`
		Focus             string   `json:"focus"`
		TargetMuscles     []string `json:"target_muscles"`
		RagQuery          string   `json:"rag_query"`
		EstimatedDuration int      `json:"estimated_duration"`
	} `json:"daily_details"`
}

func (p analysisPayload) normalize() Analysis {
	return Analysis{
		WorkoutEvaluation: p.WorkoutEvaluation,
		TargetMuscles:     vocab.Normalize(p.TargetMuscles),
		Recommendations:   p.Recommendations,
		NextTargetMuscles: vocab.Normalize(p.NextTargetMuscles),
		Encouragement:     p.Encouragement,
	}
}

func (p draftPayload) normalize() Draft {
	draft := Draft{
		Strengths:  p.Strengths,
		Weaknesses: p.Weaknesses,
		MuscleBalance: MuscleBalance{
			Overworked:  vocab.Normalize(p.MuscleBalance.Overworked),
			Underworked: vocab.Normalize(p.MuscleBalance.Underworked),
		},
		NextTargetMuscles: vocab.Normalize(p.NextTargetMuscles),
	}
	for i, day := range p.DailyDetails {
		number := day.Day
		if number == 0 {
			number = i + 1
		}
		draft.DailyDetails = append(draft.DailyDetails, DayPlan{
			Day:               number,
			Focus:             day.Focus,
			TargetMuscles:     vocab.Normalize(day.TargetMuscles),
			RagQuery:          day.RagQuery,
			EstimatedDuration: day.EstimatedDuration,
		})
	}
	return draft
}
