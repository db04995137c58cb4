package routine

import (
	"context"

	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/llm"
	"github.com/myrjola/routinegen/internal/vocab"
)

// assemble builds the final Routine from the draft and the reconciled
// per-day candidates. The draft is never mutated; every slice here is a new
// value. A final vocabulary pass re-normalizes every muscle field, which is a
// no-op for well-formed drafts and a guarantee for everything else.
func (s *Service) assemble(ctx context.Context, draft llm.Draft, expansions []dayExpansion, filters catalog.Filters) Routine {
	routine := Routine{
		Strengths:  draft.Strengths,
		Weaknesses: draft.Weaknesses,
		MuscleBalance: llm.MuscleBalance{
			Overworked:  revalidate(draft.MuscleBalance.Overworked),
			Underworked: revalidate(draft.MuscleBalance.Underworked),
		},
		NextTargetMuscles: revalidate(draft.NextTargetMuscles),
	}

	for i, day := range draft.DailyDetails {
		assembled := Day{
			Day:               day.Day,
			Focus:             day.Focus,
			TargetMuscles:     revalidate(day.TargetMuscles),
			RagQuery:          day.RagQuery,
			EstimatedDuration: day.EstimatedDuration,
			Exercises:         []catalog.Exercise{},
		}
		if i < len(expansions) {
			for _, candidate := range expansions[i].candidates {
				assembled.Exercises = append(assembled.Exercises, candidate.Exercise)
			}
		}
		routine.DailyDetails = append(routine.DailyDetails, assembled)
	}

	routine.NextTargetExercises = s.nextTargetExercises(ctx, routine.NextTargetMuscles, filters)
	routine.RecommendedExercises = flattenIDs(routine.DailyDetails)
	return routine
}

// flattenIDs collects exercise identifiers day-major (days are already
// score-major internally), deduplicated preserving first occurrence.
func flattenIDs(days []Day) []int {
	seen := make(map[int]struct{})
	ids := []int{}
	for _, day := range days {
		for _, exercise := range day.Exercises {
			if _, duplicate := seen[exercise.ID]; duplicate {
				continue
			}
			seen[exercise.ID] = struct{}{}
			ids = append(ids, exercise.ID)
		}
	}
	return ids
}

// revalidate runs labels through normalization once more before emission.
// Normalize is idempotent, so valid labels pass through unchanged.
func revalidate(labels []vocab.Label) []vocab.Label {
	names := make([]string, len(labels))
	for i, label := range labels {
		names[i] = string(label)
	}
	return vocab.Normalize(names)
}
