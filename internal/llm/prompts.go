package llm

import (
	"fmt"
	"strings"

	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/vocab"
)

// The three prompt templates. Each one enumerates the canonical muscle
// vocabulary, pins the exact JSON schema of the response, and bounds the
// length of every free-text field so the token cap is not blown on prose.

const analysisSystemPrompt = `You are a fitness coach analyzing one day of a user's workout journal.

Output ONLY a JSON object with exactly these fields:
- "workout_evaluation": string, 2-3 sentences, max 300 characters, assessing the day's training
- "target_muscles": array of muscle names the logged exercises trained
- "recommendations": array of 2-4 short actionable strings, max 120 characters each
- "next_target_muscles": array of 2-4 muscle names the user should train next
- "encouragement": string, 1-2 sentences, max 200 characters

CRITICAL RULES:
- Use ONLY muscle names from this list, exactly as written: %s
- Never invent muscle names that are not in the list.
- next_target_muscles must favor muscles the journal shows little or no work for.
- Respond with the JSON object only. No markdown, no commentary.`

const routineSystemPrompt = `You are a fitness coach designing a multi-day training routine from a user's workout journal.

Output ONLY a JSON object with exactly these fields:
- "strengths": string, max 300 characters, what the journal shows the user does well
- "weaknesses": string, max 300 characters, what the journal shows is neglected
- "muscle_balance": object with "overworked" and "underworked", each an array of muscle names
- "next_target_muscles": array of 2-4 muscle names to prioritize
- "daily_details": array with one object per training day:
  - "day": integer starting at 1
  - "focus": string, max 80 characters, the day's theme
  - "target_muscles": array of 2-4 muscle names this day trains
  - "rag_query": string, max 200 characters, a natural-language search query naming the day's muscles, preferred equipment, and training intent
  - "estimated_duration": integer, minutes
  - "exercises": array of 3 or more suggested exercise names

CRITICAL RULES:
- Use ONLY muscle names from this list, exactly as written: %s
- Never invent muscle names that are not in the list.
- Produce at least 3 days, each with at least 3 exercises.
- next_target_muscles must not repeat muscles listed in overworked.
- Respond with the JSON object only. No markdown, no commentary.`

const weeklyPatternSystemPrompt = `You are a fitness coach analyzing a week of workout journal days and sketching next week's routine.

Output ONLY a JSON object with exactly these fields:
- "strengths": string, max 300 characters
- "weaknesses": string, max 300 characters
- "muscle_balance": object with "overworked" and "underworked", each an array of muscle names
- "next_target_muscles": array of 2-4 muscle names to prioritize
- "daily_details": array with one object per training day:
  - "day": integer starting at 1
  - "focus": string, max 80 characters
  - "target_muscles": array of 2-4 muscle names this day trains
  - "rag_query": string, max 200 characters, a natural-language search query naming the day's muscles, the user's preferred equipment, and training intent
  - "estimated_duration": integer, minutes
  - "exercises": an EMPTY array []

CRITICAL RULES:
- Use ONLY muscle names from this list, exactly as written: %s
- Never invent muscle names that are not in the list.
- Produce at least 3 days.
- Every "exercises" array MUST be empty. Concrete exercises are filled in from a catalog after your response.
- next_target_muscles must not repeat muscles listed in overworked.
- Respond with the JSON object only. No markdown, no commentary.`

// vocabularyList is the comma-separated canonical vocabulary embedded in
// every system prompt.
func vocabularyList() string {
	labels := vocab.All()
	names := make([]string, len(labels))
	for i, label := range labels {
		names[i] = string(label)
	}
	return strings.Join(names, ", ")
}

// formatJournal renders journal days for the user message. Memos travel
// verbatim: the model reads weights and reps out of free text.
func formatJournal(logs []metrics.LogEntry) string {
	var b strings.Builder
	for _, day := range logs {
		fmt.Fprintf(&b, "Date %s", day.Date)
		if day.Memo != "" {
			fmt.Fprintf(&b, " (memo: %s)", day.Memo)
		}
		b.WriteString(":\n")
		if len(day.Exercises) == 0 {
			b.WriteString("- rest day\n")
			continue
		}
		for _, exercise := range day.Exercises {
			fmt.Fprintf(&b, "- %s, intensity %s, %d min", exercise.Title, exercise.Intensity, exercise.ExerciseTime)
			if len(exercise.Muscles) > 0 {
				fmt.Fprintf(&b, ", muscles: %s", strings.Join(exercise.Muscles, "/"))
			}
			if exercise.EquipmentTool != "" {
				fmt.Fprintf(&b, ", equipment: %s", exercise.EquipmentTool)
			}
			if exercise.ExerciseMemo != "" {
				fmt.Fprintf(&b, " (%s)", exercise.ExerciseMemo)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatProfile renders the user constraints, skipping absent fields.
func formatProfile(profile metrics.UserProfile) string {
	var parts []string
	if profile.TargetGroup != "" {
		parts = append(parts, "age group: "+string(profile.TargetGroup))
	}
	if profile.FitnessLevel != "" {
		parts = append(parts, "fitness level: "+profile.FitnessLevel)
	}
	if profile.FitnessFactor != "" {
		parts = append(parts, "training objective: "+profile.FitnessFactor)
	}
	if len(parts) == 0 {
		return "User profile: not provided.\n"
	}
	return "User profile: " + strings.Join(parts, ", ") + ".\n"
}

// formatMetrics renders the weekly summary, including the equipment profile
// the sketch should keep the routine continuous with.
func formatMetrics(m metrics.WeeklyMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly summary: %d active days, %d rest days, %d total minutes.\n",
		m.ActiveDays, m.RestDays, m.TotalMinutes)
	fmt.Fprintf(&b, "Intensity: high %d, mid %d, low %d.\n",
		m.IntensityCounts[metrics.IntensityHigh],
		m.IntensityCounts[metrics.IntensityMid],
		m.IntensityCounts[metrics.IntensityLow])
	if len(m.TopMuscles) > 0 {
		fmt.Fprintf(&b, "Most trained muscles: %s.\n", strings.Join(m.TopMuscles, ", "))
	}
	if len(m.TopEquipment) > 0 {
		fmt.Fprintf(&b, "Most used equipment: %s.\n", strings.Join(m.TopEquipment, ", "))
	}
	if categories := usableCategories(m.TopEquipmentCategories); len(categories) > 0 {
		fmt.Fprintf(&b, "Preferred equipment categories: %s.\n", strings.Join(categories, ", "))
	}
	return b.String()
}

// usableCategories drops the catch-all category: "other" carries no retrieval
// signal and only pollutes queries.
func usableCategories(categories []vocab.Category) []string {
	var out []string
	for _, category := range categories {
		if category == vocab.CategoryOther {
			continue
		}
		out = append(out, string(category))
	}
	return out
}
