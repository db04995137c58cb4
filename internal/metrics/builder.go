package metrics

import (
	"sort"
	"strings"

	"github.com/myrjola/routinegen/internal/vocab"
)

const (
	// weekDays is the window metrics are always measured against. Callers
	// that supply fewer journal days still get rest days counted toward a
	// full week.
	weekDays = 7

	bodyPartUpper = "upper"
	bodyPartLower = "lower"
	bodyPartOther = "other"

	topListSize = 5
)

// Build aggregates journal days into WeeklyMetrics. It is a pure function:
// the same logs always produce the same metrics, including the order of the
// top lists.
func Build(logs []LogEntry) WeeklyMetrics {
	m := WeeklyMetrics{
		IntensityCounts: make(map[Intensity]int),
		BodyPartCounts:  make(map[string]int),
		MuscleCounts:    make(map[string]int),
		EquipmentCounts: make(map[vocab.Category]int),
	}
	rawEquipmentCounts := make(map[string]int)

	for _, day := range logs {
		if len(day.Exercises) == 0 {
			continue
		}
		m.ActiveDays++
		for _, exercise := range day.Exercises {
			m.IntensityCounts[exercise.Intensity]++
			m.TotalMinutes += exercise.ExerciseTime
			m.BodyPartCounts[bodyPartOf(exercise)]++
			for _, muscle := range exercise.Muscles {
				key := strings.ToLower(strings.TrimSpace(muscle))
				if key != "" {
					m.MuscleCounts[key]++
				}
			}
			if tool := strings.TrimSpace(exercise.EquipmentTool); tool != "" {
				rawEquipmentCounts[strings.ToLower(tool)]++
				m.EquipmentCounts[vocab.EquipmentCategory(tool)]++
			}
		}
	}

	m.RestDays = max(0, weekDays-m.ActiveDays)
	m.TopMuscles = topKeys(m.MuscleCounts, topListSize)
	m.TopEquipment = topKeys(rawEquipmentCounts, topListSize)
	for _, category := range topKeys(categoryCountsAsStrings(m.EquipmentCounts), topListSize) {
		m.TopEquipmentCategories = append(m.TopEquipmentCategories, vocab.Category(category))
	}
	return m
}

// bodyPartOf uses the logged body part when present and otherwise infers
// upper/lower/other from the exercise title and description.
func bodyPartOf(exercise LogExercise) string {
	if part := strings.ToLower(strings.TrimSpace(exercise.BodyPart)); part != "" {
		return part
	}
	text := strings.ToLower(exercise.Title + " " + exercise.Description)
	for _, keyword := range lowerBodyKeywords {
		if strings.Contains(text, keyword) {
			return bodyPartLower
		}
	}
	for _, keyword := range upperBodyKeywords {
		if strings.Contains(text, keyword) {
			return bodyPartUpper
		}
	}
	return bodyPartOther
}

var upperBodyKeywords = []string{
	"push-up", "push up", "pushup", "pull-up", "pull up", "pullup", "press",
	"bench", "row", "curl", "dip", "chest", "shoulder", "arm", "back", "lat",
	"plank", "crunch", "sit-up", "sit up",
}

var lowerBodyKeywords = []string{
	"squat", "lunge", "deadlift", "leg", "calf", "glute", "hip", "step-up",
	"step up", "run", "jog", "cycling", "jump",
}

// topKeys orders counts descending, breaking ties alphabetically so the
// result is stable, and returns up to k keys.
func topKeys(counts map[string]int, k int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if k < len(keys) {
		keys = keys[:k]
	}
	return keys
}

func categoryCountsAsStrings(counts map[vocab.Category]int) map[string]int {
	out := make(map[string]int, len(counts))
	for category, count := range counts {
		out[string(category)] = count
	}
	return out
}
