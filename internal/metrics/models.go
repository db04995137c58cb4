// Package metrics turns raw workout journal days into the weekly summary the
// routine pipeline reasons about.
package metrics

import "github.com/myrjola/routinegen/internal/vocab"

// Intensity is the effort level the user logged for one exercise.
type Intensity string

const (
	IntensityHigh Intensity = "high"
	IntensityMid  Intensity = "mid"
	IntensityLow  Intensity = "low"
)

// TargetGroup is the age cohort an exercise or user belongs to.
type TargetGroup string

const (
	TargetGroupYouth      TargetGroup = "youth"
	TargetGroupAdolescent TargetGroup = "adolescent"
	TargetGroupAdult      TargetGroup = "adult"
	TargetGroupElder      TargetGroup = "elder"
	TargetGroupCommon     TargetGroup = "common"
)

// LogExercise is one logged exercise within a journal day. The referenced
// exercise does not have to exist in the catalog; the fields describe whatever
// the user wrote down.
type LogExercise struct {
	Title         string    `json:"title" validate:"required,max=200"`
	Description   string    `json:"description,omitempty" validate:"max=2000"`
	BodyPart      string    `json:"body_part,omitempty" validate:"max=50"`
	Muscles       []string  `json:"muscles,omitempty"`
	EquipmentTool string    `json:"equipment_tool,omitempty" validate:"max=100"`
	Intensity     Intensity `json:"intensity" validate:"required,oneof=high mid low"`
	ExerciseTime  int       `json:"exercise_time" validate:"min=0,max=1440"`
	ExerciseMemo  string    `json:"exercise_memo,omitempty" validate:"max=2000"`
}

// LogEntry is one journal day.
type LogEntry struct {
	Date      string        `json:"date" validate:"required,datetime=2006-01-02"`
	Memo      string        `json:"memo,omitempty" validate:"max=2000"`
	Exercises []LogExercise `json:"exercises" validate:"dive"`
}

// UserProfile carries the optional user constraints. An empty field means the
// user made no selection and places no constraint on the pipeline.
type UserProfile struct {
	TargetGroup   TargetGroup `json:"target_group,omitempty"`
	FitnessLevel  string      `json:"fitness_level,omitempty"`
	FitnessFactor string      `json:"fitness_factor,omitempty"`
}

// WeeklyMetrics is the aggregate view of up to one week of journal days.
type WeeklyMetrics struct {
	ActiveDays             int                    `json:"active_days"`
	RestDays               int                    `json:"rest_days"`
	TotalMinutes           int                    `json:"total_minutes"`
	IntensityCounts        map[Intensity]int      `json:"intensity_counts"`
	BodyPartCounts         map[string]int         `json:"body_part_counts"`
	MuscleCounts           map[string]int         `json:"muscle_counts"`
	TopMuscles             []string               `json:"top_muscles"`
	TopEquipment           []string               `json:"top_equipment"`
	TopEquipmentCategories []vocab.Category       `json:"top_equipment_categories"`
	EquipmentCounts        map[vocab.Category]int `json:"-"`
}
