// Package catalog holds the exercise catalog: the relational rows, the
// vector index built over them, and the semantic search gateway the routine
// pipeline retrieves candidates through.
package catalog

import (
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/vocab"
)

// Exercise is one catalog item. The catalog is immutable for the lifetime of
// a request; only the offline builder writes it.
type Exercise struct {
	ID                 int                 `json:"exercise_id"`
	Title              string              `json:"title"`
	StandardTitle      string              `json:"standard_title,omitempty"`
	TrainingName       string              `json:"training_name,omitempty"`
	Description        string              `json:"description,omitempty"`
	BodyPart           string              `json:"body_part,omitempty"`
	TargetGroup        metrics.TargetGroup `json:"target_group,omitempty"`
	FitnessFactor      string              `json:"fitness_factor,omitempty"`
	FitnessLevel       string              `json:"fitness_level,omitempty"`
	Muscles            []string            `json:"muscles,omitempty"`
	EquipmentTool      string              `json:"equipment_tool,omitempty"`
	EquipmentCategory  vocab.Category      `json:"equipment_category,omitempty"`
	VideoURL           string              `json:"video_url,omitempty"`
	VideoLengthSeconds int                 `json:"video_length_seconds,omitempty"`
	ImageURL           string              `json:"image_url,omitempty"`
	ImageFileName      string              `json:"image_file_name,omitempty"`
}

// EmbeddingText is the composite the builder embeds for this exercise. Title
// and muscles carry most of the retrieval signal; the description disambiguates
// similarly named movements.
func (e Exercise) EmbeddingText() string {
	text := e.Title
	if e.StandardTitle != "" && e.StandardTitle != e.Title {
		text += " (" + e.StandardTitle + ")"
	}
	for _, muscle := range e.Muscles {
		text += " " + muscle
	}
	if e.EquipmentTool != "" {
		text += " " + e.EquipmentTool
	}
	if e.Description != "" {
		text += " " + e.Description
	}
	return text
}
