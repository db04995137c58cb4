package catalog

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/vocab"
)

// ReadCSV parses catalog rows from a CSV export. The first record must be a
// header; columns are matched by name so the export's column order does not
// matter. The muscles column holds labels separated by semicolons and is
// normalized against the canonical vocabulary, silently dropping anything
// unresolvable.
func ReadCSV(path string) ([]Exercise, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog csv", slog.String("path", path))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read csv header", slog.String("path", path))
	}
	columns := make(map[string]int, len(headers))
	for i, name := range headers {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["id"]; !ok {
		return nil, errors.New("catalog csv has no id column", slog.String("path", path))
	}
	if _, ok := columns["title"]; !ok {
		return nil, errors.New("catalog csv has no title column", slog.String("path", path))
	}

	var exercises []Exercise
	for line := 2; ; line++ {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, errors.Wrap(readErr, "read csv record", slog.Int("line", line))
		}
		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		id, convErr := strconv.Atoi(field("id"))
		if convErr != nil {
			return nil, errors.Wrap(convErr, "parse exercise id", slog.Int("line", line))
		}
		videoLength := 0
		if raw := field("video_length_seconds"); raw != "" {
			if videoLength, convErr = strconv.Atoi(raw); convErr != nil {
				return nil, errors.Wrap(convErr, "parse video length", slog.Int("line", line))
			}
		}

		var muscles []string
		for _, label := range vocab.Normalize(strings.Split(field("muscles"), ";")) {
			muscles = append(muscles, string(label))
		}

		exercise := Exercise{
			ID:                 id,
			Title:              field("title"),
			StandardTitle:      field("standard_title"),
			TrainingName:       field("training_name"),
			Description:        field("description"),
			BodyPart:           field("body_part"),
			TargetGroup:        metrics.TargetGroup(strings.ToLower(field("target_group"))),
			FitnessFactor:      field("fitness_factor"),
			FitnessLevel:       field("fitness_level"),
			Muscles:            muscles,
			EquipmentTool:      field("equipment_tool"),
			VideoURL:           field("video_url"),
			VideoLengthSeconds: videoLength,
			ImageURL:           field("image_url"),
			ImageFileName:      field("image_file_name"),
		}
		if exercise.EquipmentTool != "" {
			exercise.EquipmentCategory = vocab.EquipmentCategory(exercise.EquipmentTool)
		}
		exercises = append(exercises, exercise)
	}
	return exercises, nil
}
