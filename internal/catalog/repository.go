package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/sqlite"
	"github.com/myrjola/routinegen/internal/vocab"
)

// Repository handles database operations for the catalog and the small
// user-facing tables around it (feedback, goals).
type Repository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// NewRepository creates a SQLite-backed catalog repository.
func NewRepository(db *sqlite.Database, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// UpsertExercises writes catalog rows, replacing existing rows with the same
// identifier. Used by the offline ingest; the serve path never calls it.
func (r *Repository) UpsertExercises(ctx context.Context, exercises []Exercise) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin upsert transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = errors.Join(err, errors.Wrap(rollbackErr, "rollback upsert"))
			}
		}
	}()

	for _, exercise := range exercises {
		muscles, marshalErr := json.Marshal(exercise.Muscles)
		if marshalErr != nil {
			return errors.Wrap(marshalErr, "marshal muscles", slog.Int("exercise_id", exercise.ID))
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO exercises (id, title, standard_title, training_name, description, body_part,
				target_group, fitness_factor, fitness_level, muscles, equipment_tool,
				video_url, video_length_seconds, image_url, image_file_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				title = excluded.title,
				standard_title = excluded.standard_title,
				training_name = excluded.training_name,
				description = excluded.description,
				body_part = excluded.body_part,
				target_group = excluded.target_group,
				fitness_factor = excluded.fitness_factor,
				fitness_level = excluded.fitness_level,
				muscles = excluded.muscles,
				equipment_tool = excluded.equipment_tool,
				video_url = excluded.video_url,
				video_length_seconds = excluded.video_length_seconds,
				image_url = excluded.image_url,
				image_file_name = excluded.image_file_name,
				updated_at = CURRENT_TIMESTAMP`,
			exercise.ID, exercise.Title, exercise.StandardTitle, exercise.TrainingName,
			exercise.Description, exercise.BodyPart, string(exercise.TargetGroup),
			exercise.FitnessFactor, exercise.FitnessLevel, string(muscles), exercise.EquipmentTool,
			exercise.VideoURL, exercise.VideoLengthSeconds, exercise.ImageURL, exercise.ImageFileName,
		); err != nil {
			return errors.Wrap(err, "upsert exercise", slog.Int("exercise_id", exercise.ID))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit upsert transaction")
	}
	return nil
}

// GetExercise retrieves a single exercise by identifier.
func (r *Repository) GetExercise(ctx context.Context, id int) (Exercise, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, title, standard_title, training_name, description, body_part,
			target_group, fitness_factor, fitness_level, muscles, equipment_tool,
			video_url, video_length_seconds, image_url, image_file_name
		FROM exercises
		WHERE id = ?`, id)
	exercise, err := scanExercise(row)
	if err != nil {
		return Exercise{}, errors.Wrap(err, "get exercise", slog.Int("exercise_id", id))
	}
	return exercise, nil
}

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// ListExercises returns a page of the catalog ordered by identifier.
func (r *Repository) ListExercises(ctx context.Context, limit, offset int) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, title, standard_title, training_name, description, body_part,
			target_group, fitness_factor, fitness_level, muscles, equipment_tool,
			video_url, video_length_seconds, image_url, image_file_name
		FROM exercises
		ORDER BY id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "query exercises")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close rows"))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		exercise, scanErr := scanExercise(rows)
		if scanErr != nil {
			return nil, errors.Wrap(scanErr, "scan exercise")
		}
		exercises = append(exercises, exercise)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return exercises, nil
}

// CountExercises returns the number of catalog rows.
func (r *Repository) CountExercises(ctx context.Context) (int, error) {
	var count int
	if err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count exercises")
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner) (Exercise, error) {
	var (
		exercise      Exercise
		standardTitle sql.NullString
		trainingName  sql.NullString
		bodyPart      sql.NullString
		targetGroup   string
		fitnessFactor sql.NullString
		fitnessLevel  sql.NullString
		muscles       string
		equipmentTool sql.NullString
		videoURL      sql.NullString
		videoLength   sql.NullInt64
		imageURL      sql.NullString
		imageFileName sql.NullString
	)
	err := row.Scan(&exercise.ID, &exercise.Title, &standardTitle, &trainingName,
		&exercise.Description, &bodyPart, &targetGroup, &fitnessFactor, &fitnessLevel,
		&muscles, &equipmentTool, &videoURL, &videoLength, &imageURL, &imageFileName)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, errors.Wrap(err, "scan row")
	}
	exercise.StandardTitle = standardTitle.String
	exercise.TrainingName = trainingName.String
	exercise.BodyPart = bodyPart.String
	exercise.TargetGroup = metrics.TargetGroup(targetGroup)
	exercise.FitnessFactor = fitnessFactor.String
	exercise.FitnessLevel = fitnessLevel.String
	exercise.EquipmentTool = equipmentTool.String
	if exercise.EquipmentTool != "" {
		exercise.EquipmentCategory = vocab.EquipmentCategory(exercise.EquipmentTool)
	}
	exercise.VideoURL = videoURL.String
	exercise.VideoLengthSeconds = int(videoLength.Int64)
	exercise.ImageURL = imageURL.String
	exercise.ImageFileName = imageFileName.String
	if err = json.Unmarshal([]byte(muscles), &exercise.Muscles); err != nil {
		return Exercise{}, errors.Wrap(err, "parse muscles column", slog.Int("exercise_id", exercise.ID))
	}
	return exercise, nil
}
