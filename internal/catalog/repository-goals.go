package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/routinegen/internal/errors"
)

// Goal is one training goal a user tracks alongside their journal.
type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	TargetDate  string    `json:"target_date,omitempty"`
	Achieved    bool      `json:"achieved"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddGoal stores a goal row. The caller assigns the identifier.
func (r *Repository) AddGoal(ctx context.Context, goal Goal) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, description, target_date, achieved)
		VALUES (?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Description, goal.TargetDate, goal.Achieved,
	); err != nil {
		return errors.Wrap(err, "insert goal", slog.String("goal_id", goal.ID))
	}
	return nil
}

// ListGoals returns a user's goals, oldest first.
func (r *Repository) ListGoals(ctx context.Context, userID string) (_ []Goal, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_id, description, target_date, achieved, created_at
		FROM goals
		WHERE user_id = ?
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query goals")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close rows"))
		}
	}()

	var goals []Goal
	for rows.Next() {
		var goal Goal
		if err = rows.Scan(&goal.ID, &goal.UserID, &goal.Description,
			&goal.TargetDate, &goal.Achieved, &goal.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan goal")
		}
		goals = append(goals, goal)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return goals, nil
}

// DeleteGoal removes a user's goal. Deleting a goal that does not exist or
// belongs to another user returns ErrNotFound.
func (r *Repository) DeleteGoal(ctx context.Context, id, userID string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return errors.Wrap(err, "delete goal", slog.String("goal_id", id))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
