package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/routinegen/internal/errors"
)

// Feedback is one user rating of a generated routine. RoutineDigest ties the
// rating to the routine payload without storing the payload itself.
type Feedback struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	RoutineDigest string    `json:"routine_digest"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AddFeedback stores a feedback row. The caller assigns the identifier.
func (r *Repository) AddFeedback(ctx context.Context, feedback Feedback) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, routine_digest, rating, comment)
		VALUES (?, ?, ?, ?, ?)`,
		feedback.ID, feedback.UserID, feedback.RoutineDigest, feedback.Rating, feedback.Comment,
	); err != nil {
		return errors.Wrap(err, "insert feedback", slog.String("feedback_id", feedback.ID))
	}
	return nil
}

// ListFeedback returns a user's feedback rows, newest first.
func (r *Repository) ListFeedback(ctx context.Context, userID string) (_ []Feedback, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_id, routine_digest, rating, comment, created_at
		FROM feedback
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query feedback")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close rows"))
		}
	}()

	var feedbacks []Feedback
	for rows.Next() {
		var feedback Feedback
		if err = rows.Scan(&feedback.ID, &feedback.UserID, &feedback.RoutineDigest,
			&feedback.Rating, &feedback.Comment, &feedback.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan feedback")
		}
		feedbacks = append(feedbacks, feedback)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return feedbacks, nil
}
