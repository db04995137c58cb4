package catalog

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/sqlite"
	"github.com/myrjola/routinegen/internal/testhelpers"
	"github.com/myrjola/routinegen/internal/vocab"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	return NewRepository(db, logger)
}

func TestRepositoryExercises(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	exercises := []Exercise{
		{
			ID:            1,
			Title:         "Barbell Squat",
			Description:   "A compound lower-body lift.",
			TargetGroup:   metrics.TargetGroupAdult,
			FitnessFactor: "muscular strength",
			Muscles:       []string{"quadriceps", "gluteus maximus"},
			EquipmentTool: "Olympic Barbell",
		},
		{
			ID:      2,
			Title:   "Plank",
			Muscles: []string{"rectus abdominis"},
		},
	}
	if err := repository.UpsertExercises(ctx, exercises); err != nil {
		t.Fatalf("UpsertExercises returned error: %v", err)
	}

	got, err := repository.GetExercise(ctx, 1)
	if err != nil {
		t.Fatalf("GetExercise returned error: %v", err)
	}
	if got.Title != "Barbell Squat" || got.TargetGroup != metrics.TargetGroupAdult {
		t.Errorf("GetExercise = %+v, want the inserted row", got)
	}
	if got.EquipmentCategory != vocab.CategoryBarbell {
		t.Errorf("equipment category = %q, want %q", got.EquipmentCategory, vocab.CategoryBarbell)
	}
	if diff := cmp.Diff([]string{"quadriceps", "gluteus maximus"}, got.Muscles); diff != "" {
		t.Errorf("muscles mismatch (-want +got):\n%s", diff)
	}

	// Upserting the same identifier replaces the row instead of duplicating
	// it.
	exercises[0].Title = "Back Squat"
	if err = repository.UpsertExercises(ctx, exercises[:1]); err != nil {
		t.Fatalf("second UpsertExercises returned error: %v", err)
	}
	count, err := repository.CountExercises(ctx)
	if err != nil {
		t.Fatalf("CountExercises returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	got, err = repository.GetExercise(ctx, 1)
	if err != nil {
		t.Fatalf("GetExercise after upsert returned error: %v", err)
	}
	if got.Title != "Back Squat" {
		t.Errorf("title after upsert = %q, want %q", got.Title, "Back Squat")
	}

	listed, err := repository.ListExercises(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ListExercises returned error: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != 2 {
		t.Errorf("ListExercises(1, 1) = %+v, want only exercise 2", listed)
	}

	if _, err = repository.GetExercise(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExercise(999) error = %v, want ErrNotFound", err)
	}
}

func TestRepositoryFeedback(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	first := Feedback{ID: "fb-1", UserID: "user-1", RoutineDigest: "abc123", Rating: 4, Comment: "solid plan"}
	second := Feedback{ID: "fb-2", UserID: "user-1", RoutineDigest: "def456", Rating: 2}
	for _, feedback := range []Feedback{first, second} {
		if err := repository.AddFeedback(ctx, feedback); err != nil {
			t.Fatalf("AddFeedback(%s) returned error: %v", feedback.ID, err)
		}
	}
	if err := repository.AddFeedback(ctx, Feedback{ID: "fb-3", UserID: "user-2", RoutineDigest: "x", Rating: 5}); err != nil {
		t.Fatalf("AddFeedback returned error: %v", err)
	}

	got, err := repository.ListFeedback(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListFeedback returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d feedback rows, want 2", len(got))
	}
	for _, feedback := range got {
		if feedback.UserID != "user-1" {
			t.Errorf("feedback %s belongs to %s, want user-1", feedback.ID, feedback.UserID)
		}
		if feedback.CreatedAt.IsZero() {
			t.Errorf("feedback %s has a zero created_at", feedback.ID)
		}
	}

	// The rating range is enforced by the schema.
	if err = repository.AddFeedback(ctx, Feedback{ID: "fb-4", UserID: "user-1", RoutineDigest: "y", Rating: 6}); err == nil {
		t.Error("AddFeedback accepted an out-of-range rating")
	}
}

func TestRepositoryGoals(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	goal := Goal{ID: "goal-1", UserID: "user-1", Description: "run a 10k", TargetDate: "2025-06-01"}
	if err := repository.AddGoal(ctx, goal); err != nil {
		t.Fatalf("AddGoal returned error: %v", err)
	}
	if err := repository.AddGoal(ctx, Goal{ID: "goal-2", UserID: "user-2", Description: "other user"}); err != nil {
		t.Fatalf("AddGoal returned error: %v", err)
	}

	goals, err := repository.ListGoals(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListGoals returned error: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != "goal-1" || goals[0].Achieved {
		t.Errorf("ListGoals = %+v, want only the unachieved goal-1", goals)
	}

	// Deleting someone else's goal must not succeed.
	if err = repository.DeleteGoal(ctx, "goal-1", "user-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user DeleteGoal error = %v, want ErrNotFound", err)
	}
	if err = repository.DeleteGoal(ctx, "goal-1", "user-1"); err != nil {
		t.Fatalf("DeleteGoal returned error: %v", err)
	}
	if err = repository.DeleteGoal(ctx, "goal-1", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteGoal error = %v, want ErrNotFound", err)
	}
}
