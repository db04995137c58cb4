package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/routine"
	"github.com/myrjola/routinegen/internal/testhelpers"
)

type stubRoutineService struct {
	analysis routine.Analysis
	routine  routine.Routine
	weekly   routine.WeeklyPatternResult
	err      error
}

func (s *stubRoutineService) Analyze(context.Context, metrics.LogEntry, metrics.UserProfile) (routine.Analysis, error) {
	return s.analysis, s.err
}

func (s *stubRoutineService) Recommend(context.Context, []metrics.LogEntry, int, int, metrics.UserProfile) (routine.Routine, error) {
	return s.routine, s.err
}

func (s *stubRoutineService) WeeklyPattern(context.Context, []metrics.LogEntry, metrics.UserProfile) (routine.WeeklyPatternResult, error) {
	return s.weekly, s.err
}

type stubCatalogStore struct {
	exercises map[int]catalog.Exercise
	feedback  []catalog.Feedback
	goals     []catalog.Goal
}

func (s *stubCatalogStore) GetExercise(_ context.Context, id int) (catalog.Exercise, error) {
	exercise, ok := s.exercises[id]
	if !ok {
		return catalog.Exercise{}, catalog.ErrNotFound
	}
	return exercise, nil
}

func (s *stubCatalogStore) ListExercises(context.Context, int, int) ([]catalog.Exercise, error) {
	var out []catalog.Exercise
	for _, exercise := range s.exercises {
		out = append(out, exercise)
	}
	return out, nil
}

func (s *stubCatalogStore) AddFeedback(_ context.Context, feedback catalog.Feedback) error {
	s.feedback = append(s.feedback, feedback)
	return nil
}

func (s *stubCatalogStore) ListGoals(_ context.Context, userID string) ([]catalog.Goal, error) {
	var out []catalog.Goal
	for _, goal := range s.goals {
		if goal.UserID == userID {
			out = append(out, goal)
		}
	}
	return out, nil
}

func (s *stubCatalogStore) AddGoal(_ context.Context, goal catalog.Goal) error {
	s.goals = append(s.goals, goal)
	return nil
}

func (s *stubCatalogStore) DeleteGoal(_ context.Context, id, userID string) error {
	for i, goal := range s.goals {
		if goal.ID == id && goal.UserID == userID {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

func newTestApplication(t *testing.T, routines routineService, store catalogStore) *application {
	t.Helper()
	return &application{
		logger:      testhelpers.NewLogger(testhelpers.NewWriter(t)),
		routines:    routines,
		store:       store,
		validate:    validator.New(),
		catalogRows: 42,
	}
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	for key, value := range header {
		request.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

const validJournalDay = `{"date":"2025-03-03","exercises":[{"title":"Squat","intensity":"high","exercise_time":30}]}`

func TestAnalyzeJournalHandler(t *testing.T) {
	app := newTestApplication(t, &stubRoutineService{
		analysis: routine.Analysis{NextTargetExercises: map[string][]int{"calf": {9}}},
	}, &stubCatalogStore{})
	handler := app.routes()

	t.Run("valid request", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/analyze-journal",
			`{"log":`+validJournalDay+`}`, nil)
		if response.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", response.Code, response.Body.String())
		}
		var got routine.Analysis
		if err := json.Unmarshal(response.Body.Bytes(), &got); err != nil {
			t.Fatalf("response is not an analysis: %v", err)
		}
		if len(got.NextTargetExercises["calf"]) != 1 {
			t.Errorf("next target exercises lost in transit: %+v", got)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/analyze-journal", `{"log":`, nil)
		if response.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", response.Code)
		}
	})

	t.Run("invalid intensity", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/analyze-journal",
			`{"log":{"date":"2025-03-03","exercises":[{"title":"Squat","intensity":"extreme"}]}}`, nil)
		if response.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", response.Code)
		}
		var envelope errorResponse
		if err := json.Unmarshal(response.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("error body is not the envelope: %v", err)
		}
		if envelope.Kind != string(errors.KindInputInvalid) {
			t.Errorf("envelope kind = %q, want %q", envelope.Kind, errors.KindInputInvalid)
		}
	})
}

func TestRecommendRoutineHandlerValidation(t *testing.T) {
	app := newTestApplication(t, &stubRoutineService{}, &stubCatalogStore{})
	handler := app.routes()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "valid request",
			body: `{"logs":[` + validJournalDay + `],"days":3,"frequency":3}`,
			want: http.StatusOK,
		},
		{
			name: "zero days",
			body: `{"logs":[` + validJournalDay + `],"days":0,"frequency":3}`,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "too many days",
			body: `{"logs":[` + validJournalDay + `],"days":15,"frequency":3}`,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "empty journal",
			body: `{"logs":[],"days":3,"frequency":3}`,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "bad date inside journal",
			body: `{"logs":[{"date":"03/03/2025","exercises":[{"title":"Squat","intensity":"high"}]}],"days":3,"frequency":3}`,
			want: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := doJSON(t, handler, http.MethodPost, "/recommend-routine", tt.body, nil)
			if response.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", response.Code, tt.want, response.Body.String())
			}
		})
	}
}

func TestWeeklyPatternHandlerFallback(t *testing.T) {
	app := newTestApplication(t, &stubRoutineService{
		err: errors.WithKind(errors.New("model down"), errors.KindChatUnavailable),
	}, &stubCatalogStore{})
	handler := app.routes()

	response := doJSON(t, handler, http.MethodPost, "/weekly-pattern",
		`{"logs":[`+validJournalDay+`]}`, nil)
	if response.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502; body: %s", response.Code, response.Body.String())
	}
	var envelope errorResponse
	if err := json.Unmarshal(response.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("error body is not the envelope: %v", err)
	}
	if envelope.Kind != string(errors.KindChatUnavailable) {
		t.Errorf("envelope kind = %q, want %q", envelope.Kind, errors.KindChatUnavailable)
	}
	if len(envelope.FallbackRecommendations) == 0 {
		t.Error("envelope carries no fallback recommendations")
	}
}

func TestExerciseHandlers(t *testing.T) {
	store := &stubCatalogStore{exercises: map[int]catalog.Exercise{
		7: {ID: 7, Title: "Deadlift"},
	}}
	app := newTestApplication(t, &stubRoutineService{}, store)
	handler := app.routes()

	t.Run("get by id", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodGet, "/exercises/7", "", nil)
		if response.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", response.Code)
		}
		var got catalog.Exercise
		if err := json.Unmarshal(response.Body.Bytes(), &got); err != nil {
			t.Fatalf("response is not an exercise: %v", err)
		}
		if got.ID != 7 || got.Title != "Deadlift" {
			t.Errorf("got %+v, want exercise 7", got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodGet, "/exercises/999", "", nil)
		if response.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", response.Code)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodGet, "/exercises/abc", "", nil)
		if response.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", response.Code)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodGet, "/exercises?limit=1000", "", nil)
		if response.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", response.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodGet, "/exercises", "", nil)
		if response.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", response.Code)
		}
		var got exerciseListResponse
		if err := json.Unmarshal(response.Body.Bytes(), &got); err != nil {
			t.Fatalf("response is not a list: %v", err)
		}
		if len(got.Exercises) != 1 || got.Limit != defaultPageSize {
			t.Errorf("got %+v, want one exercise under the default limit", got)
		}
	})
}

func TestGoalHandlers(t *testing.T) {
	store := &stubCatalogStore{}
	app := newTestApplication(t, &stubRoutineService{}, store)
	handler := app.routes()
	asUser := map[string]string{"X-User-ID": "user-1"}

	t.Run("missing user header", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/goals",
			`{"description":"run a 10k"}`, nil)
		if response.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", response.Code)
		}
	})

	t.Run("create and list", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/goals",
			`{"description":"run a 10k","target_date":"2025-06-01"}`, asUser)
		if response.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body: %s", response.Code, response.Body.String())
		}
		var created catalog.Goal
		if err := json.Unmarshal(response.Body.Bytes(), &created); err != nil {
			t.Fatalf("response is not a goal: %v", err)
		}
		if created.ID == "" || created.UserID != "user-1" {
			t.Errorf("created goal = %+v, want a generated id for user-1", created)
		}

		response = doJSON(t, handler, http.MethodGet, "/goals", "", asUser)
		if response.Code != http.StatusOK {
			t.Fatalf("list status = %d, want 200", response.Code)
		}
		var listed []catalog.Goal
		if err := json.Unmarshal(response.Body.Bytes(), &listed); err != nil {
			t.Fatalf("list response is not goals: %v", err)
		}
		if len(listed) != 1 {
			t.Fatalf("listed %d goals, want 1", len(listed))
		}

		response = doJSON(t, handler, http.MethodDelete, "/goals/"+created.ID, "", asUser)
		if response.Code != http.StatusNoContent {
			t.Errorf("delete status = %d, want 204", response.Code)
		}
	})

	t.Run("invalid target date", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/goals",
			`{"description":"run a 10k","target_date":"June"}`, asUser)
		if response.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", response.Code)
		}
	})
}

func TestFeedbackHandler(t *testing.T) {
	store := &stubCatalogStore{}
	app := newTestApplication(t, &stubRoutineService{}, store)
	handler := app.routes()
	asUser := map[string]string{"X-User-ID": "user-1"}

	t.Run("valid feedback", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/feedback",
			`{"routine_digest":"abc123","rating":4,"comment":"solid"}`, asUser)
		if response.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body: %s", response.Code, response.Body.String())
		}
		if len(store.feedback) != 1 || store.feedback[0].UserID != "user-1" {
			t.Errorf("stored feedback = %+v, want one row for user-1", store.feedback)
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		response := doJSON(t, handler, http.MethodPost, "/feedback",
			`{"routine_digest":"abc123","rating":6}`, asUser)
		if response.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", response.Code)
		}
	})
}

func TestHealthyHandler(t *testing.T) {
	app := newTestApplication(t, &stubRoutineService{}, &stubCatalogStore{})
	response := doJSON(t, app.routes(), http.MethodGet, "/api/healthy", "", nil)
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", response.Code)
	}
	var got healthyResponse
	if err := json.Unmarshal(response.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not the health payload: %v", err)
	}
	if got.Status != "ok" || got.CatalogRows != 42 {
		t.Errorf("got %+v, want ok with 42 catalog rows", got)
	}
}
