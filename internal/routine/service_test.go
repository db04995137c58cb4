package routine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/llm"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/testhelpers"
	"github.com/myrjola/routinegen/internal/vocab"
)

type stubModeler struct {
	analysis llm.Analysis
	draft    llm.Draft
	err      error
}

func (m *stubModeler) AnalyzeJournal(_ context.Context, _ metrics.LogEntry, _ metrics.UserProfile) (llm.Analysis, error) {
	return m.analysis, m.err
}

func (m *stubModeler) RecommendRoutine(_ context.Context, _ []metrics.LogEntry, _, _ int, _ metrics.UserProfile) (llm.Draft, error) {
	return m.draft, m.err
}

func (m *stubModeler) SketchWeeklyPattern(_ context.Context, _ []metrics.LogEntry, _ metrics.WeeklyMetrics, _ metrics.UserProfile) (llm.Draft, error) {
	return m.draft, m.err
}

type searchCall struct {
	query   string
	k       int
	filters catalog.Filters
}

// stubSearcher answers searches through fn and records every call.
type stubSearcher struct {
	mu    sync.Mutex
	calls []searchCall
	fn    func(query string, k int, filters catalog.Filters) ([]catalog.Candidate, error)
}

func (s *stubSearcher) Search(_ context.Context, query string, k int, filters catalog.Filters) ([]catalog.Candidate, error) {
	s.mu.Lock()
	s.calls = append(s.calls, searchCall{query: query, k: k, filters: filters})
	s.mu.Unlock()
	return s.fn(query, k, filters)
}

func exerciseWith(id int, muscles ...string) catalog.Exercise {
	return catalog.Exercise{ID: id, Title: "exercise", Muscles: muscles}
}

func dayIDs(day Day) []int {
	ids := []int{}
	for _, exercise := range day.Exercises {
		ids = append(ids, exercise.ID)
	}
	return ids
}

func TestRecommendCrossDayDeduplication(t *testing.T) {
	shared := exerciseWith(1, "quadriceps", "hamstring")
	searcher := &stubSearcher{fn: func(query string, _ int, filters catalog.Filters) ([]catalog.Candidate, error) {
		switch {
		case query == "quadriceps strengthening day" && len(filters.ExcludeIDs) == 0:
			return []catalog.Candidate{
				{Exercise: shared, Score: 0.90},
				{Exercise: exerciseWith(2, "quadriceps"), Score: 0.80},
				{Exercise: exerciseWith(3, "quadriceps"), Score: 0.70},
				{Exercise: exerciseWith(4, "quadriceps"), Score: 0.60},
			}, nil
		case query == "hamstring strengthening session":
			return []catalog.Candidate{
				// The shared exercise scores higher here, so it must land on
				// this day after reconciliation.
				{Exercise: shared, Score: 0.95},
				{Exercise: exerciseWith(5, "hamstring"), Score: 0.80},
				{Exercise: exerciseWith(6, "hamstring"), Score: 0.70},
				{Exercise: exerciseWith(7, "hamstring"), Score: 0.60},
			}, nil
		case query == "quadriceps strengthening day" && len(filters.ExcludeIDs) > 0:
			return []catalog.Candidate{
				{Exercise: exerciseWith(8, "quadriceps"), Score: 0.50},
			}, nil
		}
		return nil, nil
	}}
	model := &stubModeler{draft: llm.Draft{
		NextTargetMuscles: []vocab.Label{"calf"},
		DailyDetails: []llm.DayPlan{
			{Day: 1, Focus: "legs", TargetMuscles: []vocab.Label{"quadriceps"},
				RagQuery: "quadriceps strengthening day", EstimatedDuration: 40},
			{Day: 2, Focus: "posterior chain", TargetMuscles: []vocab.Label{"hamstring"},
				RagQuery: "hamstring strengthening session", EstimatedDuration: 40},
		},
	}}
	service := NewService(model, searcher, 0, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	routine, err := service.Recommend(context.Background(), journalFixture(), 2, 2, metrics.UserProfile{})
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}

	if len(routine.DailyDetails) != 2 {
		t.Fatalf("got %d days, want 2", len(routine.DailyDetails))
	}
	// Day 2 keeps the shared exercise; day 1 loses it and is back-filled.
	if diff := cmp.Diff([]int{2, 3, 4, 8}, dayIDs(routine.DailyDetails[0])); diff != "" {
		t.Errorf("day 1 exercises mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 5, 6, 7}, dayIDs(routine.DailyDetails[1])); diff != "" {
		t.Errorf("day 2 exercises mismatch (-want +got):\n%s", diff)
	}

	seen := make(map[int]int)
	for _, day := range routine.DailyDetails {
		for _, exercise := range day.Exercises {
			seen[exercise.ID]++
		}
	}
	for id, count := range seen {
		if count > 1 {
			t.Errorf("exercise %d appears on %d days", id, count)
		}
	}
	if diff := cmp.Diff([]int{2, 3, 4, 8, 1, 5, 6, 7}, routine.RecommendedExercises); diff != "" {
		t.Errorf("recommended exercises mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendSearchFailureLeavesEmptyDays(t *testing.T) {
	searcher := &stubSearcher{fn: func(string, int, catalog.Filters) ([]catalog.Candidate, error) {
		return nil, errors.WithKind(errors.New("embedding service down"), errors.KindEmbeddingUnavailable)
	}}
	model := &stubModeler{draft: llm.Draft{
		Strengths: "steady cardio",
		DailyDetails: []llm.DayPlan{
			{Day: 1, TargetMuscles: []vocab.Label{"quadriceps"}, RagQuery: "quadriceps strengthening"},
		},
	}}
	service := NewService(model, searcher, 0, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	routine, err := service.Recommend(context.Background(), journalFixture(), 1, 1, metrics.UserProfile{})
	if err != nil {
		t.Fatalf("Recommend returned error on search failure, want degraded result: %v", err)
	}
	if routine.Strengths != "steady cardio" {
		t.Errorf("sketch text lost: %q", routine.Strengths)
	}
	if len(routine.DailyDetails) != 1 {
		t.Fatalf("got %d days, want 1", len(routine.DailyDetails))
	}
	if got := routine.DailyDetails[0].Exercises; len(got) != 0 {
		t.Errorf("day has %d exercises, want an empty list", len(got))
	}
	if len(routine.RecommendedExercises) != 0 {
		t.Errorf("recommended exercises = %v, want empty", routine.RecommendedExercises)
	}
}

func TestRecommendModelFailureIsFatal(t *testing.T) {
	wantErr := errors.WithKind(errors.New("model down"), errors.KindChatUnavailable)
	service := NewService(&stubModeler{err: wantErr},
		&stubSearcher{fn: func(string, int, catalog.Filters) ([]catalog.Candidate, error) { return nil, nil }},
		0, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	_, err := service.Recommend(context.Background(), journalFixture(), 1, 1, metrics.UserProfile{})
	if err == nil {
		t.Fatal("Recommend succeeded, want error")
	}
	if kind := errors.KindOf(err); kind != errors.KindChatUnavailable {
		t.Errorf("error kind = %q, want %q", kind, errors.KindChatUnavailable)
	}
}

func TestRecommendDerivesProfileFilters(t *testing.T) {
	searcher := &stubSearcher{fn: func(string, int, catalog.Filters) ([]catalog.Candidate, error) {
		return []catalog.Candidate{
			{Exercise: exerciseWith(1, "quadriceps"), Score: 0.9},
			{Exercise: exerciseWith(2, "quadriceps"), Score: 0.8},
			{Exercise: exerciseWith(3, "quadriceps"), Score: 0.7},
			{Exercise: exerciseWith(4, "quadriceps"), Score: 0.6},
		}, nil
	}}
	model := &stubModeler{draft: llm.Draft{DailyDetails: []llm.DayPlan{
		{Day: 1, TargetMuscles: []vocab.Label{"quadriceps"}, RagQuery: "quadriceps strengthening"},
	}}}
	service := NewService(model, searcher, 0, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	profile := metrics.UserProfile{TargetGroup: metrics.TargetGroupElder, FitnessFactor: "muscular strength"}
	if _, err := service.Recommend(context.Background(), journalFixture(), 1, 1, profile); err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	if len(searcher.calls) == 0 {
		t.Fatal("no searches recorded")
	}
	first := searcher.calls[0]
	wantGroups := []metrics.TargetGroup{metrics.TargetGroupElder, metrics.TargetGroupCommon}
	if diff := cmp.Diff(wantGroups, first.filters.TargetGroupAllowed); diff != "" {
		t.Errorf("target group filter mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"flexibility"}, first.filters.FitnessFactorExcluded); diff != "" {
		t.Errorf("fitness factor filter mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendScrubsSentinelProfileValues(t *testing.T) {
	searcher := &stubSearcher{fn: func(string, int, catalog.Filters) ([]catalog.Candidate, error) {
		return nil, nil
	}}
	model := &stubModeler{draft: llm.Draft{DailyDetails: []llm.DayPlan{
		{Day: 1, TargetMuscles: []vocab.Label{"quadriceps"}, RagQuery: "quadriceps strengthening"},
	}}}
	service := NewService(model, searcher, 0, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	profile := metrics.UserProfile{TargetGroup: "Not Selected", FitnessFactor: "none"}
	if _, err := service.Recommend(context.Background(), journalFixture(), 1, 1, profile); err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	for _, call := range searcher.calls {
		if len(call.filters.TargetGroupAllowed) != 0 || len(call.filters.FitnessFactorExcluded) != 0 {
			t.Errorf("sentinel profile values leaked into filters: %+v", call.filters)
		}
	}
}

func TestAnalyzeResolvesNextTargetExercises(t *testing.T) {
	searcher := &stubSearcher{fn: func(query string, k int, _ catalog.Filters) ([]catalog.Candidate, error) {
		if query == "calf strengthening" && k == nextTargetK {
			return []catalog.Candidate{{Exercise: exerciseWith(9, "calf"), Score: 0.4}}, nil
		}
		return nil, nil
	}}
	model := &stubModeler{analysis: llm.Analysis{
		WorkoutEvaluation: "solid session",
		NextTargetMuscles: []vocab.Label{"calf"},
	}}
	service := NewService(model, searcher, 0, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	analysis, err := service.Analyze(context.Background(), journalFixture()[0], metrics.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if analysis.WorkoutEvaluation != "solid session" {
		t.Errorf("evaluation = %q, want the model's text", analysis.WorkoutEvaluation)
	}
	want := map[string][]int{"calf": {9}}
	if diff := cmp.Diff(want, analysis.NextTargetExercises); diff != "" {
		t.Errorf("next target exercises mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklyPattern(t *testing.T) {
	searcher := &stubSearcher{fn: func(query string, _ int, _ catalog.Filters) ([]catalog.Candidate, error) {
		if query == "quadriceps strengthening" {
			return []catalog.Candidate{
				{Exercise: exerciseWith(1, "quadriceps"), Score: 0.9},
				{Exercise: exerciseWith(2, "quadriceps"), Score: 0.8},
				{Exercise: exerciseWith(3, "quadriceps"), Score: 0.7},
				{Exercise: exerciseWith(4, "quadriceps"), Score: 0.6},
			}, nil
		}
		return nil, nil
	}}
	model := &stubModeler{draft: llm.Draft{
		MuscleBalance: llm.MuscleBalance{
			Overworked:  []vocab.Label{"quadriceps"},
			Underworked: []vocab.Label{"latissimus dorsi"},
		},
		NextTargetMuscles: []vocab.Label{"latissimus dorsi"},
		DailyDetails: []llm.DayPlan{
			{Day: 1, Focus: "legs", TargetMuscles: []vocab.Label{"quadriceps"},
				RagQuery: "quadriceps strengthening", EstimatedDuration: 45},
		},
	}}
	service := NewService(model, searcher, 0, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	result, err := service.WeeklyPattern(context.Background(), journalFixture(), metrics.UserProfile{})
	if err != nil {
		t.Fatalf("WeeklyPattern returned error: %v", err)
	}

	if result.MetricsSummary.ActiveDays+result.MetricsSummary.RestDays != 7 {
		t.Errorf("metrics summary does not cover a week: %+v", result.MetricsSummary)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, result.RecommendedExercises); diff != "" {
		t.Errorf("recommended exercises mismatch (-want +got):\n%s", diff)
	}
	wantAnalysis := MuscleAnalysis{
		Overworked:        []vocab.Label{"quadriceps"},
		Underworked:       []vocab.Label{"latissimus dorsi"},
		NextTargetMuscles: []vocab.Label{"latissimus dorsi"},
		Focus:             "legs",
	}
	if diff := cmp.Diff(wantAnalysis, result.MuscleAnalysis); diff != "" {
		t.Errorf("muscle analysis mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchResultsAreCached(t *testing.T) {
	searcher := &stubSearcher{fn: func(string, int, catalog.Filters) ([]catalog.Candidate, error) {
		return []catalog.Candidate{{Exercise: exerciseWith(9, "calf"), Score: 0.4}}, nil
	}}
	model := &stubModeler{analysis: llm.Analysis{NextTargetMuscles: []vocab.Label{"calf"}}}
	service := NewService(model, searcher, time.Minute, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	for range 2 {
		if _, err := service.Analyze(context.Background(), journalFixture()[0], metrics.UserProfile{}); err != nil {
			t.Fatalf("Analyze returned error: %v", err)
		}
	}

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	if len(searcher.calls) != 1 {
		t.Errorf("searcher called %d times, want 1 (second request served from cache)", len(searcher.calls))
	}
}

func journalFixture() []metrics.LogEntry {
	return []metrics.LogEntry{
		{
			Date: "2025-03-03",
			Exercises: []metrics.LogExercise{
				{Title: "Barbell Squat", Muscles: []string{"quadriceps"},
					Intensity: metrics.IntensityHigh, ExerciseTime: 30},
			},
		},
		{
			Date: "2025-03-05",
			Exercises: []metrics.LogExercise{
				{Title: "Romanian Deadlift", Muscles: []string{"hamstring"},
					Intensity: metrics.IntensityMid, ExerciseTime: 25},
			},
		},
	}
}
