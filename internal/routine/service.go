package routine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/llm"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/vocab"
	"golang.org/x/sync/errgroup"
)

const (
	// perDay is how many exercises a synthesized day carries.
	perDay = 4
	// primaryK and simpleK size the progressive search attempts. The simple
	// attempt casts a wider net because its query carries less signal.
	primaryK = 12
	simpleK  = 18
	// nextTargetK sizes the follow-up searches behind next_target_exercises.
	nextTargetK = 3
)

// Searcher is one retrieval round against the catalog.
type Searcher interface {
	Search(ctx context.Context, query string, k int, filters catalog.Filters) ([]catalog.Candidate, error)
}

// Modeler is the LLM surface the pipeline depends on.
type Modeler interface {
	AnalyzeJournal(ctx context.Context, entry metrics.LogEntry, profile metrics.UserProfile) (llm.Analysis, error)
	RecommendRoutine(ctx context.Context, logs []metrics.LogEntry, days, frequency int, profile metrics.UserProfile) (llm.Draft, error)
	SketchWeeklyPattern(ctx context.Context, logs []metrics.LogEntry, weekly metrics.WeeklyMetrics, profile metrics.UserProfile) (llm.Draft, error)
}

// Service is the request-scoped synthesis pipeline. The service itself is
// stateless across requests; the search cache is the only shared state and
// carries its own locking.
type Service struct {
	model    Modeler
	searcher Searcher
	cache    *searchCache
	logger   *slog.Logger
}

// NewService wires the pipeline. cacheTTL bounds the optional external-API
// result cache; zero disables it.
func NewService(model Modeler, searcher Searcher, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		model:    model,
		searcher: searcher,
		cache:    newSearchCache(cacheTTL),
		logger:   logger,
	}
}

// Analyze evaluates one journal day and resolves catalog follow-ups for each
// suggested muscle.
func (s *Service) Analyze(ctx context.Context, entry metrics.LogEntry, profile metrics.UserProfile) (Analysis, error) {
	profile = cleanProfile(profile)
	evaluation, err := s.model.AnalyzeJournal(ctx, entry, profile)
	if err != nil {
		return Analysis{}, errors.Wrap(err, "journal analysis")
	}
	filters := deriveFilters(profile)
	return Analysis{
		Analysis:            evaluation,
		NextTargetExercises: s.nextTargetExercises(ctx, evaluation.NextTargetMuscles, filters),
	}, nil
}

// Recommend synthesizes a routine of the requested length.
func (s *Service) Recommend(ctx context.Context, logs []metrics.LogEntry, days, frequency int, profile metrics.UserProfile) (Routine, error) {
	profile = cleanProfile(profile)
	weekly := metrics.Build(logs)
	draft, err := s.model.RecommendRoutine(ctx, logs, days, frequency, profile)
	if err != nil {
		return Routine{}, errors.Wrap(err, "routine sketch")
	}
	return s.synthesize(ctx, draft, weekly, profile), nil
}

// WeeklyPattern analyzes up to a week of journal days and synthesizes next
// week's routine.
func (s *Service) WeeklyPattern(ctx context.Context, logs []metrics.LogEntry, profile metrics.UserProfile) (WeeklyPatternResult, error) {
	profile = cleanProfile(profile)
	weekly := metrics.Build(logs)
	draft, err := s.model.SketchWeeklyPattern(ctx, logs, weekly, profile)
	if err != nil {
		return WeeklyPatternResult{}, errors.Wrap(err, "weekly pattern sketch")
	}
	routine := s.synthesize(ctx, draft, weekly, profile)
	return WeeklyPatternResult{
		Result:               routine,
		MetricsSummary:       weekly,
		RecommendedExercises: routine.RecommendedExercises,
		MuscleAnalysis: MuscleAnalysis{
			Overworked:        routine.MuscleBalance.Overworked,
			Underworked:       routine.MuscleBalance.Underworked,
			NextTargetMuscles: routine.NextTargetMuscles,
			Focus:             overallFocus(routine.DailyDetails),
		},
	}, nil
}

// dayExpansion is one day's retrieval outcome before cross-day
// reconciliation.
type dayExpansion struct {
	candidates []catalog.Candidate
	query      string
	targets    []vocab.Label
}

// synthesize runs the per-day expansion, cross-day deduplication, back-fill,
// and assembly over a parsed draft. Day-level failures degrade to empty
// exercise lists; only the sketch itself is fatal, and that happened before
// this call.
func (s *Service) synthesize(ctx context.Context, draft llm.Draft, weekly metrics.WeeklyMetrics, profile metrics.UserProfile) Routine {
	filters := deriveFilters(profile)
	preferred := preferredEquipment(weekly)

	expansions := make([]dayExpansion, len(draft.DailyDetails))
	g, gctx := errgroup.WithContext(ctx)
	for i, day := range draft.DailyDetails {
		g.Go(func() error {
			expansions[i] = s.expandDay(gctx, day, draft, filters, preferred)
			return nil
		})
	}
	// Day expansions never return errors; failures leave empty days.
	_ = g.Wait()

	s.reconcile(expansions)
	s.backfill(ctx, expansions, filters)
	return s.assemble(ctx, draft, expansions, filters)
}

// expandDay retrieves up to perDay candidates for one sketched day using
// three progressive search attempts and three filter passes.
func (s *Service) expandDay(ctx context.Context, day llm.DayPlan, draft llm.Draft, filters catalog.Filters, preferred []string) dayExpansion {
	targets := day.TargetMuscles
	if len(targets) == 0 {
		targets = draft.NextTargetMuscles
	}
	if len(targets) == 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "day has no resolvable target muscles",
			slog.Int("day", day.Day))
		return dayExpansion{}
	}
	simpleQuery := string(targets[0]) + " exercise"

	validated, err := validateQuery(day.RagQuery, targets, preferred, true)
	if err != nil {
		validated = simpleQuery
	}

	// Progressive attempts: primary, simple, permissive. Stop at the first
	// attempt that returns anything.
	candidates := s.search(ctx, validated, primaryK, filters)
	if len(candidates) == 0 {
		candidates = s.search(ctx, simpleQuery, simpleK, filters)
	}
	if len(candidates) == 0 {
		if permissive, permErr := validateQuery(day.RagQuery, targets, nil, false); permErr == nil {
			candidates = s.search(ctx, permissive, simpleK, filters)
		}
	}

	chosen := filterPasses(candidates, targets)

	// Recovery: a minimal query with loosened filters, admitting anything
	// not already chosen.
	if len(chosen) < perDay {
		recovered := s.search(ctx, simpleQuery, simpleK, catalog.Filters{
			TargetGroupAllowed: filters.TargetGroupAllowed,
		})
		chosen = appendCandidates(chosen, recovered, perDay)
	}
	return dayExpansion{candidates: chosen, query: validated, targets: targets}
}

// filterPasses applies the strict then broadened muscle-match passes over
// score-ordered candidates, keeping at most perDay.
func filterPasses(candidates []catalog.Candidate, targets []vocab.Label) []catalog.Candidate {
	var chosen []catalog.Candidate
	// Strict: the candidate trains one of the day's target muscles.
	for _, candidate := range candidates {
		if len(chosen) == perDay {
			return chosen
		}
		if matchesAnyTarget(candidate, targets, false) {
			chosen = appendCandidates(chosen, []catalog.Candidate{candidate}, perDay)
		}
	}
	// Broadened: any muscle related to any target through its alias group.
	for _, candidate := range candidates {
		if len(chosen) == perDay {
			return chosen
		}
		if matchesAnyTarget(candidate, targets, true) {
			chosen = appendCandidates(chosen, []catalog.Candidate{candidate}, perDay)
		}
	}
	return chosen
}

func matchesAnyTarget(candidate catalog.Candidate, targets []vocab.Label, broadened bool) bool {
	for _, target := range targets {
		wanted := []vocab.Label{target}
		if broadened {
			wanted = vocab.ExpandAliases(target)
		}
		if vocab.MatchesMuscle(candidate.Exercise.Muscles, wanted) {
			return true
		}
	}
	return false
}

// appendCandidates appends while skipping identifiers already present and
// respecting the limit.
func appendCandidates(chosen, extra []catalog.Candidate, limit int) []catalog.Candidate {
	for _, candidate := range extra {
		if len(chosen) >= limit {
			return chosen
		}
		duplicate := false
		for _, existing := range chosen {
			if existing.Exercise.ID == candidate.Exercise.ID {
				duplicate = true
				break
			}
		}
		if !duplicate {
			chosen = append(chosen, candidate)
		}
	}
	return chosen
}

// reconcile resolves cross-day duplicates: an exercise selected by several
// days stays on the day where it scored highest; on a tie the earlier day
// wins because only a strictly higher score displaces a placement.
func (s *Service) reconcile(expansions []dayExpansion) {
	type placement struct {
		day   int
		score float64
	}
	best := make(map[int]placement)
	for dayIndex, expansion := range expansions {
		for _, candidate := range expansion.candidates {
			current, seen := best[candidate.Exercise.ID]
			if !seen || candidate.Score > current.score {
				best[candidate.Exercise.ID] = placement{day: dayIndex, score: candidate.Score}
			}
		}
	}
	for dayIndex := range expansions {
		kept := expansions[dayIndex].candidates[:0]
		for _, candidate := range expansions[dayIndex].candidates {
			if best[candidate.Exercise.ID].day == dayIndex {
				kept = append(kept, candidate)
			}
		}
		expansions[dayIndex].candidates = kept
	}
}

// backfill refills days that lost candidates to reconciliation with one
// additional search each, excluding every identifier already taken anywhere.
func (s *Service) backfill(ctx context.Context, expansions []dayExpansion, filters catalog.Filters) {
	taken := make([]int, 0, len(expansions)*perDay)
	for _, expansion := range expansions {
		for _, candidate := range expansion.candidates {
			taken = append(taken, candidate.Exercise.ID)
		}
	}
	for dayIndex := range expansions {
		expansion := &expansions[dayIndex]
		missing := perDay - len(expansion.candidates)
		if missing <= 0 || expansion.query == "" {
			continue
		}
		refillFilters := filters
		refillFilters.ExcludeIDs = append([]int(nil), taken...)
		refill := s.search(ctx, expansion.query, simpleK, refillFilters)
		refill = filterPasses(refill, expansion.targets)
		before := len(expansion.candidates)
		expansion.candidates = appendCandidates(expansion.candidates, refill, perDay)
		for _, candidate := range expansion.candidates[before:] {
			taken = append(taken, candidate.Exercise.ID)
		}
	}
}

// search is a cache-backed retrieval round. Failures are non-fatal by policy:
// the round yields nothing and the caller's fallbacks take over.
func (s *Service) search(ctx context.Context, query string, k int, filters catalog.Filters) []catalog.Candidate {
	key := cacheKey(query, k, filters)
	if candidates, ok := s.cache.get(key); ok {
		return candidates
	}
	candidates, err := s.searcher.Search(ctx, query, k, filters)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "search yielded nothing",
			slog.String("query", query), errors.SlogError(err))
		return nil
	}
	s.cache.put(key, candidates)
	return candidates
}

// nextTargetExercises resolves a short exercise list per muscle, with the
// isolated searches fanned out in parallel.
func (s *Service) nextTargetExercises(ctx context.Context, muscles []vocab.Label, filters catalog.Filters) map[string][]int {
	results := make([][]int, len(muscles))
	g, gctx := errgroup.WithContext(ctx)
	for i, muscle := range muscles {
		g.Go(func() error {
			query := fmt.Sprintf("%s strengthening", muscle)
			for _, candidate := range s.search(gctx, query, nextTargetK, filters) {
				results[i] = append(results[i], candidate.Exercise.ID)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string][]int, len(muscles))
	for i, muscle := range muscles {
		out[string(muscle)] = results[i]
	}
	return out
}

// cleanProfile drops sentinel values a client may still send so the rest of
// the pipeline only sees typed optionality.
func cleanProfile(profile metrics.UserProfile) metrics.UserProfile {
	clean := func(s string) string {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "not selected", "none", "unselected":
			return ""
		}
		return strings.TrimSpace(s)
	}
	profile.TargetGroup = metrics.TargetGroup(clean(string(profile.TargetGroup)))
	profile.FitnessLevel = clean(profile.FitnessLevel)
	profile.FitnessFactor = clean(profile.FitnessFactor)
	return profile
}

// deriveFilters maps the profile onto search filters. A strength-focused
// objective excludes flexibility work from retrieval.
func deriveFilters(profile metrics.UserProfile) catalog.Filters {
	var filters catalog.Filters
	switch profile.TargetGroup {
	case "":
	case metrics.TargetGroupCommon:
		filters.TargetGroupAllowed = []metrics.TargetGroup{metrics.TargetGroupCommon}
	default:
		filters.TargetGroupAllowed = []metrics.TargetGroup{profile.TargetGroup, metrics.TargetGroupCommon}
	}
	if strings.Contains(strings.ToLower(profile.FitnessFactor), "strength") {
		filters.FitnessFactorExcluded = []string{"flexibility"}
	}
	return filters
}

// preferredEquipment lists the user's equipment categories for query
// validation, suppressing the catch-all category.
func preferredEquipment(weekly metrics.WeeklyMetrics) []string {
	var out []string
	for _, category := range weekly.TopEquipmentCategories {
		if category == vocab.CategoryOther {
			continue
		}
		out = append(out, string(category))
	}
	return out
}

func overallFocus(days []Day) string {
	for _, day := range days {
		if day.Focus != "" {
			return day.Focus
		}
	}
	return ""
}
