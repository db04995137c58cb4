package routine

import (
	"log/slog"
	"strings"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/vocab"
)

const (
	minQueryLength = 3
	maxQueryLength = 200
)

// errQueryUnusable marks an LLM query too degenerate to repair by appending.
var errQueryUnusable = errors.NewSentinel("query unusable")

// validateQuery guarantees a retrieval query cannot be defeated by a vague
// model: after validation it names at least one target muscle, carries a
// training-intent keyword, and, when equipment is enforced and the user has a
// preference, mentions equipment. The model composes the query; this only
// appends what is missing.
func validateQuery(query string, targets []vocab.Label, preferredEquipment []string, enforceEquipment bool) (string, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return "", errors.Wrap(errQueryUnusable, "query too short", slog.String("query", query))
	}
	if len(query) > maxQueryLength {
		query = strings.TrimSpace(query[:maxQueryLength])
	}

	lower := strings.ToLower(query)
	if len(targets) > 0 && !mentionsAnyMuscle(lower, targets) {
		query += " " + string(targets[0])
		lower = strings.ToLower(query)
	}
	if enforceEquipment && len(preferredEquipment) > 0 && !vocab.ContainsEquipmentTerm(lower, preferredEquipment) {
		query += " " + preferredEquipment[0]
		lower = strings.ToLower(query)
	}
	if !vocab.ContainsIntentKeyword(lower) {
		query += " " + vocab.DefaultIntentKeyword()
	}
	return query, nil
}

// mentionsAnyMuscle reports whether the query already names a target muscle,
// directly or through one of its aliases.
func mentionsAnyMuscle(lowerQuery string, targets []vocab.Label) bool {
	for _, target := range targets {
		for _, related := range vocab.ExpandAliases(target) {
			if strings.Contains(lowerQuery, string(related)) {
				return true
			}
		}
		if strings.Contains(lowerQuery, string(target)) {
			return true
		}
	}
	return false
}
