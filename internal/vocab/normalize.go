package vocab

import "strings"

// aliasEntry binds one colloquial gym term to the canonical labels it names.
// Entries live in a slice rather than a map so resolution order is stable.
type aliasEntry struct {
	term   string
	labels []Label
}

var aliases = []aliasEntry{
	{"shoulder", []Label{"deltoid", "anterior deltoid", "lateral deltoid", "posterior deltoid", "rotator cuff"}},
	{"shoulders", []Label{"deltoid", "anterior deltoid", "lateral deltoid", "posterior deltoid", "rotator cuff"}},
	{"delts", []Label{"deltoid", "anterior deltoid", "lateral deltoid", "posterior deltoid"}},
	{"rotator", []Label{"rotator cuff", "supraspinatus", "infraspinatus", "subscapularis"}},
	{"neck", []Label{"sternocleidomastoid", "scalene", "splenius", "levator scapulae"}},
	{"chest", []Label{"pectoralis major", "pectoralis minor", "serratus anterior"}},
	{"pecs", []Label{"pectoralis major", "pectoralis minor"}},
	{"back", []Label{"trapezius", "rhomboid", "latissimus dorsi", "erector spinae", "teres major"}},
	{"upper back", []Label{"trapezius", "upper trapezius", "rhomboid"}},
	{"lower back", []Label{"erector spinae", "multifidus", "quadratus lumborum"}},
	{"lats", []Label{"latissimus dorsi"}},
	{"traps", []Label{"trapezius", "upper trapezius", "lower trapezius"}},
	{"abs", []Label{"rectus abdominis", "external oblique", "internal oblique", "transverse abdominis"}},
	{"abdominals", []Label{"rectus abdominis", "external oblique", "internal oblique", "transverse abdominis"}},
	{"core", []Label{"rectus abdominis", "external oblique", "internal oblique", "transverse abdominis", "erector spinae"}},
	{"stomach", []Label{"rectus abdominis", "external oblique", "internal oblique"}},
	{"obliques", []Label{"external oblique", "internal oblique"}},
	{"waist", []Label{"external oblique", "internal oblique", "quadratus lumborum"}},
	{"arms", []Label{"biceps", "triceps", "brachialis", "brachioradialis"}},
	{"upper arm", []Label{"biceps", "triceps", "brachialis"}},
	{"forearms", []Label{"forearm flexor", "forearm extensor", "brachioradialis"}},
	{"grip", []Label{"wrist flexor", "finger flexor", "forearm flexor"}},
	{"wrist", []Label{"wrist flexor", "wrist extensor"}},
	{"legs", []Label{"quadriceps", "hamstring", "gluteus maximus", "calf"}},
	{"lower body", []Label{"quadriceps", "hamstring", "gluteus maximus", "gluteus medius", "calf"}},
	{"quads", []Label{"quadriceps", "rectus femoris", "vastus lateralis", "vastus medialis", "vastus intermedius"}},
	{"thighs", []Label{"quadriceps", "rectus femoris", "vastus lateralis", "vastus medialis", "hamstring"}},
	{"hamstrings", []Label{"hamstring", "biceps femoris", "semitendinosus", "semimembranosus"}},
	{"glutes", []Label{"gluteus maximus", "gluteus medius", "gluteus minimus"}},
	{"butt", []Label{"gluteus maximus", "gluteus medius", "gluteus minimus"}},
	{"hips", []Label{"iliopsoas", "hip flexor", "gluteus medius", "hip abductor"}},
	{"inner thigh", []Label{"hip adductor", "adductor longus", "adductor magnus", "gracilis"}},
	{"groin", []Label{"hip adductor", "adductor longus", "gracilis"}},
	{"calves", []Label{"calf", "gastrocnemius", "soleus"}},
	{"shin", []Label{"tibialis anterior", "peroneus"}},
	{"ankle", []Label{"tibialis anterior", "peroneus", "soleus"}},
	{"foot", []Label{"toe flexor", "toe extensor"}},
	{"six pack", []Label{"rectus abdominis"}},
	{"midsection", []Label{"rectus abdominis", "external oblique", "internal oblique", "erector spinae"}},
}

// related maps each canonical label to its retrieval expansion: the label
// itself first, then every label it shares an alias group with.
var related = buildRelated()

func buildRelated() map[Label][]Label {
	rel := make(map[Label][]Label, len(muscleLabels))
	for _, entry := range aliases {
		for _, label := range entry.labels {
			group := rel[label]
			if len(group) == 0 {
				group = append(group, label)
			}
			for _, other := range entry.labels {
				if !containsLabel(group, other) {
					group = append(group, other)
				}
			}
			rel[label] = group
		}
	}
	return rel
}

func containsLabel(labels []Label, want Label) bool {
	for _, label := range labels {
		if label == want {
			return true
		}
	}
	return false
}

// Normalize resolves free-text muscle names to canonical labels. Resolution
// tries, in order: exact vocabulary match, alias lookup, substring match in
// either direction against the vocabulary, and finally a word-level match
// against alias terms. Names that resolve to nothing are dropped without
// error. Duplicates are removed while the first-seen order is kept, so the
// function is idempotent on its own output.
func Normalize(names []string) []Label {
	var out []Label
	seen := make(map[Label]struct{}, len(names))
	add := func(labels ...Label) {
		for _, label := range labels {
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	for _, name := range names {
		key := normalizeKey(name)
		if key == "" {
			continue
		}
		if _, ok := labelSet[Label(key)]; ok {
			add(Label(key))
			continue
		}
		if labels, ok := lookupAlias(key); ok {
			add(labels...)
			continue
		}
		if labels := substringMatches(key); len(labels) > 0 {
			add(labels...)
			continue
		}
		add(wordMatches(key)...)
	}
	return out
}

func lookupAlias(key string) ([]Label, bool) {
	for _, entry := range aliases {
		if entry.term == key {
			return entry.labels, true
		}
	}
	return nil, false
}

// substringMatches collects every canonical label that contains the key or is
// contained by it. Keys shorter than three characters are skipped to keep
// fragments like "a" from matching half the vocabulary.
func substringMatches(key string) []Label {
	if len(key) < 3 {
		return nil
	}
	var out []Label
	for _, label := range muscleLabels {
		if strings.Contains(string(label), key) || strings.Contains(key, string(label)) {
			out = append(out, label)
		}
	}
	return out
}

// wordMatches resolves multi-word free text by checking each alias term
// against the key's words. "shoulder press day" resolves through the
// "shoulder" alias even though the full phrase matches nothing.
func wordMatches(key string) []Label {
	words := strings.Fields(key)
	var out []Label
	for _, entry := range aliases {
		if strings.Contains(key, entry.term) || termMatchesWords(entry.term, words) {
			out = append(out, entry.labels...)
		}
	}
	return out
}

func termMatchesWords(term string, words []string) bool {
	for _, word := range words {
		if len(word) >= 3 && strings.Contains(term, word) {
			return true
		}
	}
	return false
}

// ExpandAliases returns the retrieval neighborhood of a label: the label
// itself plus every label that shares a colloquial alias group with it.
// Labels outside every group expand to themselves.
func ExpandAliases(label Label) []Label {
	group, ok := related[label]
	if !ok {
		return []Label{label}
	}
	out := make([]Label, len(group))
	copy(out, group)
	return out
}

// MatchesMuscle reports whether any of an exercise's muscle strings overlaps
// the wanted set, using case-insensitive substring containment in either
// direction. "Latissimus Dorsi" matches "latissimus" and vice versa.
func MatchesMuscle(muscles []string, wanted []Label) bool {
	for _, muscle := range muscles {
		m := normalizeKey(muscle)
		if m == "" {
			continue
		}
		for _, want := range wanted {
			w := string(want)
			if strings.Contains(m, w) || strings.Contains(w, m) {
				return true
			}
		}
	}
	return false
}
