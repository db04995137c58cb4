package vocab

import "strings"

// Category is one of the closed equipment categories. Unknown tools map to
// CategoryOther rather than failing.
type Category string

const (
	CategoryBodyweight Category = "bodyweight"
	CategoryMachine    Category = "machine"
	CategoryDumbbell   Category = "dumbbell"
	CategoryBench      Category = "bench"
	CategoryBand       Category = "band"
	CategoryBall       Category = "ball"
	CategoryRope       Category = "rope"
	CategoryStep       Category = "step"
	CategoryCone       Category = "cone"
	CategoryBallGame   Category = "ball-game"
	CategoryRacket     Category = "racket"
	CategoryHoop       Category = "hoop"
	CategoryBike       Category = "bike"
	CategoryTreadmill  Category = "treadmill"
	CategoryBarbell    Category = "barbell"
	CategoryPlate      Category = "plate"
	CategoryBosu       Category = "bosu"
	CategoryLadder     Category = "ladder"
	CategoryFoamRoller Category = "foam-roller"
	CategoryStick      Category = "stick"
	CategoryKettlebell Category = "kettlebell"
	CategoryLine       Category = "line"
	CategoryOther      Category = "other"
)

// categoryKeywords is checked top to bottom, so the more specific entries
// must come before the generic ones: "basketball" has to win over "ball" and
// "treadmill" over "machine".
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryTreadmill, []string{"treadmill", "running machine"}},
	{CategoryBike, []string{"bike", "bicycle", "cycling", "spin"}},
	{CategoryRacket, []string{"racket", "racquet", "badminton", "tennis", "squash"}},
	{CategoryBallGame, []string{"soccer", "basketball", "volleyball", "baseball", "football", "handball", "futsal"}},
	{CategoryKettlebell, []string{"kettlebell", "kettle bell"}},
	{CategoryDumbbell, []string{"dumbbell", "dumbell"}},
	{CategoryBarbell, []string{"barbell", "ez bar", "olympic bar"}},
	{CategoryFoamRoller, []string{"foam roller", "foam", "roller"}},
	{CategoryBosu, []string{"bosu"}},
	{CategoryHoop, []string{"hoop", "hula"}},
	{CategoryBand, []string{"band", "tube", "theraband"}},
	{CategoryRope, []string{"rope", "skipping"}},
	{CategoryLadder, []string{"ladder"}},
	{CategoryStep, []string{"stepper", "step", "box"}},
	{CategoryCone, []string{"cone"}},
	{CategoryPlate, []string{"plate"}},
	{CategoryStick, []string{"stick", "pole", "staff"}},
	{CategoryBall, []string{"ball"}},
	{CategoryLine, []string{"line"}},
	{CategoryBench, []string{"bench"}},
	{CategoryMachine, []string{"machine", "cable", "smith", "pulldown", "pec deck"}},
	{CategoryBodyweight, []string{"bodyweight", "body weight", "no equipment", "none", "mat"}},
}

// EquipmentCategory maps a free-text tool name to its category by
// case-insensitive keyword lookup. Anything unrecognized becomes
// CategoryOther.
func EquipmentCategory(tool string) Category {
	key := normalizeKey(tool)
	if key == "" {
		return CategoryOther
	}
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(key, keyword) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// intentKeywords mark a retrieval query as actionable. A query that carries
// none of them retrieves noise, so the query validator appends one.
var intentKeywords = []string{"exercise", "strengthen", "develop", "training", "stretch", "recovery"}

// ContainsIntentKeyword reports whether s already carries a training intent.
func ContainsIntentKeyword(s string) bool {
	key := strings.ToLower(s)
	for _, keyword := range intentKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// DefaultIntentKeyword is appended to queries that lack one.
func DefaultIntentKeyword() string {
	return intentKeywords[0]
}

// ContainsEquipmentTerm reports whether s mentions any of the given tools or
// any known equipment keyword, case-insensitively.
func ContainsEquipmentTerm(s string, tools []string) bool {
	key := strings.ToLower(s)
	for _, tool := range tools {
		t := normalizeKey(tool)
		if t != "" && strings.Contains(key, t) {
			return true
		}
	}
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(key, keyword) {
				return true
			}
		}
	}
	return false
}
