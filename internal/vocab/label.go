// Package vocab defines the canonical muscle vocabulary and the closed
// equipment category set. Every muscle string that leaves the service has
// passed through Normalize exactly once at the boundary.
package vocab

import "strings"

// Label is a canonical muscle label. The zero value is not a valid label;
// construct them through Normalize or the canonical list.
type Label string

// muscleLabels is the closed vocabulary, ordered by body region from neck to
// toes. The order is load-bearing: substring resolution and prompt
// enumeration walk this slice, so keep it stable.
var muscleLabels = []Label{
	// Neck and shoulder girdle.
	"sternocleidomastoid",
	"scalene",
	"splenius",
	"levator scapulae",
	"deltoid",
	"anterior deltoid",
	"lateral deltoid",
	"posterior deltoid",
	"rotator cuff",
	"supraspinatus",
	"infraspinatus",
	"subscapularis",
	"teres major",
	"teres minor",
	// Back.
	"trapezius",
	"upper trapezius",
	"lower trapezius",
	"rhomboid",
	"latissimus dorsi",
	"erector spinae",
	"multifidus",
	"quadratus lumborum",
	// Chest and trunk.
	"pectoralis major",
	"pectoralis minor",
	"serratus anterior",
	"intercostal",
	"diaphragm",
	"rectus abdominis",
	"external oblique",
	"internal oblique",
	"transverse abdominis",
	// Arms.
	"biceps",
	"triceps",
	"brachialis",
	"brachioradialis",
	"forearm flexor",
	"forearm extensor",
	"wrist flexor",
	"wrist extensor",
	"finger flexor",
	"finger extensor",
	// Hip.
	"iliopsoas",
	"hip flexor",
	"gluteus maximus",
	"gluteus medius",
	"gluteus minimus",
	"piriformis",
	"tensor fasciae latae",
	"hip adductor",
	"hip abductor",
	// Thigh.
	"quadriceps",
	"rectus femoris",
	"vastus lateralis",
	"vastus medialis",
	"vastus intermedius",
	"hamstring",
	"biceps femoris",
	"semitendinosus",
	"semimembranosus",
	"adductor longus",
	"adductor magnus",
	"gracilis",
	"sartorius",
	// Lower leg and foot.
	"calf",
	"gastrocnemius",
	"soleus",
	"tibialis anterior",
	"peroneus",
	"toe flexor",
	"toe extensor",
}

var labelSet = buildLabelSet()

func buildLabelSet() map[Label]struct{} {
	set := make(map[Label]struct{}, len(muscleLabels))
	for _, label := range muscleLabels {
		set[label] = struct{}{}
	}
	return set
}

// All returns the canonical vocabulary in its stable order.
func All() []Label {
	labels := make([]Label, len(muscleLabels))
	copy(labels, muscleLabels)
	return labels
}

// IsCanonical reports whether s, after key normalization, is a member of the
// vocabulary.
func IsCanonical(s string) bool {
	_, ok := labelSet[Label(normalizeKey(s))]
	return ok
}

// normalizeKey lowercases, trims, and collapses inner whitespace so lookups
// tolerate the usual free-text sloppiness.
func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
