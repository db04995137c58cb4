package llm

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/myrjola/routinegen/internal/errors"
)

// parseObject parses model output into v. Responses are requested as strict
// JSON, but long ones get truncated at the token cap, so parsing falls back
// to an ordered sequence of repair strategies. Each strategy only removes
// text and closes brackets; none can fabricate a field the model did not
// start to emit. When every strategy fails the error carries
// KindResponseMalformed.
func parseObject(raw string, v any) error {
	object := extractObject(raw)
	if object == "" {
		return errors.WithKind(errors.New("no JSON object in model output",
			slog.Int("length", len(raw))), errors.KindResponseMalformed)
	}
	candidates := []string{object}
	for _, strategy := range repairStrategies {
		if repaired, ok := strategy(object); ok {
			candidates = append(candidates, repaired)
		}
	}
	for _, candidate := range candidates {
		if json.Unmarshal([]byte(candidate), v) == nil {
			return nil
		}
	}
	return errors.WithKind(errors.New("unrepairable model output",
		slog.Int("length", len(raw))), errors.KindResponseMalformed)
}

// repairStrategies are tried in order; each returns a candidate or reports
// that it does not apply.
var repairStrategies = []func(string) (string, bool){
	closeBrackets,
	cutAtLastComma,
	cutAtLastColon,
}

// extractObject returns the substring from the first opening brace to its
// matching close, or to the end of the text when the object never closes.
// This also strips markdown fences and prose around the object.
func extractObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return raw[start:]
}

// bracketState is the scan state at the end of a prefix: the stack of open
// brackets and, when the prefix ends inside a string literal, where that
// string started.
type bracketState struct {
	open        []byte
	inString    bool
	stringStart int
}

func scan(s string) bracketState {
	state := bracketState{stringStart: -1}
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if state.inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				state.inString = false
				state.stringStart = -1
			}
			continue
		}
		switch c {
		case '"':
			state.inString = true
			state.stringStart = i
		case '{', '[':
			state.open = append(state.open, c)
		case '}', ']':
			if len(state.open) > 0 {
				state.open = state.open[:len(state.open)-1]
			}
		}
	}
	return state
}

// closeBrackets truncates an unterminated string back to its opening quote,
// trims a dangling "key": fragment or trailing comma, and closes the open
// brackets in LIFO order.
func closeBrackets(s string) (string, bool) {
	state := scan(s)
	if state.inString {
		s = s[:state.stringStart]
	}
	s = trimDanglingTail(s)
	state = scan(s)
	if len(state.open) == 0 {
		return s, true
	}
	var b strings.Builder
	b.WriteString(s)
	for i := len(state.open) - 1; i >= 0; i-- {
		if state.open[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String(), true
}

// cutAtLastComma drops everything after the last comma outside a string, so a
// half-emitted field disappears wholesale, then closes brackets.
func cutAtLastComma(s string) (string, bool) {
	cut := lastStructural(s, ',')
	if cut < 0 {
		return "", false
	}
	return closeBrackets(s[:cut])
}

// cutAtLastColon drops the last "key": and whatever incomplete value follows
// it. The comma cut is preferred; this recovers objects whose very first
// field was truncated.
func cutAtLastColon(s string) (string, bool) {
	colon := lastStructural(s, ':')
	if colon < 0 {
		return "", false
	}
	// Walk back over the key string preceding the colon.
	end := strings.LastIndexByte(s[:colon], '"')
	if end < 0 {
		return "", false
	}
	start := strings.LastIndexByte(s[:end], '"')
	if start < 0 {
		return "", false
	}
	return closeBrackets(s[:start])
}

// lastStructural finds the last occurrence of c outside string literals.
func lastStructural(s string, c byte) int {
	last := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			continue
		}
		if ch == c {
			last = i
		}
	}
	return last
}

// trimDanglingTail removes trailing fragments that cannot complete: commas,
// a "key": awaiting its value, or a bare partial literal like "tru".
func trimDanglingTail(s string) string {
	for {
		trimmed := strings.TrimRight(s, " \t\r\n")
		switch {
		case trimmed == "":
			return trimmed
		case strings.HasSuffix(trimmed, ","):
			s = trimmed[:len(trimmed)-1]
		case strings.HasSuffix(trimmed, ":"):
			// Remove the key string before the colon too.
			end := strings.LastIndexByte(trimmed[:len(trimmed)-1], '"')
			if end < 0 {
				return trimmed[:len(trimmed)-1]
			}
			start := strings.LastIndexByte(trimmed[:end], '"')
			if start < 0 {
				return trimmed[:len(trimmed)-1]
			}
			s = trimmed[:start]
		case endsWithPartialLiteral(trimmed):
			s = trimLiteralTail(trimmed)
		default:
			return trimmed
		}
	}
}

func endsWithPartialLiteral(s string) bool {
	i := len(s)
	for i > 0 && isLetter(s[i-1]) {
		i--
	}
	tail := s[i:]
	if tail == "" || tail == "true" || tail == "false" || tail == "null" {
		return false
	}
	return strings.HasPrefix("true", tail) || strings.HasPrefix("false", tail) || strings.HasPrefix("null", tail)
}

func trimLiteralTail(s string) string {
	i := len(s)
	for i > 0 && isLetter(s[i-1]) {
		i--
	}
	return s[:i]
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}
