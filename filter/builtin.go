package filter

import (
	"fmt"
	"reflect"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/google/uuid"
)

// SessionFilter allows an invocation only if the session identifier found at
// Index belongs to the allow-set. The argument may be a uuid.UUID or its
// string form.
type SessionFilter struct {
	Index   int
	allowed map[uuid.UUID]struct{}
}

func NewSessionFilter(index int, ids ...uuid.UUID) *SessionFilter {
	allowed := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	return &SessionFilter{Index: index, allowed: allowed}
}

func (f *SessionFilter) AllowInvocation(args []any) bool {
	if f.Index < 0 || f.Index >= len(args) {
		return false
	}
	var id uuid.UUID
	switch v := args[f.Index].(type) {
	case uuid.UUID:
		id = v
	case string:
		parsed, err := uuid.Parse(v)
		if err != nil {
			return false
		}
		id = parsed
	default:
		return false
	}
	_, ok := f.allowed[id]
	return ok
}

// KeywordFilter allows an invocation when the string argument at Index
// contains at least one keyword, case-insensitively. Matching uses an
// Aho-Corasick automaton so the cost doesn't grow with the keyword count.
type KeywordFilter struct {
	Index   int
	matcher *goahocorasick.Machine
}

func NewKeywordFilter(index int, words ...string) (*KeywordFilter, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if r := lowerRunes(w); len(r) > 0 {
			patterns = append(patterns, r)
		}
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("keyword filter needs at least one non empty word")
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &KeywordFilter{Index: index, matcher: m}, nil
}

func (f *KeywordFilter) AllowInvocation(args []any) bool {
	if f.Index < 0 || f.Index >= len(args) {
		return false
	}
	s, ok := args[f.Index].(string)
	if !ok {
		return false
	}
	return len(f.matcher.MultiPatternSearch(lowerRunes(s), true)) > 0
}

func lowerRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// Equals allows an invocation when the argument at index equals value.
// Numbers compare by value whatever their Go type, since arguments decoded
// from the wire arrive as float64.
func Equals(index int, value any) Filter {
	return Func(func(args []any) bool {
		if index < 0 || index >= len(args) {
			return false
		}
		return sameValue(args[index], value)
	})
}

func sameValue(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	if ua, ok := a.(uuid.UUID); ok {
		a = ua.String()
	}
	if ub, ok := b.(uuid.UUID); ok {
		b = ub.String()
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
