package filter

import (
	"fmt"
	"sync"

	"zyan/domain"
	"zyan/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	KindAnd      = "and"
	KindNot      = "not"
	KindSessions = "sessions"
	KindKeywords = "keywords"
	KindEquals   = "equals"
)

var validate = validator.New()

// Builder turns a descriptor of its kind into a Filter.
type Builder func(desc domain.FilterDescriptor) (Filter, error)

var (
	kindsMu sync.RWMutex
	kinds   = map[string]Builder{
		KindSessions: buildSessions,
		KindKeywords: buildKeywords,
		KindEquals:   buildEquals,
	}
)

// Composite kinds recurse into build, which reads kinds.
func init() {
	kinds[KindAnd] = buildAnd
	kinds[KindNot] = buildNot
}

// RegisterKind makes a host-defined filter kind available to Build. This is
// how arbitrary predicates become addressable by remote subscribers.
func RegisterKind(kind string, b Builder) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	kinds[kind] = b
}

// Build rebuilds a filter from its descriptor. A nil descriptor yields a nil
// (allow-all) filter.
func Build(desc *domain.FilterDescriptor) (Filter, error) {
	if desc == nil {
		return nil, nil
	}
	if err := validate.Struct(desc); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFilter, err)
	}
	return build(*desc)
}

func build(desc domain.FilterDescriptor) (Filter, error) {
	kindsMu.RLock()
	b, ok := kinds[desc.Kind]
	kindsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", errors.ErrInvalidFilter, desc.Kind)
	}
	f, err := b(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidFilter, desc.Kind, err)
	}
	return f, nil
}

func buildAnd(desc domain.FilterDescriptor) (Filter, error) {
	filters := make([]Filter, 0, len(desc.Children))
	for _, child := range desc.Children {
		f, err := build(child)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return Combine(filters...), nil
}

func buildNot(desc domain.FilterDescriptor) (Filter, error) {
	if len(desc.Children) != 1 {
		return nil, fmt.Errorf("expects exactly one child, got %d", len(desc.Children))
	}
	inner, err := build(desc.Children[0])
	if err != nil {
		return nil, err
	}
	return Not(inner), nil
}

func buildSessions(desc domain.FilterDescriptor) (Filter, error) {
	ids := make([]uuid.UUID, 0, len(desc.Values))
	for _, v := range desc.Values {
		switch id := v.(type) {
		case uuid.UUID:
			ids = append(ids, id)
		case string:
			parsed, err := uuid.Parse(id)
			if err != nil {
				return nil, err
			}
			ids = append(ids, parsed)
		default:
			return nil, fmt.Errorf("session id must be a string, got %T", v)
		}
	}
	return NewSessionFilter(desc.Index, ids...), nil
}

func buildKeywords(desc domain.FilterDescriptor) (Filter, error) {
	words := make([]string, 0, len(desc.Values))
	for _, v := range desc.Values {
		w, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("keyword must be a string, got %T", v)
		}
		words = append(words, w)
	}
	return NewKeywordFilter(desc.Index, words...)
}

func buildEquals(desc domain.FilterDescriptor) (Filter, error) {
	if len(desc.Values) != 1 {
		return nil, fmt.Errorf("expects exactly one value, got %d", len(desc.Values))
	}
	return Equals(desc.Index, desc.Values[0]), nil
}

// Descriptor helpers used by subscribers to describe the filter they want the
// publisher to apply.

func SessionsDescriptor(index int, ids ...uuid.UUID) *domain.FilterDescriptor {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return &domain.FilterDescriptor{Kind: KindSessions, Index: index, Values: values}
}

func KeywordsDescriptor(index int, words ...string) *domain.FilterDescriptor {
	values := make([]any, len(words))
	for i, w := range words {
		values[i] = w
	}
	return &domain.FilterDescriptor{Kind: KindKeywords, Index: index, Values: values}
}

func EqualsDescriptor(index int, value any) *domain.FilterDescriptor {
	return &domain.FilterDescriptor{Kind: KindEquals, Index: index, Values: []any{value}}
}

func NotDescriptor(inner *domain.FilterDescriptor) *domain.FilterDescriptor {
	return &domain.FilterDescriptor{Kind: KindNot, Children: []domain.FilterDescriptor{*inner}}
}

// CombineDescriptors is the descriptor counterpart of Combine: nil inputs are
// dropped and nested "and" nodes are flattened.
func CombineDescriptors(descs ...*domain.FilterDescriptor) *domain.FilterDescriptor {
	var flat []domain.FilterDescriptor
	for _, d := range descs {
		switch {
		case d == nil:
		case d.Kind == KindAnd:
			flat = append(flat, d.Children...)
		default:
			flat = append(flat, *d)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return &flat[0]
	default:
		return &domain.FilterDescriptor{Kind: KindAnd, Children: flat}
	}
}
