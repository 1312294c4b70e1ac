package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.DocumentStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks sensitive values before they are persisted.
//
// A leaf is masked when its Name attribute matches one of the patterns. An
// entity whose "Name" leaf matches (a property called "api_token", say) has
// its "Value" leaf masked. Loads pass through untouched; redaction is one way.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, id string, doc *codec.Element) error {
	// The caller keeps its own tree unmasked.
	cloned := doc.Clone()
	m.mask(cloned)
	return m.next.Save(ctx, id, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, id string) (*codec.Element, error) {
	return m.next.Load(ctx, id)
}

func (m *redactionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) matches(s string) bool {
	for _, p := range m.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func (m *redactionMiddleware) mask(el *codec.Element) {
	if el.Tag == codec.TagProperty {
		if name, _ := el.Attr(codec.AttrName); m.matches(name) && el.Value != nil {
			el.Value = Mask
		}
		return
	}
	if el.Tag == codec.TagEntity {
		if label := el.First("Name"); label != nil {
			if s, ok := label.Value.(string); ok && m.matches(s) {
				for _, v := range el.Named("Value") {
					if v.Tag == codec.TagProperty && v.Value != nil {
						v.Value = Mask
					}
				}
			}
		}
	}
	for _, c := range el.Children {
		m.mask(c)
	}
}
