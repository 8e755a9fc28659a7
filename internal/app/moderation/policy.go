package moderation

import (
	"geochat/internal/pkg/errs"
)

// Policy decides what happens to an outgoing chat message.
//
// Text flagged by the base filter is rejected. Text carrying a phrase from the extended
// list (a disguised spelling) is rejected too. Anything else is delivered after the
// extended filter masks plain blocked words.
type Policy struct {
	base     *Filter
	extended *Filter
}

// NewPolicy builds a Policy on top of base, extending it with CustomWords and extra.
func NewPolicy(base *Filter, extra ...string) *Policy {
	terms := make([]string, 0, len(CustomWords)+len(extra))
	terms = append(terms, CustomWords...)
	terms = append(terms, extra...)

	return &Policy{
		base:     base,
		extended: base.AddWords(terms...),
	}
}

// DefaultPolicy is NewPolicy(Default(), extra...).
func DefaultPolicy(extra ...string) *Policy {
	return NewPolicy(Default(), extra...)
}

// Review returns the text to deliver, or ErrProfanityRejected.
func (p *Policy) Review(text string) (string, *errs.CustomError) {
	if p.base.IsProfane(text) || p.extended.ContainsPhrase(text) {
		return "", errs.NewError(errs.ErrProfanityRejected)
	}

	return p.extended.Clean(text), nil
}
