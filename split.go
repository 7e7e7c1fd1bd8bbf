package rowz

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zoobzio/rowz/value"
)

// Strategy turns one optional value into string tokens. The set of
// strategies is closed: SeparatorCharPair, SeparatorCharN and RegexPair.
//
// Arity reports the number of tokens a successful split produces, or 0 when
// the count depends on the input.
type Strategy interface {
	Split(src *value.Value) ([]*value.Value, error)
	Arity() int
	strategy()
}

// PairStrategy is a Strategy that always produces exactly two tokens.
type PairStrategy interface {
	Strategy
	SplitPair(src *value.Value) (left, right *value.Value, err error)
}

const (
	msgAbsentDisallowed = "value is absent but splitting absent values is disallowed"
	msgNotAString       = "not a string value, cannot split"
)

// SeparatorCharPair splits a string on every occurrence of Sep and requires
// exactly two tokens. An absent source gives two absent tokens when
// SplitNone is set.
type SeparatorCharPair struct {
	Sep       rune
	SplitNone bool
}

func (SeparatorCharPair) strategy() {}

// Arity returns 2.
func (SeparatorCharPair) Arity() int { return 2 }

// SplitPair splits src into exactly two tokens.
func (s SeparatorCharPair) SplitPair(src *value.Value) (left, right *value.Value, err error) {
	if src == nil {
		if s.SplitNone {
			return nil, nil, nil
		}
		return nil, nil, splitError(msgAbsentDisallowed, nil, "")
	}
	text, ok := src.AsString()
	if !ok {
		return nil, nil, splitError(msgNotAString, src, "")
	}
	tokens := strings.Split(text, string(s.Sep))
	if len(tokens) != 2 {
		return nil, nil, splitError(fmt.Sprintf("expected 2 tokens as result of split, but got: %d", len(tokens)), src, separatorDetail(s.Sep))
	}
	return value.FromString(tokens[0]).Ptr(), value.FromString(tokens[1]).Ptr(), nil
}

// Split implements Strategy.
func (s SeparatorCharPair) Split(src *value.Value) ([]*value.Value, error) {
	return pairSlice(s.SplitPair(src))
}

// SeparatorCharN splits a string on every occurrence of Sep and accepts two
// or more tokens.
//
// An absent source needs NoneClones, the number of absent tokens to produce.
// Zero means unset, which is an error even when SplitNone is true: the
// number of targets would be ambiguous.
type SeparatorCharN struct {
	Sep        rune
	SplitNone  bool
	NoneClones int
}

func (SeparatorCharN) strategy() {}

// Arity returns 0: the token count depends on the input.
func (SeparatorCharN) Arity() int { return 0 }

// Split implements Strategy.
func (s SeparatorCharN) Split(src *value.Value) ([]*value.Value, error) {
	if src == nil {
		switch {
		case !s.SplitNone:
			return nil, splitError(msgAbsentDisallowed, nil, "")
		case s.NoneClones <= 0:
			return nil, splitError("value is absent and splitting absent values is allowed, but the number of clones is not set", nil, "")
		}
		return make([]*value.Value, s.NoneClones), nil
	}
	text, ok := src.AsString()
	if !ok {
		return nil, splitError(msgNotAString, src, "")
	}
	if text == "" {
		return nil, splitError("cannot split an empty string", src, separatorDetail(s.Sep))
	}
	tokens := strings.Split(text, string(s.Sep))
	if len(tokens) == 1 {
		return nil, splitError("separator not found, expected at least 2 tokens but got: 1", src, separatorDetail(s.Sep))
	}
	out := make([]*value.Value, len(tokens))
	for i, tok := range tokens {
		out[i] = value.FromString(tok).Ptr()
	}
	return out, nil
}

// RegexPair extracts the first two capture groups of the first match.
// Create it with NewRegexPair.
type RegexPair struct {
	re        *regexp.Regexp
	SplitNone bool
}

// NewRegexPair compiles pattern once. A compile failure is returned as a
// KindSplit *Error.
func NewRegexPair(pattern string, splitNone bool) (*RegexPair, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		e := splitError("invalid regex pattern", nil, "regex: "+pattern)
		e.Err = err
		return nil, e
	}
	return &RegexPair{re: re, SplitNone: splitNone}, nil
}

// MustRegexPair is like NewRegexPair but panics on an invalid pattern.
func MustRegexPair(pattern string, splitNone bool) *RegexPair {
	s, err := NewRegexPair(pattern, splitNone)
	if err != nil {
		panic(err)
	}
	return s
}

func (*RegexPair) strategy() {}

// Arity returns 2.
func (*RegexPair) Arity() int { return 2 }

// Pattern returns the source of the compiled expression.
func (s *RegexPair) Pattern() string { return s.re.String() }

// SplitPair matches src and returns the two captured groups. A group that
// did not participate in the match yields an absent token.
func (s *RegexPair) SplitPair(src *value.Value) (left, right *value.Value, err error) {
	if src == nil {
		if s.SplitNone {
			return nil, nil, nil
		}
		return nil, nil, splitError(msgAbsentDisallowed, nil, "")
	}
	text, ok := src.AsString()
	if !ok {
		return nil, nil, splitError(msgNotAString, src, "")
	}
	loc := s.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, nil, splitError("no captures, need exactly two", src, "regex: "+s.re.String())
	}
	if groups := len(loc)/2 - 1; groups != 2 {
		return nil, nil, splitError(fmt.Sprintf("%d capture group(s), need exactly two", groups), src, "regex: "+s.re.String())
	}
	return group(text, loc, 1), group(text, loc, 2), nil
}

// Split implements Strategy.
func (s *RegexPair) Split(src *value.Value) ([]*value.Value, error) {
	return pairSlice(s.SplitPair(src))
}

func group(text string, loc []int, n int) *value.Value {
	start, end := loc[2*n], loc[2*n+1]
	if start < 0 {
		return nil
	}
	return value.FromString(text[start:end]).Ptr()
}

func pairSlice(left, right *value.Value, err error) ([]*value.Value, error) {
	if err != nil {
		return nil, err
	}
	return []*value.Value{left, right}, nil
}

func separatorDetail(sep rune) string {
	return fmt.Sprintf("separator: %q", sep)
}
