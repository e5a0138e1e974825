// Package reply interprets a wire.Block into the typed shape callers see:
// an ordered list of attribute maps on success, or a structured error on
// !trap/!fatal.
package reply

import "strings"

// Value is a reply attribute's coerced value: either a bool (for the
// "true"/"yes"/"false"/"no" wire values) or the raw string otherwise.
type Value = interface{}

// Attributes is one reply sentence's =K=V words, keyed by K.
type Attributes map[string]Value

// ParseAttribute splits a "=K=V" word into its key and raw value. V may
// itself contain "=". A word with nothing after the second "=" yields an
// empty value, e.g. "=k=" -> ("k", ""); a word with no second "=" at all,
// e.g. "=k", yields the same.
func ParseAttribute(word string) (key, value string, ok bool) {
	if !strings.HasPrefix(word, "=") {
		return "", "", false
	}
	rest := word[1:]
	i := strings.IndexByte(rest, '=')
	if i < 0 {
		return rest, "", true
	}
	return rest[:i], rest[i+1:], true
}

// coerceBool applies the wire boolean coercion table; every other string
// passes through unchanged. It never extends to integers or durations.
func coerceBool(s string) Value {
	switch s {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	default:
		return s
	}
}

// attributesOf builds the attribute map for one sentence, skipping status
// words ("!..." entries) and any non-"=" word.
func attributesOf(words []string) Attributes {
	var attrs Attributes
	for _, w := range words {
		if strings.HasPrefix(w, "!") {
			continue
		}
		key, value, ok := ParseAttribute(w)
		if !ok {
			continue
		}
		if attrs == nil {
			attrs = make(Attributes)
		}
		attrs[key] = coerceBool(value)
	}
	return attrs
}
