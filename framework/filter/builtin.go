package filter

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ── String filters ───────────────────────────────────────────────────────────

// StringTrim removes leading and trailing characters from strings.
// With an empty CharList it trims Unicode white space.
type StringTrim struct {
	CharList string
}

func (f StringTrim) Filter(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if f.CharList == "" {
		return strings.TrimFunc(s, unicode.IsSpace)
	}
	return strings.Trim(s, f.CharList)
}

// StringToLower lower-cases strings using the given language's casing rules
// (language.Und when zero).
type StringToLower struct {
	Language language.Tag
}

func (f StringToLower) Filter(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return cases.Lower(f.Language).String(s)
}

// StringToUpper upper-cases strings using the given language's casing rules.
type StringToUpper struct {
	Language language.Tag
}

func (f StringToUpper) Filter(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return cases.Upper(f.Language).String(s)
}

// StripNewlines removes CR and LF characters.
type StripNewlines struct{}

var newlineReplacer = strings.NewReplacer("\r", "", "\n", "")

func (StripNewlines) Filter(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return newlineReplacer.Replace(s)
}

// ── HTML filters ─────────────────────────────────────────────────────────────

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

// StripTags removes every HTML element, keeping text content.
type StripTags struct{}

func (StripTags) Filter(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	// bluemonday escapes text content; the filter result is plain text.
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// HTMLSanitize keeps a conservative set of user-generated-content markup
// and drops everything else (scripts, event handlers, unknown elements).
type HTMLSanitize struct{}

func (HTMLSanitize) Filter(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy.Sanitize(s)
}

// ── Scalar conversions ───────────────────────────────────────────────────────

// ToInt converts numeric strings and numbers to int. Values that cannot be
// converted are returned unchanged so a validator can report them.
type ToInt struct{}

func (ToInt) Filter(value any) any {
	if !isScalar(value) {
		return value
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	i, err := cast.ToIntE(value)
	if err != nil {
		return value
	}
	return i
}

// ToFloat converts numeric strings and numbers to float64.
type ToFloat struct{}

func (ToFloat) Filter(value any) any {
	if !isScalar(value) {
		return value
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return value
	}
	return f
}

// Boolean converts common truthy/falsy spellings to bool.
// Accepts true/false/1/0/yes/no/on/off (case-insensitive).
type Boolean struct{}

var booleanWords = map[string]bool{
	"yes": true, "on": true, "y": true,
	"no": false, "off": false, "n": false,
}

func (Boolean) Filter(value any) any {
	in := value
	if s, ok := value.(string); ok {
		lower := strings.ToLower(strings.TrimSpace(s))
		if b, ok := booleanWords[lower]; ok {
			return b
		}
		in = lower
	}
	if !isScalar(in) {
		return value
	}
	b, err := cast.ToBoolE(in)
	if err != nil {
		return value
	}
	return b
}

// ToNull turns empty strings and empty collections into nil.
type ToNull struct{}

func (ToNull) Filter(value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
	case []any:
		if len(v) == 0 {
			return nil
		}
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
	}
	return value
}

func isScalar(value any) bool {
	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
