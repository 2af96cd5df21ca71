package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// ── NotEmpty ─────────────────────────────────────────────────────────────────

const (
	// CodeIsEmpty is the failure code reported for missing required values.
	CodeIsEmpty = "isEmpty"
	// NotEmptyMessage is the default message for CodeIsEmpty.
	NotEmptyMessage = "Value is required and can't be empty"
)

// NotEmpty fails for nil, empty or whitespace-only strings, and empty
// slices or maps.
type NotEmpty struct {
	Messages Messages
}

func (v *NotEmpty) IsValid(value any, _ map[string]any) (bool, Messages) {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return false, failure(v.overrides(), CodeIsEmpty, NotEmptyMessage, nil)
	}
	if IsEmpty(value) {
		return false, failure(v.overrides(), CodeIsEmpty, NotEmptyMessage, nil)
	}
	return true, nil
}

func (v *NotEmpty) overrides() Messages {
	if v == nil {
		return nil
	}
	return v.Messages
}

// IsNotEmpty reports whether v is a NotEmpty validator.
func IsNotEmpty(v Validator) bool {
	_, ok := v.(*NotEmpty)
	return ok
}

// ── StringLength ─────────────────────────────────────────────────────────────

// StringLength checks the rune count of a string. Max <= 0 means unlimited.
type StringLength struct {
	Min      int
	Max      int
	Messages Messages
}

func (v StringLength) IsValid(value any, _ map[string]any) (bool, Messages) {
	s, ok := value.(string)
	if !ok {
		return false, failure(v.Messages, "stringLengthInvalid", "Invalid type given. String expected", nil)
	}
	vars := map[string]any{"min": v.Min, "max": v.Max, "value": s}
	n := utf8.RuneCountInString(s)
	if n < v.Min {
		return false, failure(v.Messages, "stringLengthTooShort", "The input is less than %min% characters long", vars)
	}
	if v.Max > 0 && n > v.Max {
		return false, failure(v.Messages, "stringLengthTooLong", "The input is more than %max% characters long", vars)
	}
	return true, nil
}

// ── Regex ────────────────────────────────────────────────────────────────────

// Regex checks that the string form of a scalar matches Pattern.
type Regex struct {
	Pattern  *regexp.Regexp
	Messages Messages
}

// NewRegex compiles pattern into a Regex validator.
func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("validator: invalid regex %q: %w", pattern, err)
	}
	return &Regex{Pattern: re}, nil
}

func (v *Regex) IsValid(value any, _ map[string]any) (bool, Messages) {
	s, ok := scalarString(value)
	if !ok {
		return false, failure(v.Messages, "regexInvalid", "Invalid type given. String, integer or float expected", nil)
	}
	if !v.Pattern.MatchString(s) {
		return false, failure(v.Messages, "regexNotMatch", "The input does not match against pattern '%pattern%'",
			map[string]any{"pattern": v.Pattern.String(), "value": s})
	}
	return true, nil
}

// ── Format validators ────────────────────────────────────────────────────────

// EmailAddress accepts a bare RFC 5322 address (no display name).
type EmailAddress struct {
	Messages Messages
}

func (v EmailAddress) IsValid(value any, _ map[string]any) (bool, Messages) {
	s, ok := value.(string)
	if !ok {
		return false, failure(v.Messages, "emailAddressInvalid", "Invalid type given. String expected", nil)
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false, failure(v.Messages, "emailAddressInvalidFormat",
			"The input is not a valid email address. Use the basic format local-part@hostname", map[string]any{"value": s})
	}
	return true, nil
}

// URI accepts absolute URIs, and relative references when AllowRelative is set.
// A non-empty Schemes list restricts the accepted schemes.
type URI struct {
	AllowRelative bool
	Schemes       []string
	Messages      Messages
}

func (v URI) IsValid(value any, _ map[string]any) (bool, Messages) {
	s, ok := value.(string)
	if !ok {
		return false, failure(v.Messages, "uriInvalid", "Invalid type given. String expected", nil)
	}
	notURI := failure(v.Messages, "notUri", "The input does not appear to be a valid Uri", map[string]any{"value": s})
	u, err := url.Parse(s)
	if err != nil || s == "" {
		return false, notURI
	}
	if !u.IsAbs() {
		if v.AllowRelative {
			return true, nil
		}
		return false, notURI
	}
	if u.Host == "" && u.Opaque == "" {
		return false, notURI
	}
	if len(v.Schemes) > 0 && !containsFold(v.Schemes, u.Scheme) {
		return false, notURI
	}
	return true, nil
}

// ── Character class validators ───────────────────────────────────────────────

var (
	digitsPattern     = regexp.MustCompile(`^[0-9]+$`)
	alphaPattern      = regexp.MustCompile(`^\p{L}+$`)
	alphaSpacePattern = regexp.MustCompile(`^[\p{L}\s]+$`)
	alnumPattern      = regexp.MustCompile(`^[\p{L}\p{N}]+$`)
	alnumSpacePattern = regexp.MustCompile(`^[\p{L}\p{N}\s]+$`)
)

// Digits accepts strings and integers made of decimal digits only.
type Digits struct {
	Messages Messages
}

func (v Digits) IsValid(value any, _ map[string]any) (bool, Messages) {
	s, ok := scalarString(value)
	if !ok {
		return false, failure(v.Messages, "digitsInvalid", "Invalid type given. String, integer or float expected", nil)
	}
	if s == "" {
		return false, failure(v.Messages, "digitsStringEmpty", "The input is an empty string", nil)
	}
	if !digitsPattern.MatchString(s) {
		return false, failure(v.Messages, "notDigits", "The input must contain only digits", map[string]any{"value": s})
	}
	return true, nil
}

// Alpha accepts letters only (any script).
type Alpha struct {
	AllowWhiteSpace bool
	Messages        Messages
}

func (v Alpha) IsValid(value any, _ map[string]any) (bool, Messages) {
	s, ok := value.(string)
	if !ok {
		return false, failure(v.Messages, "alphaInvalid", "Invalid type given. String expected", nil)
	}
	re := alphaPattern
	if v.AllowWhiteSpace {
		re = alphaSpacePattern
	}
	if !re.MatchString(s) {
		return false, failure(v.Messages, "notAlpha", "The input contains non alphabetic characters", map[string]any{"value": s})
	}
	return true, nil
}

// Alnum accepts letters and digits only.
type Alnum struct {
	AllowWhiteSpace bool
	Messages        Messages
}

func (v Alnum) IsValid(value any, _ map[string]any) (bool, Messages) {
	s, ok := scalarString(value)
	if !ok {
		return false, failure(v.Messages, "alnumInvalid", "Invalid type given. String, integer or float expected", nil)
	}
	re := alnumPattern
	if v.AllowWhiteSpace {
		re = alnumSpacePattern
	}
	if !re.MatchString(s) {
		return false, failure(v.Messages, "notAlnum", "The input contains characters which are non alphabetic and no digits", map[string]any{"value": s})
	}
	return true, nil
}

// ── Numeric comparisons ──────────────────────────────────────────────────────

// Between checks Min <= value <= Max (or strict bounds when Inclusive is false).
type Between struct {
	Min       float64
	Max       float64
	Inclusive bool
	Messages  Messages
}

func (v Between) IsValid(value any, _ map[string]any) (bool, Messages) {
	f, err := toNumber(value)
	if err != nil {
		return false, failure(v.Messages, "valueNotNumeric", "The min ('%min%') and max ('%max%') values are numeric, but the input is not",
			map[string]any{"min": v.Min, "max": v.Max})
	}
	vars := map[string]any{"min": v.Min, "max": v.Max, "value": value}
	if v.Inclusive {
		if f < v.Min || f > v.Max {
			return false, failure(v.Messages, "notBetween", "The input is not between '%min%' and '%max%', inclusively", vars)
		}
		return true, nil
	}
	if f <= v.Min || f >= v.Max {
		return false, failure(v.Messages, "notBetweenStrict", "The input is not strictly between '%min%' and '%max%'", vars)
	}
	return true, nil
}

// GreaterThan checks value > Min (>= when Inclusive).
type GreaterThan struct {
	Min       float64
	Inclusive bool
	Messages  Messages
}

func (v GreaterThan) IsValid(value any, _ map[string]any) (bool, Messages) {
	vars := map[string]any{"min": v.Min, "value": value}
	f, err := toNumber(value)
	switch {
	case v.Inclusive && (err != nil || f < v.Min):
		return false, failure(v.Messages, "notGreaterThanInclusive", "The input is not greater than or equal to '%min%'", vars)
	case !v.Inclusive && (err != nil || f <= v.Min):
		return false, failure(v.Messages, "notGreaterThan", "The input is not greater than '%min%'", vars)
	}
	return true, nil
}

// LessThan checks value < Max (<= when Inclusive).
type LessThan struct {
	Max       float64
	Inclusive bool
	Messages  Messages
}

func (v LessThan) IsValid(value any, _ map[string]any) (bool, Messages) {
	vars := map[string]any{"max": v.Max, "value": value}
	f, err := toNumber(value)
	switch {
	case v.Inclusive && (err != nil || f > v.Max):
		return false, failure(v.Messages, "notLessThanInclusive", "The input is not less than or equal to '%max%'", vars)
	case !v.Inclusive && (err != nil || f >= v.Max):
		return false, failure(v.Messages, "notLessThan", "The input is not less than '%max%'", vars)
	}
	return true, nil
}

// ── Membership & comparison ──────────────────────────────────────────────────

// InArray checks that value is one of Haystack. Without Strict, values are
// compared by their string form, so "1" matches 1.
type InArray struct {
	Haystack []any
	Strict   bool
	Messages Messages
}

func (v InArray) IsValid(value any, _ map[string]any) (bool, Messages) {
	for _, candidate := range v.Haystack {
		if v.Strict && reflect.DeepEqual(candidate, value) {
			return true, nil
		}
		if !v.Strict && fmt.Sprint(candidate) == fmt.Sprint(value) {
			return true, nil
		}
	}
	return false, failure(v.Messages, "notInArray", "The input was not found in the haystack", map[string]any{"value": value})
}

// Identical compares value with the sibling field named Token in the
// validation context, e.g. a password confirmation.
type Identical struct {
	Token    string
	Strict   bool
	Messages Messages
}

func (v Identical) IsValid(value any, context map[string]any) (bool, Messages) {
	other, ok := context[v.Token]
	if v.Token == "" || !ok {
		return false, failure(v.Messages, "missingToken", "No token was provided to match against", nil)
	}
	same := reflect.DeepEqual(other, value)
	if !v.Strict && !same {
		same = fmt.Sprint(other) == fmt.Sprint(value)
	}
	if !same {
		return false, failure(v.Messages, "notSame", "The two given tokens do not match", map[string]any{"token": v.Token})
	}
	return true, nil
}

// Callback delegates to Fn.
type Callback struct {
	Fn       func(value any, context map[string]any) bool
	Messages Messages
}

func (v Callback) IsValid(value any, context map[string]any) (bool, Messages) {
	if v.Fn == nil || !v.Fn(value, context) {
		return false, failure(v.Messages, "callbackValue", "The input is not valid", map[string]any{"value": value})
	}
	return true, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(v), true
	}
	return "", false
}

func toNumber(value any) (float64, error) {
	switch v := value.(type) {
	case nil, bool:
		return 0, fmt.Errorf("validator: %T is not numeric", value)
	case string:
		return cast.ToFloat64E(strings.TrimSpace(v))
	}
	return cast.ToFloat64E(value)
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
