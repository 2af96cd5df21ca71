package plugin

import (
	"fmt"

	"github.com/spf13/cast"
	"golang.org/x/text/language"

	"github.com/km-arc/go-inputfilter/framework/filter"
	"github.com/km-arc/go-inputfilter/framework/validator"
)

// RegisterDefaults binds every built-in filter and validator into r under its
// snake_case name plus a CamelCase alias.
func RegisterDefaults(r *Registry) {
	// filters
	r.RegisterFilter("string_trim", func(o Options) (filter.Filter, error) {
		return filter.StringTrim{CharList: o.String("charlist")}, nil
	}, "StringTrim")
	r.RegisterFilter("string_to_lower", func(o Options) (filter.Filter, error) {
		tag, err := o.language()
		return filter.StringToLower{Language: tag}, err
	}, "StringToLower")
	r.RegisterFilter("string_to_upper", func(o Options) (filter.Filter, error) {
		tag, err := o.language()
		return filter.StringToUpper{Language: tag}, err
	}, "StringToUpper")
	r.RegisterFilter("strip_tags", stateless(filter.StripTags{}), "StripTags")
	r.RegisterFilter("html_sanitize", stateless(filter.HTMLSanitize{}), "HtmlSanitize", "HTMLSanitize")
	r.RegisterFilter("strip_newlines", stateless(filter.StripNewlines{}), "StripNewlines")
	r.RegisterFilter("to_int", stateless(filter.ToInt{}), "ToInt")
	r.RegisterFilter("to_float", stateless(filter.ToFloat{}), "ToFloat")
	r.RegisterFilter("boolean", stateless(filter.Boolean{}), "Boolean")
	r.RegisterFilter("to_null", stateless(filter.ToNull{}), "ToNull")
	r.RegisterFilter("callback", func(o Options) (filter.Filter, error) {
		fn, ok := o["callback"].(func(any) any)
		if !ok {
			return nil, fmt.Errorf("option %q must be a func(any) any", "callback")
		}
		return filter.Func(fn), nil
	}, "Callback")

	// validators
	r.RegisterValidator("not_empty", func(o Options) (validator.Validator, error) {
		return &validator.NotEmpty{Messages: o.messages()}, nil
	}, "NotEmpty")
	r.RegisterValidator("string_length", func(o Options) (validator.Validator, error) {
		lo, err := o.Int("min")
		if err != nil {
			return nil, err
		}
		hi, err := o.Int("max")
		if err != nil {
			return nil, err
		}
		return validator.StringLength{Min: lo, Max: hi, Messages: o.messages()}, nil
	}, "StringLength")
	r.RegisterValidator("regex", func(o Options) (validator.Validator, error) {
		pattern := o.String("pattern")
		if pattern == "" {
			return nil, fmt.Errorf("missing %q option", "pattern")
		}
		re, err := validator.NewRegex(pattern)
		if err != nil {
			return nil, err
		}
		re.Messages = o.messages()
		return re, nil
	}, "Regex")
	r.RegisterValidator("email_address", func(o Options) (validator.Validator, error) {
		return validator.EmailAddress{Messages: o.messages()}, nil
	}, "EmailAddress")
	r.RegisterValidator("uri", func(o Options) (validator.Validator, error) {
		schemes, err := o.Strings("schemes")
		if err != nil {
			return nil, err
		}
		return validator.URI{AllowRelative: o.Bool("allow_relative"), Schemes: schemes, Messages: o.messages()}, nil
	}, "Uri", "URI")
	r.RegisterValidator("digits", func(o Options) (validator.Validator, error) {
		return validator.Digits{Messages: o.messages()}, nil
	}, "Digits")
	r.RegisterValidator("alpha", func(o Options) (validator.Validator, error) {
		return validator.Alpha{AllowWhiteSpace: o.Bool("allow_white_space"), Messages: o.messages()}, nil
	}, "Alpha")
	r.RegisterValidator("alnum", func(o Options) (validator.Validator, error) {
		return validator.Alnum{AllowWhiteSpace: o.Bool("allow_white_space"), Messages: o.messages()}, nil
	}, "Alnum")
	r.RegisterValidator("between", func(o Options) (validator.Validator, error) {
		lo, err := o.Float("min")
		if err != nil {
			return nil, err
		}
		hi, err := o.Float("max")
		if err != nil {
			return nil, err
		}
		return validator.Between{Min: lo, Max: hi, Inclusive: o.BoolDefault("inclusive", true), Messages: o.messages()}, nil
	}, "Between")
	r.RegisterValidator("greater_than", func(o Options) (validator.Validator, error) {
		lo, err := o.Float("min")
		if err != nil {
			return nil, err
		}
		return validator.GreaterThan{Min: lo, Inclusive: o.Bool("inclusive"), Messages: o.messages()}, nil
	}, "GreaterThan")
	r.RegisterValidator("less_than", func(o Options) (validator.Validator, error) {
		hi, err := o.Float("max")
		if err != nil {
			return nil, err
		}
		return validator.LessThan{Max: hi, Inclusive: o.Bool("inclusive"), Messages: o.messages()}, nil
	}, "LessThan")
	r.RegisterValidator("in_array", func(o Options) (validator.Validator, error) {
		haystack, err := cast.ToSliceE(o["haystack"])
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", "haystack", err)
		}
		return validator.InArray{Haystack: haystack, Strict: o.Bool("strict"), Messages: o.messages()}, nil
	}, "InArray")
	r.RegisterValidator("identical", func(o Options) (validator.Validator, error) {
		return validator.Identical{Token: o.String("token"), Strict: o.Bool("strict"), Messages: o.messages()}, nil
	}, "Identical")
	r.RegisterValidator("callback", func(o Options) (validator.Validator, error) {
		switch fn := o["callback"].(type) {
		case func(any, map[string]any) bool:
			return validator.Callback{Fn: fn, Messages: o.messages()}, nil
		case func(any) bool:
			return validator.Callback{
				Fn:       func(v any, _ map[string]any) bool { return fn(v) },
				Messages: o.messages(),
			}, nil
		}
		return nil, fmt.Errorf("option %q must be a func", "callback")
	}, "Callback")
}

func stateless(f filter.Filter) FilterConstructor {
	return func(Options) (filter.Filter, error) { return f, nil }
}

// ── Option accessors ─────────────────────────────────────────────────────────

// String returns the option as a string ("" when absent).
func (o Options) String(key string) string { return cast.ToString(o[key]) }

// Bool returns the option as a bool (false when absent or unparsable).
func (o Options) Bool(key string) bool { return o.BoolDefault(key, false) }

// BoolDefault returns the option as a bool, or def when absent.
func (o Options) BoolDefault(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Int returns the option as an int (0 when absent).
func (o Options) Int(key string) (int, error) {
	v, ok := o[key]
	if !ok {
		return 0, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: %w", key, err)
	}
	return n, nil
}

// Float returns the option as a float64 (0 when absent).
func (o Options) Float(key string) (float64, error) {
	v, ok := o[key]
	if !ok {
		return 0, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: %w", key, err)
	}
	return f, nil
}

// Strings returns the option as a string slice (nil when absent).
func (o Options) Strings(key string) ([]string, error) {
	v, ok := o[key]
	if !ok {
		return nil, nil
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("option %q: %w", key, err)
	}
	return s, nil
}

func (o Options) messages() validator.Messages {
	raw, ok := o["messages"]
	if !ok {
		return nil
	}
	m := cast.ToStringMapString(raw)
	if len(m) == 0 {
		return nil
	}
	return validator.Messages(m)
}

func (o Options) language() (language.Tag, error) {
	s := o.String("language")
	if s == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("option %q: %w", "language", err)
	}
	return tag, nil
}
