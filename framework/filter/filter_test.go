package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inputfilter/framework/filter"
)

func appendTag(tag string) filter.Func {
	return func(v any) any { return v.(string) + tag }
}

// ── Chain ────────────────────────────────────────────────────────────────────

func TestChain_EmptyIsIdentity(t *testing.T) {
	chain := filter.NewChain()
	for _, v := range []any{nil, "", "x", 0, 3.5, false, []any{1}, map[string]any{"a": 1}} {
		assert.Equal(t, v, chain.Filter(v))
	}

	var nilChain *filter.Chain
	assert.Equal(t, "x", nilChain.Filter("x"))
}

func TestChain_HigherPriorityRunsFirst(t *testing.T) {
	chain := filter.NewChain()
	chain.Attach(appendTag("-low"), 1)
	chain.Attach(appendTag("-high"), 10)

	assert.Equal(t, "v-high-low", chain.Filter("v"))
}

func TestChain_TiesKeepInsertionOrder(t *testing.T) {
	chain := filter.NewChain()
	chain.Attach(appendTag("-a"))
	chain.Attach(appendTag("-b"))
	chain.Attach(appendTag("-c"))

	assert.Equal(t, "v-a-b-c", chain.Filter("v"))
}

func TestChain_MergeKeepsPriorities(t *testing.T) {
	first := filter.NewChain().Attach(appendTag("-first"), 1)
	second := filter.NewChain().Attach(appendTag("-second"), 50)

	first.Merge(second)

	require.Equal(t, 2, first.Len())
	assert.Equal(t, "v-second-first", first.Filter("v"))
}

func TestChain_CloneIsIndependent(t *testing.T) {
	orig := filter.NewChain().Attach(appendTag("-a"))
	clone := orig.Clone()
	clone.Attach(appendTag("-b"))

	assert.Equal(t, 1, orig.Len())
	assert.Equal(t, "v-a", orig.Filter("v"))
	assert.Equal(t, "v-a-b", clone.Filter("v"))
}

func TestChain_Filters(t *testing.T) {
	chain := filter.NewChain()
	chain.Attach(filter.StringTrim{}, 1)
	chain.Attach(filter.StringToLower{}, 5)

	fs := chain.Filters()
	require.Len(t, fs, 2)
	assert.IsType(t, filter.StringToLower{}, fs[0])
	assert.IsType(t, filter.StringTrim{}, fs[1])
}

// ── Built-ins ────────────────────────────────────────────────────────────────

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		f    filter.Filter
		in   any
		want any
	}{
		{"trim whitespace", filter.StringTrim{}, "  hi \t", "hi"},
		{"trim charlist", filter.StringTrim{CharList: "-"}, "--hi-", "hi"},
		{"trim non-string", filter.StringTrim{}, 5, 5},
		{"lower", filter.StringToLower{}, "HeLLo", "hello"},
		{"upper", filter.StringToUpper{}, "straße", "STRASSE"},
		{"strip newlines", filter.StripNewlines{}, "a\r\nb\n", "ab"},
		{"strip tags", filter.StripTags{}, "<b>bold</b> & <i>it</i>", "bold & it"},
		{"strip script", filter.StripTags{}, "x<script>alert(1)</script>", "x"},
		{"sanitize keeps safe markup", filter.HTMLSanitize{}, "<b>ok</b><script>x</script>", "<b>ok</b>"},
		{"to int", filter.ToInt{}, " 42 ", 42},
		{"to int from float", filter.ToInt{}, 7.0, 7},
		{"to int leaves garbage", filter.ToInt{}, "abc", "abc"},
		{"to int nil", filter.ToInt{}, nil, nil},
		{"to float", filter.ToFloat{}, "3.5", 3.5},
		{"boolean yes", filter.Boolean{}, "Yes", true},
		{"boolean off", filter.Boolean{}, "off", false},
		{"boolean 1", filter.Boolean{}, "1", true},
		{"boolean int", filter.Boolean{}, 0, false},
		{"boolean garbage", filter.Boolean{}, "maybe", "maybe"},
		{"to null empty string", filter.ToNull{}, "", nil},
		{"to null empty slice", filter.ToNull{}, []any{}, nil},
		{"to null keeps zero", filter.ToNull{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Filter(tt.in))
		})
	}
}
