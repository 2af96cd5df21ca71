package inputfilter

import (
	"fmt"
	"iter"
	"net/url"
	"reflect"
	"slices"
)

// Cursor is a forward-only key/value iterator accepted by SetData.
//
//	for cur.Next() {
//	    use(cur.Key(), cur.Value())
//	}
type Cursor interface {
	Next() bool
	Key() string
	Value() any
}

// toMap normalises the accepted map-like data sources into map[string]any.
// The map is returned as-is when data already has that type.
func toMap(data any) (map[string]any, bool) {
	switch d := data.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return d, true
	case map[string]string:
		out := make(map[string]any, len(d))
		for k, v := range d {
			out[k] = v
		}
		return out, true
	case url.Values:
		return fromValues(d), true
	case iter.Seq2[string, any]:
		return collect(d), true
	case func(yield func(string, any) bool):
		return collect(d), true
	case Cursor:
		out := make(map[string]any)
		for d.Next() {
			out[d.Key()] = d.Value()
		}
		return out, true
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[it.Key().String()] = it.Value().Interface()
	}
	return out, true
}

func collect(seq iter.Seq2[string, any]) map[string]any {
	out := make(map[string]any)
	for k, v := range seq {
		out[k] = v
	}
	return out
}

// fromValues flattens form values: single values become plain strings,
// repeated keys keep every value.
func fromValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			out[k] = vals[0]
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		out[k] = list
	}
	return out
}

// toRecords normalises a collection data source into a list of records.
// nil is an empty collection.
func toRecords(data any) ([]map[string]any, error) {
	var items []any
	switch d := data.(type) {
	case nil:
		return []map[string]any{}, nil
	case []map[string]any:
		return d, nil
	case []any:
		items = d
	case iter.Seq[any]:
		items = slices.Collect(d)
	case func(yield func(any) bool):
		items = slices.Collect(iter.Seq[any](d))
	default:
		rv := reflect.ValueOf(data)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("%w: collection data must be a sequence, got %T", ErrInvalidArgument, data)
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	records := make([]map[string]any, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: invalid item in collection at index %d: <nil>", ErrInvalidArgument, i)
		}
		rec, ok := toMap(item)
		if !ok {
			return nil, fmt.Errorf("%w: invalid item in collection at index %d: %T", ErrInvalidArgument, i, item)
		}
		records[i] = rec
	}
	return records, nil
}
