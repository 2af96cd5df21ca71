package inputfilter

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Spec is an ordered key/value document describing an element tree. Order
// matters: children are added to their group in spec order.
//
//	spec, err := inputfilter.ParseSpec([]byte(`
//	username:
//	  required: true
//	  filters: [string_trim]
//	  validators:
//	    - name: string_length
//	      options: {min: 3}
//	`))
type Spec struct {
	keys   []string
	values map[string]any
}

// NewSpec returns an empty spec.
func NewSpec() *Spec {
	return &Spec{values: map[string]any{}}
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (s *Spec) Set(key string, v any) *Spec {
	if s.values == nil {
		s.values = map[string]any{}
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
	return s
}

// Get returns the value stored under key.
func (s *Spec) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Spec) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the keys in document order.
func (s *Spec) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// Len returns the number of keys.
func (s *Spec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Map flattens the spec (and nested specs) into plain maps, losing order.
func (s *Spec) Map() map[string]any {
	out := make(map[string]any, s.Len())
	for _, k := range s.Keys() {
		out[k] = plain(s.values[k])
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Spec:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

// UnmarshalYAML decodes a mapping node, keeping key order at every level.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeNode(node)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Spec)
	if !ok {
		return fmt.Errorf("%w: spec must be a mapping, got %s", ErrConfiguration, kindName(node))
	}
	*s = *decoded
	return nil
}

func decodeNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NewSpec(), nil
		}
		return decodeNode(node.Content[0])
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	case yaml.MappingNode:
		spec := NewSpec()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.ShortTag() == "!!merge" {
				if err := mergeInto(spec, valueNode); err != nil {
					return nil, err
				}
				continue
			}
			v, err := decodeNode(valueNode)
			if err != nil {
				return nil, err
			}
			spec.Set(keyNode.Value, v)
		}
		return spec, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrConfiguration, node.Line, err)
		}
		return v, nil
	}
}

// mergeInto applies a YAML merge key (<<: *anchor). Explicit keys already
// set win over merged ones.
func mergeInto(spec *Spec, node *yaml.Node) error {
	v, err := decodeNode(node)
	if err != nil {
		return err
	}
	var sources []*Spec
	switch t := v.(type) {
	case *Spec:
		sources = append(sources, t)
	case []any:
		for _, item := range t {
			if src, ok := item.(*Spec); ok {
				sources = append(sources, src)
			}
		}
	default:
		return fmt.Errorf("%w: line %d: merge value must be a mapping", ErrConfiguration, node.Line)
	}
	for _, src := range sources {
		for _, k := range src.keys {
			if !spec.Has(k) {
				spec.Set(k, src.values[k])
			}
		}
	}
	return nil
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	}
	return "node"
}

// ParseSpec decodes a YAML (or JSON) document into a Spec.
func ParseSpec(data []byte) (*Spec, error) {
	spec := NewSpec()
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("inputfilter: parse spec: %w", err)
	}
	return spec, nil
}

// LoadSpecFile reads and parses the spec at path.
func LoadSpecFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inputfilter: load spec: %w", err)
	}
	return ParseSpec(data)
}

// toSpec normalises the accepted spec shapes. Plain maps get sorted keys;
// sequences are keyed by position.
func toSpec(v any) (*Spec, error) {
	switch t := v.(type) {
	case *Spec:
		if t == nil {
			return nil, fmt.Errorf("%w: nil spec", ErrConfiguration)
		}
		return t, nil
	case Spec:
		return &t, nil
	case map[string]any:
		spec := NewSpec()
		for _, k := range slices.Sorted(maps.Keys(t)) {
			spec.Set(k, t[k])
		}
		return spec, nil
	case []any:
		spec := NewSpec()
		for i, item := range t {
			spec.Set(strconv.Itoa(i), item)
		}
		return spec, nil
	}
	return nil, fmt.Errorf("%w: unsupported spec type %T", ErrConfiguration, v)
}
