package inputfilter

import (
	"fmt"
	"maps"

	"github.com/km-arc/go-inputfilter/framework/validator"
)

// CodeCountMismatch is the collection-level failure code reported when an
// explicit count asks for more records than were submitted.
const CodeCountMismatch = "collectionCountMismatch"

// CollectionInputFilter validates a list of records against one template
// InputFilter. Every record is validated by a fresh clone of the template,
// so nothing recorded for one record is visible to the next.
//
//	tags := inputfilter.NewCollection(labelFilter)
//	_ = tags.SetData([]any{map[string]any{"label": "x"}, map[string]any{}})
//	ok, _ := tags.IsValid(nil) // false
//	tags.Messages()            // map[1:map[label:map[isEmpty:...]]]
type CollectionInputFilter struct {
	name     string
	template *InputFilter
	required bool
	notEmpty *validator.NotEmpty

	count         int
	explicitCount bool

	records []map[string]any
	hasData bool

	values        []any
	rawValues     []any
	messages      map[int]any
	collectionMsg validator.Messages
	validInputs   map[int]map[string]Element
	invalidInputs map[int]map[string]Element
	unknown       map[int]map[string]any
}

// NewCollection returns an optional collection over template. A nil
// template is replaced by an empty InputFilter.
func NewCollection(template *InputFilter) *CollectionInputFilter {
	if template == nil {
		template = New()
	}
	return &CollectionInputFilter{
		template: template,
		notEmpty: &validator.NotEmpty{},
	}
}

// Name returns the collection's name, its default key in a parent group.
func (c *CollectionInputFilter) Name() string { return c.name }

// SetName renames the collection.
func (c *CollectionInputFilter) SetName(name string) { c.name = name }

// InputFilter returns the template applied to each record.
func (c *CollectionInputFilter) InputFilter() *InputFilter { return c.template }

// SetInputFilter replaces the record template; nil installs an empty one.
func (c *CollectionInputFilter) SetInputFilter(template *InputFilter) *CollectionInputFilter {
	if template == nil {
		template = New()
	}
	c.template = template
	return c
}

// IsRequired reports whether an empty collection is a failure.
func (c *CollectionInputFilter) IsRequired() bool { return c.required }

// SetRequired sets whether an empty collection fails.
func (c *CollectionInputFilter) SetRequired(required bool) *CollectionInputFilter {
	c.required = required
	return c
}

// SetRequiredMessage overrides the isEmpty message of a required, empty
// collection.
func (c *CollectionInputFilter) SetRequiredMessage(msg string) *CollectionInputFilter {
	c.notEmpty = &validator.NotEmpty{Messages: validator.Messages{validator.CodeIsEmpty: msg}}
	return c
}

// ── Count ────────────────────────────────────────────────────────────────────

// Count returns the value of whichever of SetCount and SetData ran last.
func (c *CollectionInputFilter) Count() int { return c.count }

// SetCount sets the expected number of records. When it exceeds the number
// of submitted records, IsValid fails with CodeCountMismatch.
func (c *CollectionInputFilter) SetCount(n int) *CollectionInputFilter {
	c.count = n
	c.explicitCount = true
	return c
}

// ── Data ─────────────────────────────────────────────────────────────────────

// SetData stores the records and derives the count from them. data must be a
// slice, array or iter.Seq[any] whose items are all map-like. On error the
// previous cycle is dropped and IsValid fails with ErrRuntimeUsage.
func (c *CollectionInputFilter) SetData(data any) error {
	records, err := toRecords(data)
	if err != nil {
		c.clearData()
		return err
	}

	c.records = records
	c.hasData = true
	c.count = len(records)
	c.explicitCount = false
	c.resetResults()

	c.unknown = make(map[int]map[string]any)
	c.values = make([]any, len(records))
	c.rawValues = make([]any, len(records))
	for i, rec := range records {
		f := c.template.Clone()
		if err := f.SetData(rec); err != nil {
			c.clearData()
			return fmt.Errorf("collection item %d: %w", i, err)
		}
		c.values[i] = f.Values()
		c.rawValues[i] = f.RawValues()
		if len(f.unknown) > 0 {
			c.unknown[i] = f.unknown
		}
	}
	return nil
}

func (c *CollectionInputFilter) emptyData() any { return []any{} }

// clearData drops a partially applied cycle so IsValid reports
// ErrRuntimeUsage until the next successful SetData.
func (c *CollectionInputFilter) clearData() {
	c.records = nil
	c.hasData = false
	c.values = nil
	c.rawValues = nil
	c.unknown = nil
}

func (c *CollectionInputFilter) resetResults() {
	c.messages = make(map[int]any)
	c.collectionMsg = validator.Messages{}
	c.validInputs = make(map[int]map[string]Element)
	c.invalidInputs = make(map[int]map[string]Element)
}

// ── Validation ───────────────────────────────────────────────────────────────

// IsValid validates every record; a failing record does not stop the
// others. A required collection without records fails with a single
// collection-level isEmpty message.
//
// Records are validated in isolation: context is not forwarded to them.
func (c *CollectionInputFilter) IsValid(_ map[string]any) (bool, error) {
	if !c.hasData {
		return false, fmt.Errorf("%w: IsValid called before SetData", ErrRuntimeUsage)
	}
	c.resetResults()

	if c.required && len(c.records) == 0 {
		_, msgs := c.notEmpty.IsValid(nil, nil)
		c.collectionMsg = msgs
		return false, nil
	}

	valid := true
	if c.explicitCount && c.count > len(c.records) {
		c.collectionMsg[CodeCountMismatch] = fmt.Sprintf(
			"The collection must contain %d items, %d given", c.count, len(c.records))
		valid = false
	}

	for i, rec := range c.records {
		f := c.template.Clone()
		if err := f.SetData(rec); err != nil {
			return false, fmt.Errorf("collection item %d: %w", i, err)
		}
		ok, err := f.IsValid(nil)
		if err != nil {
			return false, fmt.Errorf("collection item %d: %w", i, err)
		}
		if ok {
			c.validInputs[i] = f.ValidInput()
		} else {
			c.invalidInputs[i] = f.InvalidInput()
			c.messages[i] = f.Messages()
			valid = false
		}
		c.values[i] = f.Values()
		c.rawValues[i] = f.RawValues()
	}
	return valid, nil
}

// Messages returns the failures of the last validation keyed by record
// index. Only failing records appear.
func (c *CollectionInputFilter) Messages() map[int]any { return maps.Clone(c.messages) }

// CollectionMessages returns failures that concern the collection as a
// whole rather than one record.
func (c *CollectionInputFilter) CollectionMessages() validator.Messages {
	return maps.Clone(c.collectionMsg)
}

// messageTree reports collection-level failures in place of record
// failures when there are any.
func (c *CollectionInputFilter) messageTree() any {
	if len(c.collectionMsg) > 0 {
		return c.CollectionMessages()
	}
	return c.Messages()
}

// ValidInput returns, per passing record index, the elements of that record.
func (c *CollectionInputFilter) ValidInput() map[int]map[string]Element {
	return maps.Clone(c.validInputs)
}

// InvalidInput returns, per failing record index, the elements that failed.
func (c *CollectionInputFilter) InvalidInput() map[int]map[string]Element {
	return maps.Clone(c.invalidInputs)
}

// ── Values ───────────────────────────────────────────────────────────────────

// Values returns the filtered values of every record, in record order.
func (c *CollectionInputFilter) Values() []any { return cloneList(c.values) }

// RawValues returns the unfiltered values of every record, in record order.
func (c *CollectionInputFilter) RawValues() []any { return cloneList(c.rawValues) }

func (c *CollectionInputFilter) valueTree() any    { return c.Values() }
func (c *CollectionInputFilter) rawValueTree() any { return c.RawValues() }

func cloneList(list []any) []any {
	if list == nil {
		return []any{}
	}
	out := make([]any, len(list))
	copy(out, list)
	return out
}

// ── Unknown fields ───────────────────────────────────────────────────────────

// HasUnknown reports whether any record carried unregistered keys.
func (c *CollectionInputFilter) HasUnknown() (bool, error) {
	if !c.hasData {
		return false, fmt.Errorf("%w: HasUnknown called before SetData", ErrRuntimeUsage)
	}
	return len(c.unknown) > 0, nil
}

// Unknown returns the unregistered keys of each record that had any, keyed
// by record index.
func (c *CollectionInputFilter) Unknown() (map[int]map[string]any, error) {
	if !c.hasData {
		return nil, fmt.Errorf("%w: Unknown called before SetData", ErrRuntimeUsage)
	}
	return maps.Clone(c.unknown), nil
}

// ── Clone ────────────────────────────────────────────────────────────────────

// Clone returns a copy with a cloned template and no cycle state.
func (c *CollectionInputFilter) Clone() *CollectionInputFilter {
	return &CollectionInputFilter{
		name:          c.name,
		template:      c.template.Clone(),
		required:      c.required,
		notEmpty:      c.notEmpty,
		count:         c.count,
		explicitCount: c.explicitCount,
	}
}

func (c *CollectionInputFilter) cloneElement() Element { return c.Clone() }
