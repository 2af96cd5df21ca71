package inputfilter

// Element is a node of an input filter tree. It is implemented by *Input
// (a leaf), *InputFilter (a named group) and *CollectionInputFilter (a
// group template repeated over a list of records), and by nothing else.
type Element interface {
	Name() string
	SetName(name string)

	cloneElement() Element
}

// group is the behaviour shared by *InputFilter and *CollectionInputFilter
// when nested inside an InputFilter.
type group interface {
	Element

	SetData(data any) error
	IsValid(context map[string]any) (bool, error)

	valueTree() any
	rawValueTree() any
	messageTree() any
	emptyData() any
}

var (
	_ Element = (*Input)(nil)
	_ group   = (*InputFilter)(nil)
	_ group   = (*CollectionInputFilter)(nil)
)

// walk calls fn for el and every element nested below it. Collection
// templates are cloned per record, so they are not part of the tree.
func walk(el Element, fn func(Element)) {
	fn(el)
	if f, ok := el.(*InputFilter); ok {
		for _, name := range f.names {
			walk(f.elements[name], fn)
		}
	}
}
