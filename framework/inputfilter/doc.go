// Package inputfilter filters and validates trees of named values.
//
// A tree is built from three element kinds:
//
//   - Input: one field with a filter chain and a validator chain.
//   - InputFilter: an ordered group of named elements.
//   - CollectionInputFilter: a template InputFilter applied to every record
//     of a list.
//
// Trees are assembled by hand or by a Factory from a Spec:
//
//	spec, _ := inputfilter.LoadSpecFile("signup.yaml")
//	form, err := inputfilter.NewFactory(plugin.NewDefault()).CreateInputFilter(spec)
//	if err != nil {
//	    return err
//	}
//	_ = form.SetData(r.PostForm)
//	ok, err := form.IsValid(nil)
//	if !ok {
//	    msgs := form.Messages() // {"email": {"emailAddressInvalidFormat": "..."}}
//	}
//
// Values, RawValues and Messages mirror the tree: maps for groups, lists
// for collection values, and maps keyed by the failing record index for
// collection messages.
//
// Failed validation is reported as false plus messages, never as an error.
// Errors are reserved for misuse: a bad spec (ErrConfiguration), data of the
// wrong shape (ErrInvalidArgument), an undeclared name (ErrNotFound) and
// queries before SetData (ErrRuntimeUsage).
//
// Elements hold per-cycle state. Run one validation at a time per instance,
// or work on a Clone.
package inputfilter
