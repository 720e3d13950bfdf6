package instacrawl

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// The record validator is the last gate before a result leaves a collection
// call. Tag-based rules live on the types themselves; the cross-field rule
// that every aggregate's Count equals the length of its list is registered
// here as struct-level validations.

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(Posts)
		if p.Count != len(p.Posts) {
			sl.ReportError(p.Count, "Count", "Count", "lencount", "")
		}
	}, Posts{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		u := sl.Current().Interface().(Users)
		if u.Count != len(u.Users) {
			sl.ReportError(u.Count, "Count", "Count", "lencount", "")
		}
	}, Users{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Comments)
		if c.Count != len(c.Comments) {
			sl.ReportError(c.Count, "Count", "Count", "lencount", "")
		}
	}, Comments{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		h := sl.Current().Interface().(HashtagBasicInfos)
		if h.Count != len(h.Hashtags) {
			sl.ReportError(h.Count, "Count", "Count", "lencount", "")
		}
	}, HashtagBasicInfos{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		m := sl.Current().Interface().(MusicPosts)
		if m.Count != len(m.Posts) {
			sl.ReportError(m.Count, "Count", "Count", "lencount", "")
		}
	}, MusicPosts{})
	return v
}

// validateRecord checks a canonical record against its declared invariants.
func validateRecord(record any) error {
	if err := recordValidator.Struct(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
