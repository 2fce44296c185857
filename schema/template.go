package schema

import "reflect"

// Header describes the verbatim start/end markers a Template's wire form
// carries, plus the min/max protocol gate validated at compile time.
type Header struct {
	Start       string
	End         string
	Charset     string
	MinProtocol string
	MaxProtocol string
}

// Template is the compiled, immutable schema for one user type. Field
// order is wire order. Templates are shared read-only after compilation
// and may be cached/reused across any number of Parse/Compose calls.
type Template struct {
	Type          reflect.Type
	Header        *Header
	Fields        []*BoundField
	Evaluated     []*EvaluatedField
	PostProcessed []*PostProcessedField
	Checksum      *Checksum
}

// FieldByName returns the BoundField with the given name, or nil.
func (t *Template) FieldByName(name string) *BoundField {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// PostProcessedFor returns the PostProcessedField registered against name,
// or nil. Used on the encode path, where the engine runs EncodeApply
// immediately before the named field's own codec (spec.md §4.7), unlike
// decode's DecodeApply which runs as a single batch after Evaluated
// fields.
func (t *Template) PostProcessedFor(name string) *PostProcessedField {
	for _, p := range t.PostProcessed {
		if p.Name == name {
			return p
		}
	}
	return nil
}
