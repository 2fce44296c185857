// Package descriptor renders a compiled schema.Template into inspectable
// forms: a JSON-shaped map, a YAML document, and a human-readable text
// dump, mirroring the way the teacher's pkg/generator renders a parsed
// Device into Go/C++ source instead of wire code.
package descriptor

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dspasibenko/boxon/schema"
)

// Describe renders tmpl into a JSON-shaped map: string keys, and values
// built only from map[string]any, []any, string, int, bool and nil, so
// the result marshals cleanly with encoding/json or gopkg.in/yaml.v3
// without struct tags.
func Describe(tmpl *schema.Template) map[string]any {
	out := map[string]any{
		"type": tmpl.Type.String(),
	}
	if tmpl.Header != nil {
		out["header"] = describeHeader(tmpl.Header)
	}
	fields := make([]any, 0, len(tmpl.Fields))
	for _, f := range tmpl.Fields {
		fields = append(fields, describeField(f))
	}
	out["fields"] = fields

	if len(tmpl.Evaluated) > 0 {
		ev := make([]any, 0, len(tmpl.Evaluated))
		for _, e := range tmpl.Evaluated {
			ev = append(ev, map[string]any{
				"name":           e.Name,
				"valueExpr":      e.ValueExpr,
				"writeCondition": e.WriteCondition,
			})
		}
		out["evaluated"] = ev
	}

	if len(tmpl.PostProcessed) > 0 {
		pp := make([]any, 0, len(tmpl.PostProcessed))
		for _, p := range tmpl.PostProcessed {
			pp = append(pp, map[string]any{
				"name":        p.Name,
				"decodeApply": p.DecodeApply != nil,
				"encodeApply": p.EncodeApply != nil,
			})
		}
		out["postProcessed"] = pp
	}

	if tmpl.Checksum != nil {
		c := tmpl.Checksum
		out["checksum"] = map[string]any{
			"bits":        c.Bits,
			"order":       c.Order.String(),
			"algorithm":   c.Algorithm,
			"storeAs":     c.StoreAs,
			"startOffset": c.StartOffset,
			"endOffset":   c.EndOffset,
		}
	}

	return out
}

func describeHeader(h *schema.Header) map[string]any {
	m := map[string]any{}
	if h.Start != "" {
		m["start"] = h.Start
	}
	if h.End != "" {
		m["end"] = h.End
	}
	if h.Charset != "" {
		m["charset"] = h.Charset
	}
	if h.MinProtocol != "" {
		m["minProtocol"] = h.MinProtocol
	}
	if h.MaxProtocol != "" {
		m["maxProtocol"] = h.MaxProtocol
	}
	return m
}

func describeField(f *schema.BoundField) map[string]any {
	m := map[string]any{
		"name": f.Name,
		"kind": f.Binding.Kind().String(),
	}
	if len(f.Skips) > 0 {
		skips := make([]any, 0, len(f.Skips))
		for _, s := range f.Skips {
			sm := map[string]any{"consume": s.Consume}
			if s.Bits > 0 {
				sm["bits"] = s.Bits
			}
			if s.UntilTerminator != nil {
				sm["untilTerminator"] = int(*s.UntilTerminator)
			}
			skips = append(skips, sm)
		}
		m["skips"] = skips
	}

	switch b := f.Binding.(type) {
	case schema.Integer:
		m["sizeExpr"] = b.SizeExpr
		m["order"] = b.Order.String()
		m["signed"] = b.Signed
		if b.Collection != "" {
			m["collection"] = b.Collection
		}
	case schema.BitSet:
		m["sizeExpr"] = b.SizeExpr
		m["order"] = b.Order.String()
		if b.Collection != "" {
			m["collection"] = b.Collection
		}
	case schema.StringFixed:
		m["sizeExpr"] = b.SizeExpr
		m["charset"] = b.Charset
		if b.Collection != "" {
			m["collection"] = b.Collection
		}
	case schema.StringTerminated:
		m["terminator"] = int(b.Terminator)
		m["consumeTerminator"] = b.ConsumeTerminator
		m["charset"] = b.Charset
		if b.Collection != "" {
			m["collection"] = b.Collection
		}
	case schema.Object:
		m["elemType"] = b.Type.String()
		if b.SelectFrom != nil {
			m["selectFrom"] = describeVariantChoices(b.SelectFrom)
		}
	case schema.Array:
		m["elemType"] = b.ElemType.String()
		m["sizeExpr"] = b.SizeExpr
		if b.SelectFrom != nil {
			m["selectFrom"] = describeVariantChoices(b.SelectFrom)
		}
	case schema.ListSeparated:
		m["elemType"] = b.ElemType.String()
		m["terminator"] = int(b.Terminator)
		m["charset"] = b.Charset
		if b.SelectSeparated != nil {
			m["selectSeparated"] = describeVariantChoices(b.SelectSeparated)
		}
	}
	return m
}

func describeVariantChoices(vc *schema.VariantChoices) map[string]any {
	choices := make([]any, 0, len(vc.Choices))
	for _, c := range vc.Choices {
		choices = append(choices, map[string]any{
			"condition": c.Condition,
			"type":      c.Type.String(),
		})
	}
	m := map[string]any{
		"prefixLength": vc.PrefixLength,
		"choices":      choices,
	}
	if vc.Default != nil {
		m["default"] = vc.Default.String()
	}
	return m
}

// DumpYAML renders Describe(tmpl) as a YAML document.
func DumpYAML(tmpl *schema.Template) (string, error) {
	b, err := yaml.Marshal(Describe(tmpl))
	if err != nil {
		return "", fmt.Errorf("descriptor: marshal yaml: %w", err)
	}
	return string(b), nil
}

//
// human-readable text dump
//

const textTemplate = `{{.TypeName}}
{{- if .Header}}
  header: {{.Header}}
{{- end}}
fields:
{{- range .Fields}}
  {{.Title}} ({{.Kind}}){{if .Detail}} — {{.Detail}}{{end}}
{{- end}}
{{- if .Evaluated}}
evaluated:
{{- range .Evaluated}}
  {{.}}
{{- end}}
{{- end}}
{{- if .Checksum}}
checksum: {{.Checksum}}
{{- end}}
`

type textField struct {
	Title  string
	Kind   string
	Detail string
}

type textDoc struct {
	TypeName  string
	Header    string
	Fields    []textField
	Evaluated []string
	Checksum  string
}

var titleCaser = cases.Title(language.English)

// Dump renders tmpl as a short human-readable report, titling field names
// the same way the teacher's generator titles register field names for
// generated-code identifiers.
func Dump(tmpl *schema.Template) (string, error) {
	tpl, err := template.New("descriptor").Parse(textTemplate)
	if err != nil {
		return "", fmt.Errorf("descriptor: parse template: %w", err)
	}

	doc := textDoc{TypeName: tmpl.Type.String()}
	if tmpl.Header != nil {
		doc.Header = fmt.Sprintf("%q..%q", tmpl.Header.Start, tmpl.Header.End)
	}
	for _, f := range tmpl.Fields {
		doc.Fields = append(doc.Fields, textField{
			Title:  titleCaser.String(f.Name),
			Kind:   f.Binding.Kind().String(),
			Detail: fieldDetail(f.Binding),
		})
	}
	for _, e := range tmpl.Evaluated {
		doc.Evaluated = append(doc.Evaluated, fmt.Sprintf("%s = %s", titleCaser.String(e.Name), e.ValueExpr))
	}
	if tmpl.Checksum != nil {
		doc.Checksum = fmt.Sprintf("%s/%d over [%d,%d) -> %s",
			tmpl.Checksum.Algorithm, tmpl.Checksum.Bits, tmpl.Checksum.StartOffset, tmpl.Checksum.EndOffset, tmpl.Checksum.StoreAs)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("descriptor: execute template: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func fieldDetail(b schema.Binding) string {
	switch v := b.(type) {
	case schema.Integer:
		return fmt.Sprintf("%s bits, %s", v.SizeExpr, v.Order)
	case schema.BitSet:
		return fmt.Sprintf("%s bits", v.SizeExpr)
	case schema.StringFixed:
		return fmt.Sprintf("%s bytes, %s", v.SizeExpr, v.Charset)
	case schema.StringTerminated:
		return fmt.Sprintf("terminated 0x%02X, %s", v.Terminator, v.Charset)
	case schema.Object:
		return v.Type.String()
	case schema.Array:
		return fmt.Sprintf("%s x %s", v.SizeExpr, v.ElemType)
	case schema.ListSeparated:
		return fmt.Sprintf("%s, terminated 0x%02X", v.ElemType, v.Terminator)
	}
	return ""
}
