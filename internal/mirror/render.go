package mirror

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
)

var ErrInvalidDocument = errors.New("mirror: invalid config document")

const documentTemplate = `[options]
sync_packages = {{.SyncPackages}}
{{- if .ShadowmireUpstream}}
shadowmire_upstream = {{quote .ShadowmireUpstream}}
{{- end}}
exclude = [
{{- range .Exclude}}
    {{quote .}},
{{- end}}
]
prerelease_exclude = [
{{- range .PrereleaseExclude}}
    {{quote .}},
{{- end}}
]
`

var documentTmpl = template.Must(template.New("shadowmire").
	Funcs(template.FuncMap{"quote": quote}).
	Parse(documentTemplate))

// Render produces the config text. Output depends only on doc.
func Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, doc.Options); err != nil {
		return nil, fmt.Errorf("%w: render: %v", ErrInvalidDocument, err)
	}
	return buf.Bytes(), nil
}

// Validate parses data as a shadowmire config and rejects keys outside the
// options table.
func Validate(data []byte) (Document, error) {
	var doc Document
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return Document{}, fmt.Errorf("%w: parse: %v", ErrInvalidDocument, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Document{}, fmt.Errorf("%w: unknown keys: %s", ErrInvalidDocument, strings.Join(keys, ", "))
	}
	for _, key := range []string{"sync_packages", "exclude", "prerelease_exclude"} {
		if !meta.IsDefined("options", key) {
			return Document{}, fmt.Errorf("%w: options.%s missing", ErrInvalidDocument, key)
		}
	}
	if !doc.Options.SyncPackages {
		return Document{}, fmt.Errorf("%w: options.sync_packages must be true", ErrInvalidDocument)
	}
	return doc, nil
}

// RenderChecked renders doc and confirms the text decodes back to doc.
func RenderChecked(doc Document) ([]byte, error) {
	data, err := Render(doc)
	if err != nil {
		return nil, err
	}
	parsed, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !reflect.DeepEqual(parsed, doc) {
		return nil, fmt.Errorf("%w: rendered document does not round-trip", ErrInvalidDocument)
	}
	return data, nil
}

// quote writes s as a TOML basic string.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
