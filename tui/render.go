package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nachoal/describe-go/describe"
	"github.com/nachoal/describe-go/tui/styles"
)

const indentUnit = "  "

// RenderJSON prints a decoded result. Compact output is a single unstyled line
// suitable for piping; otherwise keys are sorted, indented and coloured.
func RenderJSON(value any, s *styles.Styles, compact bool) (string, error) {
	if compact {
		b, err := marshal(value)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if s == nil {
		s = styles.Plain()
	}
	var b strings.Builder
	if err := writeValue(&b, value, s, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, value any, s *styles.Styles, depth int) error {
	switch v := value.(type) {
	case map[string]any:
		return writeObject(b, v, s, depth)
	case []any:
		return writeArray(b, v, s, depth)
	case string:
		raw, err := marshal(v)
		if err != nil {
			return err
		}
		b.WriteString(s.String.Render(string(raw)))
	case nil:
		b.WriteString(s.Literal.Render("null"))
	case bool:
		b.WriteString(s.Literal.Render(fmt.Sprintf("%t", v)))
	default:
		raw, err := marshal(v)
		if err != nil {
			return err
		}
		b.WriteString(s.Number.Render(string(raw)))
	}
	return nil
}

func writeObject(b *strings.Builder, obj map[string]any, s *styles.Styles, depth int) error {
	if len(obj) == 0 {
		b.WriteString(s.Punct.Render("{}"))
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	inner := strings.Repeat(indentUnit, depth+1)
	b.WriteString(s.Punct.Render("{"))
	b.WriteString("\n")
	for i, k := range keys {
		rawKey, err := marshal(k)
		if err != nil {
			return err
		}
		b.WriteString(inner)
		b.WriteString(s.Key.Render(string(rawKey)))
		b.WriteString(s.Punct.Render(":"))
		b.WriteString(" ")
		if err := writeValue(b, obj[k], s, depth+1); err != nil {
			return err
		}
		if i < len(keys)-1 {
			b.WriteString(s.Punct.Render(","))
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString(s.Punct.Render("}"))
	return nil
}

func writeArray(b *strings.Builder, arr []any, s *styles.Styles, depth int) error {
	if len(arr) == 0 {
		b.WriteString(s.Punct.Render("[]"))
		return nil
	}
	inner := strings.Repeat(indentUnit, depth+1)
	b.WriteString(s.Punct.Render("["))
	b.WriteString("\n")
	for i, item := range arr {
		b.WriteString(inner)
		if err := writeValue(b, item, s, depth+1); err != nil {
			return err
		}
		if i < len(arr)-1 {
			b.WriteString(s.Punct.Render(","))
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString(s.Punct.Render("]"))
	return nil
}

// marshal encodes without HTML escaping so model text prints as written
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RenderError prints a failure as "Kind: message"
func RenderError(err error, s *styles.Styles) string {
	if err == nil {
		return ""
	}
	if s == nil {
		s = styles.Plain()
	}
	kind := describe.KindOf(err).String()
	return s.ErrorKind.Render(kind+":") + " " + s.ErrorMessage.Render(err.Error())
}
