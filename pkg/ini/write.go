package ini

import (
	"fmt"
	"io"
	"strings"
)

// WriteSection renders a section back to its textual form.
func WriteSection(w io.Writer, s *Section) error {
	if _, err := fmt.Fprintf(w, "[%s]\n", s.Name); err != nil {
		return err
	}
	for _, p := range s.Properties {
		if _, err := fmt.Fprintf(w, "%s = %s\n", p.Name, formatValue(p.Value)); err != nil {
			return err
		}
	}
	return nil
}

// FormatSection renders a section to a string.
func FormatSection(s *Section) string {
	var b strings.Builder
	WriteSection(&b, s)
	return b.String()
}

func formatValue(v Value) string {
	switch v := v.(type) {
	case *StringValue:
		return quoteIfNeeded(v.Content)
	case *ListValue:
		quoted := make([]string, len(v.Items))
		for i, item := range v.Items {
			quoted[i] = quoteIfNeeded(item)
		}
		return strings.Join(quoted, ", ")
	case *TupleValue:
		// A tuple holding a single list prints as one braced group,
		// undoing the wrapping the reader applies to braced scalars.
		if len(v.Items) == 1 {
			if l, ok := v.Items[0].(*ListValue); ok {
				return "{" + l.String() + "}"
			}
		}
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = formatTupleItem(item)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

func formatTupleItem(v Value) string {
	switch v := v.(type) {
	case *StringValue:
		return quoteIfNeeded(v.Content)
	case *ListValue:
		return "{" + v.String() + "}"
	case *TupleValue:
		if len(v.Items) == 1 {
			if l, ok := v.Items[0].(*ListValue); ok {
				return "{" + l.String() + "}"
			}
		}
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = formatTupleItem(item)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// quoteIfNeeded wraps a scalar in double quotes when it contains
// characters the reader would otherwise treat as structure.
func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",{}#;\"") || s != strings.TrimSpace(s) {
		return `"` + strings.ReplaceAll(s, `"`, ``) + `"`
	}
	return s
}
