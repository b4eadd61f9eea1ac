package attrs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rgonek/lessonmd/widget"
)

var (
	// ErrMissingProperty indicates a required property absent from the tag.
	ErrMissingProperty = errors.New("missing required property")
	// ErrInvalidValue indicates a literal that does not fit the declared kind.
	ErrInvalidValue = errors.New("invalid property value")
)

// PropertyError reports a decode or encode failure for one property.
type PropertyError struct {
	Widget   string
	Property string
	Err      error
	Detail   string
}

func (e *PropertyError) Error() string {
	msg := fmt.Sprintf("%s.%s: %v", e.Widget, e.Property, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// Issue is a non-fatal decode finding.
type Issue struct {
	Property string
	Message  string
}

// Decode lexes raw attribute text and decodes it against desc's schema.
//
// Attributes outside the schema are kept in the bag, decoded by literal shape,
// and reported as issues. When an attribute repeats, the last one wins. A
// missing or undecodable required property is returned as a *PropertyError;
// an undecodable optional property is dropped with an issue.
func Decode(desc widget.Descriptor, raw string) (widget.Props, []Issue, error) {
	list, err := Lex(raw)
	if err != nil {
		return nil, nil, err
	}
	return DecodeAttributes(desc, list)
}

// DecodeAttributes decodes already lexed attributes. See Decode.
func DecodeAttributes(desc widget.Descriptor, list []Attribute) (widget.Props, []Issue, error) {
	var issues []Issue
	byName := make(map[string]Attribute, len(list))
	var order []string
	for _, attr := range list {
		if _, seen := byName[attr.Name]; seen {
			issues = append(issues, Issue{Property: attr.Name, Message: "duplicate attribute, last value used"})
		} else {
			order = append(order, attr.Name)
		}
		byName[attr.Name] = attr
	}

	props := make(widget.Props, len(byName))
	for _, prop := range desc.Properties {
		attr, ok := byName[prop.Name]
		if !ok {
			if prop.Required {
				return nil, issues, &PropertyError{Widget: desc.Name, Property: prop.Name, Err: ErrMissingProperty}
			}
			continue
		}

		value, err := decodeValue(prop.Kind, attr)
		if err != nil {
			if prop.Required {
				return nil, issues, &PropertyError{Widget: desc.Name, Property: prop.Name, Err: ErrInvalidValue, Detail: err.Error()}
			}
			issues = append(issues, Issue{Property: prop.Name, Message: err.Error()})
			continue
		}
		props[prop.Name] = value
	}

	for _, name := range order {
		if _, known := desc.Property(name); known {
			continue
		}
		props[name] = decodeByShape(byName[name])
		issues = append(issues, Issue{Property: name, Message: fmt.Sprintf("%s does not declare %s", desc.Name, name)})
	}

	return props, issues, nil
}

func decodeValue(kind widget.Kind, attr Attribute) (any, error) {
	switch kind {
	case widget.KindString:
		if attr.Form == Quoted {
			return attr.Value, nil
		}
		var s string
		if err := json.Unmarshal([]byte(strings.TrimSpace(attr.Value)), &s); err != nil {
			return nil, fmt.Errorf("expected a string literal, got {%s}", attr.Value)
		}
		return s, nil

	case widget.KindNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("expected a number, got %q", attr.Value)
		}
		return n, nil

	case widget.KindBoolean:
		switch strings.TrimSpace(attr.Value) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("expected true or false, got %q", attr.Value)

	case widget.KindExpression:
		if attr.Form == Quoted {
			return attr.Value, nil
		}
		return decodeExpression(attr.Value), nil

	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

func decodeByShape(attr Attribute) any {
	if attr.Form == Quoted {
		return attr.Value
	}
	return decodeExpression(attr.Value)
}

// decodeExpression parses a brace literal as JSON, keeping the trimmed text
// as a RawExpression when it is not valid JSON.
func decodeExpression(literal string) any {
	text := strings.TrimSpace(literal)
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return widget.RawExpression(text)
	}
	return value
}

// Encode renders props as attribute text: schema properties in schema order,
// then undeclared properties sorted by name. Nil values are omitted. A
// required property that is missing or nil is a *PropertyError wrapping
// ErrMissingProperty.
func Encode(desc widget.Descriptor, props widget.Props) (string, error) {
	for _, name := range desc.Required() {
		if props[name] == nil {
			return "", &PropertyError{Widget: desc.Name, Property: name, Err: ErrMissingProperty}
		}
	}

	parts := make([]string, 0, len(props))
	for _, prop := range desc.Properties {
		value, ok := props[prop.Name]
		if !ok || value == nil {
			continue
		}
		text, err := encodeValue(prop.Kind, value)
		if err != nil {
			return "", &PropertyError{Widget: desc.Name, Property: prop.Name, Err: ErrInvalidValue, Detail: err.Error()}
		}
		parts = append(parts, prop.Name+"="+text)
	}

	var extras []string
	for name, value := range props {
		if _, known := desc.Property(name); known || value == nil {
			continue
		}
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		kind := widget.KindExpression
		if _, isString := props[name].(string); isString {
			kind = widget.KindString
		}
		text, err := encodeValue(kind, props[name])
		if err != nil {
			return "", &PropertyError{Widget: desc.Name, Property: name, Err: ErrInvalidValue, Detail: err.Error()}
		}
		parts = append(parts, name+"="+text)
	}

	return strings.Join(parts, " "), nil
}

func encodeValue(kind widget.Kind, value any) (string, error) {
	switch kind {
	case widget.KindString:
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", value)
		}
		return Quote(s), nil

	case widget.KindNumber:
		n, ok := widget.AsNumber(value)
		if !ok {
			return "", fmt.Errorf("expected number, got %T", value)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("number %v has no literal form", n)
		}
		return "{" + widget.FormatNumber(n) + "}", nil

	case widget.KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("expected boolean, got %T", value)
		}
		return "{" + strconv.FormatBool(b) + "}", nil

	default:
		if raw, ok := value.(widget.RawExpression); ok {
			return "{" + string(raw) + "}", nil
		}
		text, err := Canonical(value)
		if err != nil {
			return "", err
		}
		return "{" + text + "}", nil
	}
}

// Canonical returns the compact JSON text of value with object keys sorted and
// without HTML escaping.
func Canonical(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("failed to encode expression: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Quote returns s as a double-quoted attribute literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}
