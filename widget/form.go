package widget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

// Hidden fields carried by edit forms.
const (
	SegmentField = "_segment"
	OpField      = "_op"
)

// Edit form operations.
const (
	OpUpdate = "update"
	OpDelete = "delete"
)

// ErrInvalidForm indicates a submitted edit form that does not satisfy the schema.
var ErrInvalidForm = errors.New("invalid widget form")

var formTemplate = template.Must(template.New("form").Parse(`
{{- define "form" -}}
<form class="widget-form" method="post" action="{{.Action}}" data-widget="{{.Name}}">
<input type="hidden" name="` + SegmentField + `" value="{{.Segment}}">
<input type="hidden" name="` + OpField + `" value="` + OpUpdate + `">
{{- range .Fields}}
<label class="widget-field widget-field-{{.Kind}}"><span>{{.Label}}{{if .Required}} *{{end}}</span>
{{- if eq .Kind "expression"}}<textarea name="{{.Name}}" rows="8"{{if .Required}} required{{end}}>{{.Value}}</textarea>
{{- else if .Options}}<select name="{{.Name}}"{{if .Required}} required{{end}}>{{$v := .Value}}{{range .Options}}<option value="{{.}}"{{if eq . $v}} selected{{end}}>{{.}}</option>{{end}}</select>
{{- else if eq .Kind "boolean"}}<input type="checkbox" name="{{.Name}}" value="true"{{if eq .Value "true"}} checked{{end}}>
{{- else if eq .Kind "number"}}<input type="number" step="any" name="{{.Name}}" value="{{.Value}}"{{if .Required}} required{{end}}>
{{- else}}<input type="text" name="{{.Name}}" value="{{.Value}}"{{if .Required}} required{{end}}>
{{- end}}
{{- if .Help}}<small>{{.Help}}</small>{{end}}</label>
{{- end}}
<button type="submit">Save</button>
</form>
{{- end -}}
`))

type formField struct {
	Name     string
	Label    string
	Help     string
	Kind     Kind
	Required bool
	Options  []string
	Value    string
}

// RenderForm renders the schema-driven edit form for desc.
func RenderForm(desc Descriptor, props Props, target EditTarget) (template.HTML, error) {
	fields := make([]formField, 0, len(desc.Properties))
	for _, prop := range desc.Properties {
		label := prop.Label
		if label == "" {
			label = prop.Name
		}
		value, err := formValue(prop, props[prop.Name])
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", desc.Name, prop.Name, err)
		}
		fields = append(fields, formField{
			Name:     prop.Name,
			Label:    label,
			Help:     prop.Help,
			Kind:     prop.Kind,
			Required: prop.Required,
			Options:  prop.Options,
			Value:    value,
		})
	}

	var buf bytes.Buffer
	err := formTemplate.ExecuteTemplate(&buf, "form", struct {
		Name    string
		Action  string
		Segment int
		Fields  []formField
	}{Name: desc.Name, Action: target.Action, Segment: target.Segment, Fields: fields})
	if err != nil {
		return "", fmt.Errorf("render %s form: %w", desc.Name, err)
	}
	return template.HTML(buf.String()), nil
}

func formValue(prop Property, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	switch prop.Kind {
	case KindString:
		s, _ := v.(string)
		return s, nil
	case KindNumber:
		if n, ok := AsNumber(v); ok {
			return FormatNumber(n), nil
		}
		return fmt.Sprint(v), nil
	case KindBoolean:
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b), nil
		}
		return "", nil
	default:
		if raw, ok := v.(RawExpression); ok {
			return string(raw), nil
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// Bind converts submitted form values into a property bag for desc. Empty
// optional fields are omitted; empty required fields are an error.
func Bind(desc Descriptor, form url.Values) (Props, error) {
	props := make(Props, len(desc.Properties))
	for _, prop := range desc.Properties {
		raw, present := form[prop.Name]
		value := ""
		if present && len(raw) > 0 {
			value = raw[len(raw)-1]
		}

		if prop.Kind == KindBoolean {
			if value == "" {
				if prop.Required {
					props[prop.Name] = false
				}
				continue
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				if value != "on" {
					return nil, fmt.Errorf("%w: %s.%s: %q is not a boolean", ErrInvalidForm, desc.Name, prop.Name, value)
				}
				b = true
			}
			props[prop.Name] = b
			continue
		}

		if strings.TrimSpace(value) == "" {
			if prop.Required {
				return nil, fmt.Errorf("%w: %s.%s is required", ErrInvalidForm, desc.Name, prop.Name)
			}
			continue
		}

		switch prop.Kind {
		case KindString:
			props[prop.Name] = value
		case KindNumber:
			n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %q is not a number", ErrInvalidForm, desc.Name, prop.Name, value)
			}
			props[prop.Name] = n
		case KindExpression:
			var decoded any
			if err := json.Unmarshal([]byte(value), &decoded); err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidForm, desc.Name, prop.Name, err)
			}
			props[prop.Name] = decoded
		}
	}
	return props, nil
}
