// Package widget holds the registry of widget types that can be embedded in
// lesson content as self-closing tags, together with their property schemas
// and display/edit renderers.
package widget

import (
	"errors"
	"fmt"
	"html/template"
	"regexp"
)

var (
	// ErrUnregistered indicates a widget type name that is not in the registry.
	ErrUnregistered = errors.New("unregistered widget type")
	// ErrDuplicate indicates a second registration of the same type name.
	ErrDuplicate = errors.New("duplicate widget type")
	// ErrInvalidDescriptor indicates a descriptor that fails validation.
	ErrInvalidDescriptor = errors.New("invalid widget descriptor")
)

var (
	typeNameRe     = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	propertyNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// Kind is the declared value kind of a widget property.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBoolean    Kind = "boolean"
	KindExpression Kind = "expression"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindExpression:
		return true
	default:
		return false
	}
}

// Property describes one entry of a widget's property schema.
type Property struct {
	Name     string   `yaml:"name"`
	Kind     Kind     `yaml:"kind"`
	Required bool     `yaml:"required"`
	Label    string   `yaml:"label,omitempty"`
	Help     string   `yaml:"help,omitempty"`
	Options  []string `yaml:"options,omitempty"`
}

// Props is a decoded property bag. Values are string, float64, bool, decoded
// JSON values ([]any, map[string]any, ...) or RawExpression.
type Props map[string]any

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// RawExpression is an expression literal kept verbatim because it could not be
// parsed as structured data.
type RawExpression string

// EditTarget identifies the widget instance an edit form updates. The form
// produced by an EditFunc posts the new property values to Action together
// with Segment, which is how the owning editor receives the update.
type EditTarget struct {
	Segment int
	Action  string
}

// DisplayFunc renders a validated property bag for read-only display.
type DisplayFunc func(props Props) (template.HTML, error)

// EditFunc renders an editable form for a property bag.
type EditFunc func(props Props, target EditTarget) (template.HTML, error)

// Descriptor is the static description of one widget type.
type Descriptor struct {
	Name        string
	Label       string
	Description string
	Icon        string
	Properties  []Property
	Display     DisplayFunc
	Edit        EditFunc
}

// Property returns the schema entry for name.
func (d Descriptor) Property(name string) (Property, bool) {
	for _, prop := range d.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// Required lists the names of required properties in schema order.
func (d Descriptor) Required() []string {
	var names []string
	for _, prop := range d.Properties {
		if prop.Required {
			names = append(names, prop.Name)
		}
	}
	return names
}

// DisplayLabel returns Label, or Name when no label is set.
func (d Descriptor) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// RenderEdit renders the edit form, falling back to the schema-driven form
// when the descriptor has no custom editor.
func (d Descriptor) RenderEdit(props Props, target EditTarget) (template.HTML, error) {
	if d.Edit != nil {
		return d.Edit(props, target)
	}
	return RenderForm(d, props, target)
}

// Validate checks the descriptor's name and schema.
func (d Descriptor) Validate() error {
	if !ValidTypeName(d.Name) {
		return fmt.Errorf("%w: type name %q must match [A-Z][A-Za-z0-9]*", ErrInvalidDescriptor, d.Name)
	}
	if d.Display == nil {
		return fmt.Errorf("%w: %s has no display renderer", ErrInvalidDescriptor, d.Name)
	}

	seen := make(map[string]bool, len(d.Properties))
	for _, prop := range d.Properties {
		if !propertyNameRe.MatchString(prop.Name) {
			return fmt.Errorf("%w: %s has invalid property name %q", ErrInvalidDescriptor, d.Name, prop.Name)
		}
		if seen[prop.Name] {
			return fmt.Errorf("%w: %s declares property %q twice", ErrInvalidDescriptor, d.Name, prop.Name)
		}
		seen[prop.Name] = true
		if !prop.Kind.Valid() {
			return fmt.Errorf("%w: %s.%s has unknown kind %q", ErrInvalidDescriptor, d.Name, prop.Name, prop.Kind)
		}
	}

	return nil
}

// ValidTypeName reports whether name is a valid tag name.
func ValidTypeName(name string) bool {
	return typeNameRe.MatchString(name)
}

func (d Descriptor) clone() Descriptor {
	cloned := d
	cloned.Properties = make([]Property, len(d.Properties))
	for i, prop := range d.Properties {
		prop.Options = append([]string(nil), prop.Options...)
		cloned.Properties[i] = prop
	}
	return cloned
}
