package widget

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Definition is the data form of a widget type, as written in a widgets file:
//
//	widgets:
//	  - name: Flashcard
//	    label: Flashcard
//	    properties:
//	      - {name: front, kind: string, required: true}
//	      - {name: back, kind: string, required: true}
type Definition struct {
	Name        string     `yaml:"name"`
	Label       string     `yaml:"label,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Icon        string     `yaml:"icon,omitempty"`
	Properties  []Property `yaml:"properties"`
}

type definitionFile struct {
	Widgets []Definition `yaml:"widgets"`
}

// Descriptor turns the definition into a descriptor rendered by GenericDisplay.
func (d Definition) Descriptor() Descriptor {
	return Descriptor{
		Name:        d.Name,
		Label:       d.Label,
		Description: d.Description,
		Icon:        d.Icon,
		Properties:  d.Properties,
		Display:     GenericDisplay(d.Name),
	}
}

// LoadDefinitions reads a YAML widgets document and returns validated descriptors.
func LoadDefinitions(r io.Reader) ([]Descriptor, error) {
	var file definitionFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse widget definitions: %w", err)
	}
	return file.descriptors()
}

// DescriptorsFrom converts already-decoded definitions into validated descriptors.
func DescriptorsFrom(defs []Definition) ([]Descriptor, error) {
	return definitionFile{Widgets: defs}.descriptors()
}

func (f definitionFile) descriptors() ([]Descriptor, error) {
	descs := make([]Descriptor, 0, len(f.Widgets))
	for i, def := range f.Widgets {
		desc := def.Descriptor()
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("widget definition %d: %w", i+1, err)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}
