package widget

import "fmt"

// Registry maps widget type names to descriptors. It is populated at startup
// and read-only afterwards; lookups are exact and case-sensitive.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

// NewRegistry creates a registry holding descs in the given order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Descriptor, len(descs)),
	}
	for _, desc := range descs {
		if err := r.Register(desc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds desc. A second descriptor with the same name is rejected.
// Register must not be called once the registry is shared.
func (r *Registry) Register(desc Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	if _, exists := r.byName[desc.Name]; exists {
		return fmt.Errorf("register %q: %w", desc.Name, ErrDuplicate)
	}
	if r.byName == nil {
		r.byName = make(map[string]Descriptor)
	}

	r.byName[desc.Name] = desc.clone()
	r.order = append(r.order, desc.Name)
	return nil
}

// Describe returns the descriptor for name or ErrUnregistered.
func (r *Registry) Describe(name string) (Descriptor, error) {
	desc, ok := r.Lookup(name)
	if !ok {
		return Descriptor{}, fmt.Errorf("describe %q: %w", name, ErrUnregistered)
	}
	return desc, nil
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	desc, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return desc.clone(), true
}

// IsRegistered reports whether name is a registered widget type.
func (r *Registry) IsRegistered(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[name]
	return ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	if r == nil {
		return nil
	}
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].clone())
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
