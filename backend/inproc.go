package backend

import (
	"fmt"
	"sort"
	"strings"
)

// InProc is the execution target for environments with direct native
// bindings: a real in-memory object model with existence checks, property
// storage and connection bookkeeping. It is not safe for concurrent use;
// a pipeline run owns its backend.
type InProc struct {
	objects map[string]*simObject
	links   []Link
}

// Link is one recorded connection between two object paths.
type Link struct {
	From string
	To   string
}

type simObject struct {
	path  string
	class string
	props map[string]any
}

// NewInProc creates an empty engine model. Templates, frames and connectors
// must be seeded before the orchestrator can resolve them.
func NewInProc() *InProc {
	return &InProc{objects: make(map[string]*simObject)}
}

// Seed registers a pre-existing engine object (template, model frame,
// connector) and returns its handle.
func (b *InProc) Seed(path, class string) Handle {
	b.objects[path] = &simObject{path: path, class: class, props: make(map[string]any)}
	return objectHandle{path: path}
}

// Resolve returns a handle to an existing object.
func (b *InProc) Resolve(path string) (Handle, error) {
	if _, ok := b.objects[path]; !ok {
		return nil, newError("resolve", path, fmt.Errorf("object does not exist"))
	}
	return objectHandle{path: path}, nil
}

// Derive creates a new object from a template under a parent.
func (b *InProc) Derive(template, parent Handle, name string) (Handle, error) {
	tpl, ok := b.objects[template.Path()]
	if !ok {
		return nil, newError("derive", template.Path(), fmt.Errorf("template does not exist"))
	}
	if _, ok := b.objects[parent.Path()]; !ok {
		return nil, newError("derive", parent.Path(), fmt.Errorf("parent does not exist"))
	}

	path := parent.Path() + "." + name
	if _, exists := b.objects[path]; exists {
		return nil, newError("derive", path, fmt.Errorf("object already exists"))
	}

	b.objects[path] = &simObject{path: path, class: tpl.class, props: make(map[string]any)}
	return objectHandle{path: path}, nil
}

// SetProperty stores a value at a property path. Nested paths are stored
// flat under their dotted name.
func (b *InProc) SetProperty(h Handle, path string, value any) error {
	obj, ok := b.objects[h.Path()]
	if !ok {
		return newError("set", h.Path(), fmt.Errorf("object does not exist"))
	}
	if hv, ok := value.(Handle); ok {
		value = hv.Path()
	}
	obj.props[path] = value
	return nil
}

// Connect records a link between two existing objects.
func (b *InProc) Connect(connector, from, to Handle) error {
	if _, ok := b.objects[connector.Path()]; !ok {
		return newError("connect", connector.Path(), fmt.Errorf("connector does not exist"))
	}
	if _, ok := b.objects[from.Path()]; !ok {
		return newError("connect", from.Path(), fmt.Errorf("source does not exist"))
	}
	if _, ok := b.objects[to.Path()]; !ok {
		return newError("connect", to.Path(), fmt.Errorf("target does not exist"))
	}
	b.links = append(b.links, Link{From: from.Path(), To: to.Path()})
	return nil
}

// Exists reports whether an object path is present in the model.
func (b *InProc) Exists(path string) bool {
	_, ok := b.objects[path]
	return ok
}

// PropertyOf returns a stored property value of an object.
func (b *InProc) PropertyOf(path, prop string) (any, bool) {
	obj, ok := b.objects[path]
	if !ok {
		return nil, false
	}
	v, ok := obj.props[prop]
	return v, ok
}

// ClassOf returns the template class an object was derived from.
func (b *InProc) ClassOf(path string) string {
	if obj, ok := b.objects[path]; ok {
		return obj.class
	}
	return ""
}

// Links returns the recorded connections in creation order.
func (b *InProc) Links() []Link {
	return b.links
}

// ObjectsUnder lists the paths created directly under a parent scope,
// sorted for stable inspection.
func (b *InProc) ObjectsUnder(parent string) []string {
	prefix := parent + "."
	var out []string
	for path := range b.objects {
		if strings.HasPrefix(path, prefix) && !strings.Contains(path[len(prefix):], ".") {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
