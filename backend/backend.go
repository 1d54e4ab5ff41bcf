// Package backend defines the capability contract between the creation
// orchestrator and an execution target, plus three substitutable
// implementations: a live remote engine, an in-process engine model, and a
// recording no-op for tests. The orchestrator never branches on which one is
// active.
package backend

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle is an opaque reference to an engine object. Paths are dotted
// absolute object paths (".Models.Model.Press_1").
type Handle interface {
	Path() string
}

// Backend is the capability set every execution target implements. Property
// paths are explicit string arguments; there is no dynamic attribute
// dispatch.
type Backend interface {
	// Resolve looks up an existing object (template, frame, connector).
	Resolve(path string) (Handle, error)
	// Derive creates a new object from a template under a parent scope.
	Derive(template, parent Handle, name string) (Handle, error)
	// SetProperty assigns a value at a possibly nested property path.
	SetProperty(h Handle, path string, value any) error
	// Connect links two created objects through a connector object.
	Connect(connector, from, to Handle) error
}

// Error is the opaque backend failure surfaced to the orchestrator, which
// applies the configured error policy and never inspects the cause.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("backend %s %s failed", e.Op, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

// EncodeValue renders a property value in the textual form the remote
// command protocol and the recorder share. Strings are quoted, numeric
// slices bracketed, handles written as their object paths.
func EncodeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "void"
	case Handle:
		return val.Path()
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []float64:
		parts := make([]string, len(val))
		for i, f := range val {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// objectHandle is the plain path handle shared by the implementations.
type objectHandle struct {
	path string
}

func (h objectHandle) Path() string { return h.path }

// NewHandle wraps a raw object path. Exposed for callers that track handles
// across backends (test fixtures, replay tooling).
func NewHandle(path string) Handle { return objectHandle{path: path} }
