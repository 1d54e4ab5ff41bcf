package backend

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Op is one recorded backend call. Args hold the textual rendering of every
// argument in call order, so a recording is deterministic and comparable.
type Op struct {
	Kind string   `msgpack:"kind"`
	Args []string `msgpack:"args"`
}

// Recorder is the deterministic no-op backend: it records every call instead
// of executing it. Failures can be scripted per object path to exercise the
// orchestrator's error policies.
type Recorder struct {
	ops      []Op
	failures map[string]string // path -> error message
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{failures: make(map[string]string)}
}

// FailPath scripts a failure: any call whose primary path equals the given
// path returns a *Error with the message.
func (r *Recorder) FailPath(path, message string) {
	r.failures[path] = message
}

func (r *Recorder) record(kind string, args ...string) {
	r.ops = append(r.ops, Op{Kind: kind, Args: args})
}

func (r *Recorder) scripted(op, path string) error {
	if msg, ok := r.failures[path]; ok {
		return newError(op, path, fmt.Errorf("%s", msg))
	}
	return nil
}

// Resolve records the lookup and succeeds unless scripted otherwise.
func (r *Recorder) Resolve(path string) (Handle, error) {
	r.record("resolve", path)
	if err := r.scripted("resolve", path); err != nil {
		return nil, err
	}
	return objectHandle{path: path}, nil
}

// Derive records the derivation and fabricates the resulting handle.
func (r *Recorder) Derive(template, parent Handle, name string) (Handle, error) {
	r.record("derive", template.Path(), parent.Path(), name)
	if err := r.scripted("derive", template.Path()); err != nil {
		return nil, err
	}
	return objectHandle{path: parent.Path() + "." + name}, nil
}

// SetProperty records the assignment.
func (r *Recorder) SetProperty(h Handle, path string, value any) error {
	full := h.Path() + "." + path
	r.record("set", full, EncodeValue(value))
	return r.scripted("set", full)
}

// Connect records the link.
func (r *Recorder) Connect(connector, from, to Handle) error {
	r.record("connect", connector.Path(), from.Path(), to.Path())
	return r.scripted("connect", connector.Path())
}

// Ops returns the recorded calls in order.
func (r *Recorder) Ops() []Op {
	return r.ops
}

// OpsOfKind filters the recording by call kind.
func (r *Recorder) OpsOfKind(kind string) []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Export serializes the recording for replay.
func (r *Recorder) Export() ([]byte, error) {
	return msgpack.Marshal(r.ops)
}

// ReadRecording deserializes an exported recording.
func ReadRecording(data []byte) ([]Op, error) {
	var ops []Op
	if err := msgpack.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("failed to decode recording: %w", err)
	}
	return ops, nil
}
