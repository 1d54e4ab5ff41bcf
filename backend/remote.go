package backend

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// Remote drives a live simulation engine over a line-oriented textual
// command protocol. Every capability call becomes one command and one reply:
//
//	GET .MaterialFlow.Station
//	CALL .MaterialFlow.Station.derive(.Models.Model, "Press_1")
//	SET .Models.Model.Press_1.ProcTime = 12.5
//	CALL .MaterialFlow.Connector.connect(.Models.Model.A, .Models.Model.B)
//
// Replies are "OK" or "ERR <message>". Any transport or protocol failure is
// reported as a *Error; retries and timeouts are owned here, not by callers.
type Remote struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithTimeout bounds each command round trip. Zero means no deadline.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) { r.timeout = d }
}

// DialRemote connects to the engine's command listener.
func DialRemote(addr string, opts ...RemoteOption) (*Remote, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, newError("dial", addr, err)
	}
	return NewRemote(conn, opts...), nil
}

// NewRemote wraps an established connection. Useful for tests with in-memory
// pipes.
func NewRemote(conn net.Conn, opts ...RemoteOption) *Remote {
	r := &Remote{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases the connection.
func (r *Remote) Close() error {
	return r.conn.Close()
}

// roundTrip writes one command line and reads the reply line.
func (r *Remote) roundTrip(op, path, command string) error {
	if r.timeout > 0 {
		if err := r.conn.SetDeadline(time.Now().Add(r.timeout)); err != nil {
			return newError(op, path, err)
		}
	}

	if _, err := fmt.Fprintf(r.conn, "%s\n", command); err != nil {
		return newError(op, path, err)
	}

	reply, err := r.reader.ReadString('\n')
	if err != nil {
		return newError(op, path, err)
	}
	reply = strings.TrimSpace(reply)

	switch {
	case reply == "OK" || strings.HasPrefix(reply, "OK "):
		return nil
	case strings.HasPrefix(reply, "ERR"):
		return newError(op, path, fmt.Errorf("%s", strings.TrimSpace(strings.TrimPrefix(reply, "ERR"))))
	default:
		return newError(op, path, fmt.Errorf("unexpected reply %q", reply))
	}
}

// Resolve probes for an existing object.
func (r *Remote) Resolve(path string) (Handle, error) {
	if err := r.roundTrip("resolve", path, "GET "+path); err != nil {
		return nil, err
	}
	return objectHandle{path: path}, nil
}

// Derive creates a new object from a template under a parent scope. The
// engine names the object; the handle path is parent-scoped.
func (r *Remote) Derive(template, parent Handle, name string) (Handle, error) {
	cmd := fmt.Sprintf("CALL %s.derive(%s, %q)", template.Path(), parent.Path(), name)
	if err := r.roundTrip("derive", template.Path(), cmd); err != nil {
		return nil, err
	}
	return objectHandle{path: parent.Path() + "." + name}, nil
}

// SetProperty assigns a value at a property path of the object.
func (r *Remote) SetProperty(h Handle, path string, value any) error {
	full := h.Path() + "." + path
	cmd := fmt.Sprintf("SET %s = %s", full, EncodeValue(value))
	return r.roundTrip("set", full, cmd)
}

// Connect links two objects through the connector object.
func (r *Remote) Connect(connector, from, to Handle) error {
	cmd := fmt.Sprintf("CALL %s.connect(%s, %s)", connector.Path(), from.Path(), to.Path())
	return r.roundTrip("connect", connector.Path(), cmd)
}
