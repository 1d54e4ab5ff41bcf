package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one element of the decoded document tree. Only element structure,
// attributes and character data survive decoding; comments and processing
// instructions are dropped.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Text     string
	Parent   *Node
	Children []*Node
}

// Local returns the element's local name, ignoring any namespace.
func (n *Node) Local() string { return n.Name.Local }

// Attr returns the value of a named attribute, matched on local name.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// DecodeTree reads markup from r into a generic node tree. The schema is
// external data, so the document cannot be decoded into tagged structs;
// token-level decoding keeps the tree shape intact for path queries.
func DecodeTree(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root, cur *Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed markup: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Name:   t.Name,
				Attrs:  make([]xml.Attr, len(t.Attr)),
				Parent: cur,
			}
			copy(node.Attrs, t.Attr)
			if root == nil {
				root = node
			}
			if cur != nil {
				cur.Children = append(cur.Children, node)
			}
			cur = node
		case xml.CharData:
			if cur != nil {
				cur.Text += string(t)
			}
		case xml.EndElement:
			if cur != nil {
				cur = cur.Parent
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("document contains no root element")
	}
	return root, nil
}

// Find returns the first node matching a slash-separated path of local
// element names, relative to n. A leading "//" matches the first segment
// anywhere in the subtree. Returns nil when nothing matches.
func (n *Node) Find(path string) *Node {
	matches := n.findAll(path, true)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// FindAll returns every node matching the path, in document order.
func (n *Node) FindAll(path string) []*Node {
	return n.findAll(path, false)
}

// TextAt returns the trimmed text content at a path, or "" when the path is
// empty or unmatched. Absent optional fields read as empty, never as errors.
func (n *Node) TextAt(path string) string {
	if path == "" {
		return ""
	}
	found := n.Find(path)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text)
}

func (n *Node) findAll(path string, first bool) []*Node {
	if path == "" {
		return nil
	}

	deep := false
	if strings.HasPrefix(path, "//") {
		deep = true
		path = path[2:]
	}
	segments := strings.Split(path, "/")
	if len(segments) == 0 {
		return nil
	}

	// Candidates for the first segment.
	var heads []*Node
	if deep {
		n.walk(func(d *Node) bool {
			if d.Local() == segments[0] {
				heads = append(heads, d)
				if first && len(segments) == 1 {
					return false
				}
			}
			return true
		})
	} else {
		for _, c := range n.Children {
			if c.Local() == segments[0] {
				heads = append(heads, c)
			}
		}
	}

	// Narrow through the remaining segments.
	cur := heads
	for _, seg := range segments[1:] {
		var next []*Node
		for _, node := range cur {
			for _, c := range node.Children {
				if c.Local() == seg {
					next = append(next, c)
				}
			}
		}
		cur = next
		if len(cur) == 0 {
			return nil
		}
	}

	if first && len(cur) > 1 {
		return cur[:1]
	}
	return cur
}

// walk visits every descendant depth-first until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	for _, c := range n.Children {
		if !fn(c) {
			return false
		}
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
