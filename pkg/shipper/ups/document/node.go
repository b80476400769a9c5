package document

// Node is an ordered element tree. Values are string, *Node, []*Node or
// []string; list values become repeated elements in XML and arrays in JSON.
type Node struct {
	keys   []string
	values map[string]any
	attrs  [][2]string
}

// New returns an empty node.
func New() *Node {
	return &Node{values: make(map[string]any)}
}

// Set stores value under key. An existing key keeps its position.
func (n *Node) Set(key string, value any) *Node {
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
	return n
}

// SetIf stores value only when it is a non-empty string.
func (n *Node) SetIf(key, value string) *Node {
	if value != "" {
		n.Set(key, value)
	}
	return n
}

// SetAttr adds an XML attribute. JSON output ignores attributes.
func (n *Node) SetAttr(name, value string) *Node {
	n.attrs = append(n.attrs, [2]string{name, value})
	return n
}

// Child returns the node stored under key, creating it when absent.
func (n *Node) Child(key string) *Node {
	if child, ok := n.values[key].(*Node); ok {
		return child
	}
	child := New()
	n.Set(key, child)
	return child
}

// Append adds child to the list stored under key.
func (n *Node) Append(key string, child *Node) *Node {
	list, _ := n.values[key].([]*Node)
	n.Set(key, append(list, child))
	return n
}

// Get returns the raw value stored under key.
func (n *Node) Get(key string) (any, bool) {
	v, ok := n.values[key]
	return v, ok
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.values[key]
	return ok
}

// String returns the string stored under key, or "".
func (n *Node) String(key string) string {
	s, _ := n.values[key].(string)
	return s
}

// Node returns the child node stored under key, or nil.
func (n *Node) Node(key string) *Node {
	child, _ := n.values[key].(*Node)
	return child
}

// Nodes returns the list stored under key. A single child is returned as a
// one-element list.
func (n *Node) Nodes(key string) []*Node {
	switch v := n.values[key].(type) {
	case []*Node:
		return v
	case *Node:
		return []*Node{v}
	}
	return nil
}

// Lookup walks a path of child nodes and returns the final value.
func (n *Node) Lookup(path ...string) (any, bool) {
	cur := n
	for i, key := range path {
		v, ok := cur.values[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		switch next := v.(type) {
		case *Node:
			cur = next
		case []*Node:
			if len(next) == 0 {
				return nil, false
			}
			cur = next[0]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Delete removes key.
func (n *Node) Delete(key string) {
	if _, ok := n.values[key]; !ok {
		return
	}
	delete(n.values, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i:i], n.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (n *Node) Keys() []string {
	return append([]string(nil), n.keys...)
}

// Len returns the number of keys.
func (n *Node) Len() int {
	return len(n.keys)
}

// IsEmpty reports whether the node has no keys.
func (n *Node) IsEmpty() bool {
	return n == nil || len(n.keys) == 0
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := New()
	out.attrs = append(out.attrs, n.attrs...)
	for _, k := range n.keys {
		switch v := n.values[k].(type) {
		case *Node:
			out.Set(k, v.Clone())
		case []*Node:
			list := make([]*Node, len(v))
			for i, child := range v {
				list[i] = child.Clone()
			}
			out.Set(k, list)
		case []string:
			out.Set(k, append([]string(nil), v...))
		default:
			out.Set(k, v)
		}
	}
	return out
}

// Reorder moves the keys named in order to the front, in that order. Keys
// not listed keep their relative position after them.
func (n *Node) Reorder(order []string) {
	if n == nil {
		return
	}
	keys := make([]string, 0, len(n.keys))
	for _, k := range order {
		if _, ok := n.values[k]; ok {
			keys = append(keys, k)
		}
	}
	listed := make(map[string]bool, len(order))
	for _, k := range order {
		listed[k] = true
	}
	for _, k := range n.keys {
		if !listed[k] {
			keys = append(keys, k)
		}
	}
	n.keys = keys
}
