package design

import (
	"fmt"

	"fortio.org/safecast"
)

// Tree holds the flattened design-node list. First and Last are fields on
// purpose: an emit pass receives a tree handle, there is no process-wide
// current design.
type Tree struct {
	first *Node
	last  *Node
	count int
}

func NewTree() *Tree { return &Tree{} }

func (t *Tree) First() *Node { return t.first }
func (t *Tree) Last() *Node  { return t.last }
func (t *Tree) Len() int     { return t.count }

// Append links n at the end of the flattened order and returns it.
func (t *Tree) Append(n *Node) *Node {
	n.writePublicState = -1
	if t.last == nil {
		t.first = n
		t.last = n
	} else {
		n.prev = t.last
		t.last.next = n
		t.last = n
	}
	t.count++
	return n
}

// FindByUID returns the node carrying uid, or nil.
func (t *Tree) FindByUID(uid uint16) *Node {
	for n := t.first; n != nil; n = n.next {
		if n.UID == uid {
			return n
		}
	}
	return nil
}

// EnsureUIDs assigns a unique non-zero UID to every node that has none.
// Existing UIDs are kept so tags stay stable across saves.
func (t *Tree) EnsureUIDs() error {
	used := make(map[uint16]struct{}, t.count)
	for n := t.first; n != nil; n = n.next {
		if n.UID != 0 {
			if _, dup := used[n.UID]; dup {
				return fmt.Errorf("duplicate uid %04x in design tree", n.UID)
			}
			used[n.UID] = struct{}{}
		}
	}
	next := 1
	for n := t.first; n != nil; n = n.next {
		if n.UID != 0 {
			continue
		}
		for {
			uid, err := safecast.Conv[uint16](next)
			if err != nil {
				return fmt.Errorf("design tree exhausted 16-bit uid space: %w", err)
			}
			next++
			if _, taken := used[uid]; !taken {
				n.UID = uid
				used[uid] = struct{}{}
				break
			}
		}
	}
	return nil
}

// Walk calls fn for every node in flattened order until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	for n := t.first; n != nil; n = n.next {
		if !fn(n) {
			return
		}
	}
}
