// Package node implements the CNAME/other-data node invariant used by zone
// storage: a set of rdatasets keyed by (class, type, covers), with mutations
// that purge whichever side of the CNAME/other-data split the incoming
// rdataset does not belong to.
package node

import "reflect"

// NoCovers is the RRSIG/SIG-covered type qualifier in the node's match key.
// It is the value every type but RRSIG and SIG uses for "covers".
const NoCovers uint16 = 0

// Rdataset is the external collaborator a node stores. Key identifies the
// (class, type, covers) slot it occupies; Match tests a candidate slot
// against that same identity. The remaining four are the CNAME/other-data
// capability predicates.
type Rdataset interface {
	Key() (class, rdtype, covers uint16)
	Match(class, rdtype, covers uint16) bool
	ImpliesCNAME() bool
	ImpliesOtherData() bool
	OkForCNAME() bool
	OkForOtherData() bool
}

// EqualRdataset is implemented by an Rdataset that knows how to compare its
// content to another for Node.Equal's set-equality check. When an Rdataset
// does not implement it, Node.Equal falls back to reflect.DeepEqual.
type EqualRdataset interface {
	Rdataset
	EqualRdataset(other Rdataset) bool
}

// RRSet is an Rdataset bound to an owner name. A node stores bare
// Rdatasets, so anything handed to ReplaceRdataset that is an RRSet gets
// unwrapped first — the match predicate a node cares about lives on the
// Rdataset, not the owner binding.
type RRSet interface {
	ToRdataset() Rdataset
}

// Node is a set of rdatasets attached to one owner name in a zone. The
// zero value is an empty node ready to use.
type Node struct {
	rdatasets []Rdataset
}

func asRdataset(r Rdataset) Rdataset {
	if rrset, ok := r.(RRSet); ok {
		return rrset.ToRdataset()
	}
	return r
}

// FindRdataset looks up the rdataset matching (class, type, covers). If none
// exists and newRdataset is non-nil, it is called to produce one, which is
// inserted (through the same CNAME/other-data purge as ReplaceRdataset) and
// returned; if newRdataset is nil, a miss returns (nil, false).
func (n *Node) FindRdataset(class, rdtype, covers uint16, newRdataset func() Rdataset) (Rdataset, bool) {
	if rds, ok := n.GetRdataset(class, rdtype, covers); ok {
		return rds, true
	}
	if newRdataset == nil {
		return nil, false
	}
	created := newRdataset()
	n.ReplaceRdataset(created)
	return created, true
}

// GetRdataset returns the rdataset matching (class, type, covers), or
// (nil, false) if the node has none — it never fails.
func (n *Node) GetRdataset(class, rdtype, covers uint16) (Rdataset, bool) {
	for _, rds := range n.rdatasets {
		if rds.Match(class, rdtype, covers) {
			return rds, true
		}
	}
	return nil, false
}

// DeleteRdataset removes the rdataset matching (class, type, covers). A
// miss is a no-op.
func (n *Node) DeleteRdataset(class, rdtype, covers uint16) {
	for i, rds := range n.rdatasets {
		if rds.Match(class, rdtype, covers) {
			n.rdatasets = append(n.rdatasets[:i], n.rdatasets[i+1:]...)
			return
		}
	}
}

// ReplaceRdataset takes ownership of rds (no copy is made) and inserts it,
// enforcing the CNAME/other-data invariant: if rds implies CNAME, every
// existing rdataset that is not ok-for-CNAME is purged first; if it implies
// other data, every existing rdataset that is not ok-for-other-data is
// purged first. An existing rdataset with the same (class, type, covers)
// key is replaced, not duplicated. If rds is an RRSet it is unwrapped to
// its underlying Rdataset before any of this happens.
func (n *Node) ReplaceRdataset(rds Rdataset) {
	rds = asRdataset(rds)

	if rds.ImpliesCNAME() {
		n.purge(func(existing Rdataset) bool { return !existing.OkForCNAME() })
	}
	if rds.ImpliesOtherData() {
		n.purge(func(existing Rdataset) bool { return !existing.OkForOtherData() })
	}

	class, rdtype, covers := rds.Key()
	for i, existing := range n.rdatasets {
		if existing.Match(class, rdtype, covers) {
			n.rdatasets[i] = rds
			return
		}
	}
	n.rdatasets = append(n.rdatasets, rds)
}

func (n *Node) purge(drop func(Rdataset) bool) {
	kept := n.rdatasets[:0]
	for _, rds := range n.rdatasets {
		if !drop(rds) {
			kept = append(kept, rds)
		}
	}
	n.rdatasets = kept
}

// IsCNAME reports whether this node currently holds a CNAME rdataset. A
// node is never simultaneously a CNAME node and an other-data node; the
// invariant is enforced on every ReplaceRdataset call rather than checked
// here.
func (n *Node) IsCNAME() bool {
	for _, rds := range n.rdatasets {
		if rds.ImpliesCNAME() {
			return true
		}
	}
	return false
}

// Rdatasets returns the node's current rdatasets. The returned slice is
// owned by the node; callers must not mutate it.
func (n *Node) Rdatasets() []Rdataset {
	return n.rdatasets
}

// Equal reports whether n and other contain the same set of rdatasets,
// irrespective of insertion order.
func (n *Node) Equal(other *Node) bool {
	if len(n.rdatasets) != len(other.rdatasets) {
		return false
	}
	used := make([]bool, len(other.rdatasets))
	for _, rds := range n.rdatasets {
		found := false
		for i, ords := range other.rdatasets {
			if used[i] {
				continue
			}
			if rdatasetEqual(rds, ords) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func rdatasetEqual(a, b Rdataset) bool {
	if eq, ok := a.(EqualRdataset); ok {
		return eq.EqualRdataset(b)
	}
	return reflect.DeepEqual(a, b)
}
