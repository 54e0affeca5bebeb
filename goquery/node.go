package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mediacat"
)

var _ mediacat.Node = Node{}

// Node adapts a single-element goquery selection to mediacat.Node.
type Node struct {
	sel *goquery.Selection
}

// NewNode wraps sel. Only the first element of sel is considered.
func NewNode(sel *goquery.Selection) Node {
	return Node{sel: sel.First()}
}

// Find returns descendants matching selector in document order.
// An invalid selector matches nothing.
func (n Node) Find(selector string) []mediacat.Node {
	matches := n.sel.Find(selector)
	nodes := make([]mediacat.Node, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, Node{sel: s})
	})
	return nodes
}

// Attr returns the named attribute.
func (n Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// Text returns the combined text of the node and its descendants.
func (n Node) Text() string {
	return n.sel.Text()
}

// Parent returns the enclosing element.
func (n Node) Parent() (mediacat.Node, bool) {
	parent := n.sel.Parent()
	if parent.Length() == 0 {
		return nil, false
	}
	return Node{sel: parent}, true
}
