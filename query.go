package mediacat

// Node is a read-only view of one element in a parsed document.
// It is the only capability the extraction core needs from a markup parser.
type Node interface {
	// Find returns descendants matching the CSS selector, in document order.
	Find(selector string) []Node

	// Attr returns the value of the named attribute and whether it was present.
	Attr(name string) (string, bool)

	// Text returns the combined text of the node and its descendants.
	Text() string

	// Parent returns the enclosing element.
	// The bool result is false for the document root.
	Parent() (Node, bool)
}

// Document is a parsed listing page.
type Document struct {
	// URL is the address the document was loaded from.
	// Relative links in the document resolve against it.
	URL string

	// Root is the top-level node of the document.
	Root Node
}

// Parser turns raw HTML into a queryable Document.
type Parser interface {
	Parse(url string, html string) (*Document, error)
}
