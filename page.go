package mediacat

import (
	"net/url"
)

// ListingPage wraps one parsed listing document together with the layout
// schema used to read it. It never mutates the document.
type ListingPage struct {
	doc    *Document
	schema *LayoutSchema
	base   *url.URL
}

// NewListingPage returns a ListingPage for doc.
// Returns EINVALID if the document URL cannot be parsed.
func NewListingPage(doc *Document, schema *LayoutSchema) (*ListingPage, error) {
	if doc == nil || doc.Root == nil {
		return nil, Errorf(EINVALID, "listing page document required")
	}
	base, err := url.Parse(doc.URL)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid listing page URL %q: %v", doc.URL, err)
	}
	return &ListingPage{doc: doc, schema: schema, base: base}, nil
}

// URL returns the address of the page.
func (p *ListingPage) URL() string {
	return p.doc.URL
}

// Entries returns the listing entry nodes in document order.
func (p *ListingPage) Entries() []Node {
	return p.doc.Root.Find(p.schema.Entry.Selector)
}

// PaginationLinks returns the page's links to sibling listing pages in
// document order, resolved against the page URL. Empty links are skipped.
// A page that does not paginate returns an empty slice.
func (p *ListingPage) PaginationLinks() []string {
	attrName := p.schema.Pagination.Attr
	if attrName == "" {
		attrName = "href"
	}

	var links []string
	for _, node := range p.doc.Root.Find(p.schema.Pagination.Selector) {
		href, ok := attr(node, attrName)
		if !ok {
			continue
		}
		links = append(links, resolveRef(p.base, href))
	}
	return links
}

// Classify classifies one of the page's entries.
// Extraction errors carry the page URL.
func (p *ListingPage) Classify(entry Node) (Entry, error) {
	e, err := Classify(entry, p.schema, p.base)
	if extractErr, ok := err.(*ExtractionError); ok {
		extractErr.URL = p.doc.URL
	}
	return e, err
}
