// Package goquery implements the document query capability on top of
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mediacat"
)

// Ensure Parser implements mediacat.Parser at compile time.
var _ mediacat.Parser = (*Parser)(nil)

// Parser parses HTML into documents queryable with CSS selectors.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses html loaded from url.
func (p *Parser) Parse(url string, html string) (*mediacat.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, mediacat.Errorf(mediacat.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, mediacat.Errorf(mediacat.EINVALID, "failed to parse HTML: %v", err)
	}

	return &mediacat.Document{
		URL:  url,
		Root: NewNode(doc.Selection),
	}, nil
}
