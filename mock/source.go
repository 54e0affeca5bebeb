package mock

import (
	"context"

	"github.com/fwojciec/mediacat"
)

var _ mediacat.DocumentSource = (*DocumentSource)(nil)

// DocumentSource is a mock implementation of mediacat.DocumentSource.
type DocumentSource struct {
	LoadFn func(ctx context.Context, url string) (*mediacat.Document, error)
}

func (s *DocumentSource) Load(ctx context.Context, url string) (*mediacat.Document, error) {
	return s.LoadFn(ctx, url)
}

var _ mediacat.Parser = (*Parser)(nil)

// Parser is a mock implementation of mediacat.Parser.
type Parser struct {
	ParseFn func(url, html string) (*mediacat.Document, error)
}

func (p *Parser) Parse(url, html string) (*mediacat.Document, error) {
	return p.ParseFn(url, html)
}
