// Package etree exports catalogs as XML documents.
package etree

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/mediacat"
)

// Ensure XMLWriter implements mediacat.CatalogWriter.
var _ mediacat.CatalogWriter = (*XMLWriter)(nil)

// XMLWriter writes catalogs as indented XML files.
type XMLWriter struct {
	path string
}

// NewXMLWriter creates an XMLWriter writing to path.
func NewXMLWriter(path string) *XMLWriter {
	return &XMLWriter{path: path}
}

// WriteCatalog serializes catalog to the writer's path. The document is
// written to a temporary file and renamed into place.
func (w *XMLWriter) WriteCatalog(ctx context.Context, catalog *mediacat.Catalog) error {
	if catalog == nil {
		return mediacat.Errorf(mediacat.EINVALID, "catalog required")
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := Encode(catalog).WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), w.path)
}

// Encode builds the XML document for catalog.
func Encode(catalog *mediacat.Catalog) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("catalog")
	root.CreateAttr("version", strconv.Itoa(catalog.FormatVersion))
	root.CreateAttr("schema", catalog.Schema)
	root.CreateAttr("snapshotTime", catalog.SnapshotTime.UTC().Format(time.RFC3339Nano))
	if catalog.ID != "" {
		root.CreateAttr("id", catalog.ID)
	}

	for _, cat := range catalog.Categories {
		catEl := root.CreateElement("category")
		catEl.CreateAttr("name", cat.Name)
		catEl.CreateAttr("rootURL", cat.RootURL)
		if cat.Partial {
			catEl.CreateAttr("partial", "true")
		}

		for _, item := range cat.Items {
			itemEl := catEl.CreateElement("item")
			itemEl.CreateAttr("id", item.ID)
			itemEl.CreateAttr("sequenceIndex", strconv.Itoa(item.SequenceIndex))
			itemEl.CreateElement("title").SetText(item.Title)
			if item.Subtitle != "" {
				itemEl.CreateElement("subtitle").SetText(item.Subtitle)
			}
			itemEl.CreateElement("synopsis").SetText(item.Synopsis)
			itemEl.CreateElement("thumbnail").SetText(item.ThumbnailURL)
			itemEl.CreateElement("link").SetText(item.CanonicalURL)
		}
		for _, f := range cat.Failed {
			failEl := catEl.CreateElement("failure")
			failEl.CreateAttr("url", f.URL)
			failEl.SetText(f.Error)
		}
		for _, r := range cat.Rejected {
			rejEl := catEl.CreateElement("rejection")
			rejEl.CreateAttr("url", r.URL)
			rejEl.CreateAttr("field", r.Field)
		}
	}

	doc.Indent(2)
	return doc
}

// ReadCatalog reads a catalog written by XMLWriter.
func ReadCatalog(path string) (*mediacat.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a catalog XML document.
func Decode(r io.Reader) (*mediacat.Catalog, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, mediacat.Errorf(mediacat.EINVALID, "parsing catalog XML: %v", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "catalog" {
		return nil, mediacat.Errorf(mediacat.EINVALID, "catalog element not found")
	}

	version, err := strconv.Atoi(root.SelectAttrValue("version", ""))
	if err != nil || version != mediacat.CatalogFormatVersion {
		return nil, mediacat.Errorf(mediacat.EINVALID, "unsupported catalog format version %q", root.SelectAttrValue("version", ""))
	}
	snapshotTime, err := time.Parse(time.RFC3339Nano, root.SelectAttrValue("snapshotTime", ""))
	if err != nil {
		return nil, mediacat.Errorf(mediacat.EINVALID, "parsing snapshot time: %v", err)
	}

	var categories []*mediacat.Category
	for _, catEl := range root.SelectElements("category") {
		cat, err := decodeCategory(catEl)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}

	catalog := mediacat.NewCatalog(root.SelectAttrValue("schema", ""), categories, snapshotTime)
	catalog.ID = root.SelectAttrValue("id", "")
	return catalog, nil
}

func decodeCategory(el *etree.Element) (*mediacat.Category, error) {
	cat := mediacat.NewCategory(el.SelectAttrValue("name", ""), el.SelectAttrValue("rootURL", ""))
	cat.Partial = el.SelectAttrValue("partial", "") == "true"

	for _, itemEl := range el.SelectElements("item") {
		seq, err := strconv.Atoi(itemEl.SelectAttrValue("sequenceIndex", "0"))
		if err != nil {
			return nil, fmt.Errorf("item %q sequence index: %w", itemEl.SelectAttrValue("id", ""), err)
		}
		cat.Add(&mediacat.Item{
			ID:            itemEl.SelectAttrValue("id", ""),
			Title:         childText(itemEl, "title"),
			Subtitle:      childText(itemEl, "subtitle"),
			Synopsis:      childText(itemEl, "synopsis"),
			ThumbnailURL:  childText(itemEl, "thumbnail"),
			CanonicalURL:  childText(itemEl, "link"),
			SequenceIndex: seq,
		})
	}
	for _, failEl := range el.SelectElements("failure") {
		cat.Failed = append(cat.Failed, mediacat.FetchFailure{
			URL:   failEl.SelectAttrValue("url", ""),
			Error: failEl.Text(),
		})
	}
	for _, rejEl := range el.SelectElements("rejection") {
		cat.Rejected = append(cat.Rejected, mediacat.Rejection{
			URL:   rejEl.SelectAttrValue("url", ""),
			Field: rejEl.SelectAttrValue("field", ""),
		})
	}
	return cat, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return child.Text()
}
