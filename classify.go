package mediacat

import (
	"net/url"
	"strings"
)

// Classify turns one listing entry into either an Item or a Pointer.
//
// The pointer locator is evaluated first; when it yields a non-empty link
// the entry is a Pointer and no other field is read. Otherwise title,
// synopsis, link and thumbnail are required and a missing one fails with
// *ExtractionError. base is the URL of the listing page the entry came
// from; pointer targets resolve against it.
func Classify(entry Node, schema *LayoutSchema, base *url.URL) (Entry, error) {
	pointerLoc := hrefLocator(schema.Pointer)
	if href, ok := lookup(entry, &pointerLoc); ok {
		return Entry{Pointer: &Pointer{TargetURL: resolveRef(base, href)}}, nil
	}

	title, ok := lookup(entry, &schema.Title)
	if !ok {
		return Entry{}, &ExtractionError{Field: "title"}
	}
	synopsis, ok := lookup(entry, &schema.Synopsis)
	if !ok {
		return Entry{}, &ExtractionError{Field: "synopsis"}
	}
	linkLoc := hrefLocator(schema.Link)
	link, ok := lookup(entry, &linkLoc)
	if !ok {
		return Entry{}, &ExtractionError{Field: "link"}
	}
	srcset, ok := lookup(entry, &schema.Thumbnail)
	if !ok {
		return Entry{}, &ExtractionError{Field: "thumbnail"}
	}

	var subtitle string
	if schema.Subtitle != nil {
		subtitle, _ = lookup(entry, schema.Subtitle)
	}

	id, ok := extractID(entry, schema)
	if !ok {
		return Entry{}, &ExtractionError{Field: "id"}
	}

	origin := schema.Origin
	if origin == "" {
		origin = Origin(base)
	}

	return Entry{Item: &Item{
		ID:           id,
		Title:        title,
		Subtitle:     subtitle,
		Synopsis:     synopsis,
		ThumbnailURL: FirstCandidate(srcset),
		CanonicalURL: Absolutize(origin, link),
	}}, nil
}

// extractID walks the identifier fallback chain: the ID attribute on the
// entry, the same attribute on the entry's parent, then the link's data
// attribute. The first present value wins.
func extractID(entry Node, schema *LayoutSchema) (string, bool) {
	if schema.ID != nil {
		if id, ok := lookup(entry, schema.ID); ok {
			return id, true
		}
		if parent, ok := entry.Parent(); ok {
			if id, ok := attr(parent, schema.ID.Attr); ok {
				return id, true
			}
		}
	}
	if schema.LinkIDAttr != "" {
		if link, ok := first(entry, schema.Link.Selector); ok {
			if id, ok := attr(link, schema.LinkIDAttr); ok {
				return id, true
			}
		}
	}
	return "", false
}

// hrefLocator defaults a link locator to the href attribute.
func hrefLocator(loc Locator) Locator {
	if loc.Attr == "" {
		loc.Attr = "href"
	}
	return loc
}

// lookup resolves a locator against node and returns its trimmed value.
// Text values have runs of whitespace collapsed to a single space.
// The bool result is false when nothing matches or the value is empty.
func lookup(node Node, loc *Locator) (string, bool) {
	target, ok := first(node, loc.Selector)
	if !ok {
		return "", false
	}
	if loc.Attr == "" {
		text := strings.Join(strings.Fields(target.Text()), " ")
		return text, text != ""
	}
	return attr(target, loc.Attr)
}

// first returns the first descendant matching selector, or node itself
// when selector is empty.
func first(node Node, selector string) (Node, bool) {
	if selector == "" {
		return node, true
	}
	matches := node.Find(selector)
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

func attr(node Node, name string) (string, bool) {
	v, ok := node.Attr(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// resolveRef resolves href against base and strips the fragment.
// href is returned unchanged if either cannot be resolved.
func resolveRef(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		ref.Fragment = ""
		return ref.String()
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}
