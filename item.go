package mediacat

import (
	"net/url"
	"strings"
)

// Item is one media item extracted from a listing entry.
type Item struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Synopsis     string `json:"synopsis"`
	ThumbnailURL string `json:"thumbnailURL"`
	CanonicalURL string `json:"canonicalURL"`

	// SequenceIndex records extraction order within a crawl, counted before
	// duplicates are dropped. It is not a stable identity.
	SequenceIndex int `json:"sequenceIndex"`
}

// Validate returns an error if the item is missing a required field.
func (i *Item) Validate() error {
	switch {
	case i.ID == "":
		return Errorf(EINVALID, "item id required")
	case i.Title == "":
		return Errorf(EINVALID, "item title required")
	case i.CanonicalURL == "":
		return Errorf(EINVALID, "item canonical URL required")
	}
	return nil
}

// SameContent reports whether two items carry the same extracted fields.
// SequenceIndex is ignored.
func (i *Item) SameContent(other *Item) bool {
	return i.ID == other.ID &&
		i.Title == other.Title &&
		i.Subtitle == other.Subtitle &&
		i.Synopsis == other.Synopsis &&
		i.ThumbnailURL == other.ThumbnailURL &&
		i.CanonicalURL == other.CanonicalURL
}

// Pointer is a forward reference from a listing entry to a deeper listing
// page ("view more"). Pointers are followed during a crawl and never stored.
type Pointer struct {
	TargetURL string
}

// Entry is the outcome of classifying one listing entry.
// Exactly one of Item and Pointer is set.
type Entry struct {
	Item    *Item
	Pointer *Pointer
}

// IsPointer reports whether the entry refers to a deeper listing page.
func (e Entry) IsPointer() bool {
	return e.Pointer != nil
}

// Absolutize returns raw unchanged when it is an absolute URL and
// otherwise prepends origin to it.
func Absolutize(origin, raw string) string {
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	origin = strings.TrimSuffix(origin, "/")
	if strings.HasPrefix(raw, "//") {
		// Protocol-relative: keep the origin's scheme.
		if scheme, _, ok := strings.Cut(origin, "://"); ok {
			return scheme + ":" + raw
		}
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		return origin + raw
	}
	return origin + "/" + raw
}

// FirstCandidate returns the first whitespace-separated candidate of a
// responsive image set, e.g. "a.jpg 100w, b.jpg 200w" yields "a.jpg".
func FirstCandidate(srcset string) string {
	fields := strings.Fields(srcset)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSuffix(fields[0], ",")
}

// Origin returns the scheme and host of u, e.g. "http://example.test".
func Origin(u *url.URL) string {
	if u == nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
