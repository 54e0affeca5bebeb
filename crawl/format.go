package crawl

import (
	"fmt"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatEvent renders a progress event as a single status line, with the
// page URL shortened to urlWidth characters.
func FormatEvent(e ProgressEvent, urlWidth int) string {
	switch e.Type {
	case ProgressStarted:
		return fmt.Sprintf("[%s] crawling %s", e.Category, e.URL)
	case ProgressFailed:
		return fmt.Sprintf("[%s] %d pages, %d items, %d queued  FAILED %s: %v",
			e.Category, e.Visited, e.Items, e.Queued, TruncateURL(e.URL, urlWidth), e.Error)
	case ProgressFinished:
		return fmt.Sprintf("[%s] done: %d pages, %s", e.Category, e.Visited, pluralize(e.Items, "item"))
	default:
		return fmt.Sprintf("[%s] %d pages, %d items, %d queued  %s",
			e.Category, e.Visited, e.Items, e.Queued, TruncateURL(e.URL, urlWidth))
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
