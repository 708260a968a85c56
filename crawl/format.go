package crawl

import "fmt"

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix, just return dots
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatChars formats a character count in human-readable form.
func FormatChars(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM chars", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk chars", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d chars", n)
	}
}
