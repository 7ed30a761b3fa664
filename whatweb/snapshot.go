package whatweb

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawData is one fully resolved response snapshot: the probed URL, the raw
// header block, the decoded lower-cased body text, the favicon hashes
// collected for the page, and the next-hop URL when the response redirects.
// It is immutable once built and shared read-only by every matcher
// evaluating it.
type RawData struct {
	URL        *url.URL
	Path       string
	Headers    http.Header
	StatusCode int
	Text       string
	Favicon    map[string]string
	NextURL    *url.URL
}

// headerToString flattens a header block into one "name: value" line per
// header value, names lower-cased, CRLF separated, sorted by name. Matching
// and report rendering share this form.
func headerToString(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		for _, value := range headers[name] {
			b.WriteString(strings.ToLower(name))
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// String renders the snapshot as the stable report block: the resolved URL,
// the header lines, status code and body text, then a favicon block only
// when hashes were collected and a NextUrl line only when a redirect was
// found.
func (r *RawData) String() string {
	var b strings.Builder
	if u, err := r.URL.Parse(r.Path); err == nil {
		fmt.Fprintf(&b, "Url: %s\r\n", u)
	}
	b.WriteString("Headers:\r\n")
	b.WriteString(headerToString(r.Headers))
	fmt.Fprintf(&b, "StatusCode: %d\r\n", r.StatusCode)
	b.WriteString("Text:\r\n")
	b.WriteString(r.Text)
	b.WriteString("\r\n")
	if len(r.Favicon) > 0 {
		b.WriteString("Favicon:\r\n")
		icons := make([]string, 0, len(r.Favicon))
		for icon := range r.Favicon {
			icons = append(icons, icon)
		}
		sort.Strings(icons)
		for _, icon := range icons {
			fmt.Fprintf(&b, "  %s: %s\r\n", icon, r.Favicon[icon])
		}
	}
	if r.NextURL != nil {
		fmt.Fprintf(&b, "NextUrl: %s\r\n", r.NextURL)
	}
	return b.String()
}

// GetTitle extracts a page title for reporting: the first <title> with
// non-empty text, then a <title _html="..."> attribute, then a
// <meta property="title"> content attribute, else empty. Matching never
// uses this; reporting does.
func GetTitle(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return ""
	}
	title := ""
	found := false
	doc.Find("title").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := strings.TrimSpace(s.Text()); t != "" {
			title = t
			found = true
			return false
		}
		if t, ok := s.Attr("_html"); ok {
			title = strings.TrimSpace(t)
			found = true
			return false
		}
		return true
	})
	if found {
		return title
	}
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if property, ok := s.Attr("property"); !ok || property != "title" {
			return true
		}
		content, _ := s.Attr("content")
		title = strings.TrimSpace(content)
		return false
	})
	return title
}
