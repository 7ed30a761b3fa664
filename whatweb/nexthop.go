package whatweb

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsJumpMaxBody bounds the body size for the script heuristics below.
// Real-world redirect stubs are tiny; anything larger is a page that merely
// mentions location somewhere.
const jsJumpMaxBody = 1024

// jsJumpPatterns match the JavaScript redirect styles seen on login stubs:
// assignments like `window.location = "..."` / `self.location.href = '...'`
// and calls like `window.location.replace(...)`.
var jsJumpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)\.location.*?=\s*?['"](?P<target>.*?)['"]`),
	regexp.MustCompile(`(?im)\.location\.(?:open|replace)\((?P<target>.*?)\)`),
}

// nextJump decides whether a response redirects elsewhere. Candidates are
// checked in strict priority order, first hit wins: the Location header, a
// meta refresh tag, and for tiny bodies the script heuristics. The
// candidate is resolved against the current URL unless it is absolute;
// anything unparseable means no next hop.
func nextJump(headers http.Header, current *url.URL, text string) *url.URL {
	var candidates []string
	if location := headers.Get("Location"); location != "" {
		candidates = append(candidates, location)
	}
	if len(candidates) == 0 {
		candidates = append(candidates, metaRefreshTargets(text)...)
	}
	if len(candidates) == 0 && len(text) <= jsJumpMaxBody {
		for _, re := range jsJumpPatterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			target := m[re.SubexpIndex("target")]
			target = strings.NewReplacer(`'`, "", `"`, "").Replace(target)
			candidates = append(candidates, target)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	candidate := candidates[0]
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		next, err := url.Parse(candidate)
		if err != nil {
			return nil
		}
		return next
	}
	next, err := current.Parse(candidate)
	if err != nil {
		return nil
	}
	return next
}

// metaRefreshTargets collects the url= part of every
// <meta http-equiv="refresh" content="0;url=..."> tag. The target is
// whatever follows the first '=' of the content attribute.
func metaRefreshTargets(text string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil
	}
	var targets []string
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		httpEquiv, hasEquiv := s.Attr("http-equiv")
		content, hasContent := s.Attr("content")
		if !hasEquiv || !hasContent || !strings.EqualFold(httpEquiv, "refresh") {
			return
		}
		if _, target, found := strings.Cut(content, "="); found {
			targets = append(targets, target)
		}
	})
	return targets
}
