package whatweb

import (
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// charsetFromHTML scans meta tags for a charset attribute. The caller hands
// in a tolerant UTF-8 view of the raw bytes: that pass only has to locate
// the declaration, not read the document correctly. The last declaration
// wins, like browsers reparsing on late meta tags.
func charsetFromHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return ""
	}
	label := ""
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		if cs, ok := s.Attr("charset"); ok && cs != "" {
			label = cs
		}
	})
	return label
}

// charsetFromContentType pulls the charset parameter off a Content-Type
// header value, empty when absent or unparseable.
func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// encodingForLabel resolves a charset label against the WHATWG encoding
// table. Unknown or empty labels fall back to UTF-8.
func encodingForLabel(label string) encoding.Encoding {
	if label == "" {
		return unicode.UTF8
	}
	if enc, _ := charset.Lookup(label); enc != nil {
		return enc
	}
	return unicode.UTF8
}

// decodeText turns raw body bytes into text. The label cascade is: a meta
// charset declaration, then the Content-Type charset parameter, then UTF-8.
// The original bytes are decoded with the resolved encoding; the lossy
// UTF-8 pass exists only to find the meta declaration, which may itself be
// unreadable under the wrong codec.
func decodeText(body []byte, headers http.Header) string {
	label := charsetFromHTML(string(body))
	if label == "" {
		label = charsetFromContentType(headers.Get("Content-Type"))
	}
	decoded, err := encodingForLabel(label).NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
