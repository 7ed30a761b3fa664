package whatweb

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var errNotFavicon = errors.New("whatweb: response is not a favicon")

// faviconHash is the content-addressed identity of an icon: the hex MD5 of
// its raw bytes. Published fingerprint libraries key on this digest.
func faviconHash(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// isImage reports whether the response declares an image Content-Type.
func isImage(headers http.Header) bool {
	mediaType, _, err := mime.ParseMediaType(headers.Get("Content-Type"))
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// faviconLinks collects candidate icon URLs: every <link rel="icon"> or
// <link rel="shortcut icon"> href, plus the conventional /favicon.ico at
// the site root. Candidates are deduplicated by URL string.
func faviconLinks(text string, base *url.URL) map[string]*url.URL {
	links := make(map[string]*url.URL)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		doc.Find("link").Each(func(_ int, s *goquery.Selection) {
			rel, hasRel := s.Attr("rel")
			href, hasHref := s.Attr("href")
			if !hasRel || !hasHref {
				return
			}
			if rel != "icon" && rel != "shortcut icon" {
				return
			}
			icon := resolveIconHref(href, base)
			links[icon.String()] = icon
		})
	}
	if ico, err := base.Parse("/favicon.ico"); err == nil {
		links[ico.String()] = ico
	}
	return links
}

// resolveIconHref resolves an href absolute or relative to the page URL; a
// candidate that will not parse degrades to the page URL itself.
func resolveIconHref(href string, base *url.URL) *url.URL {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		if u, err := url.Parse(href); err == nil {
			return u
		}
		return base
	}
	if u, err := base.Parse(href); err == nil {
		return u
	}
	return base
}

// faviconHashFor fetches one candidate icon and hashes its bytes. Hashes
// are memoized per URL, so a CDN icon shared by many targets is fetched
// once per process.
func (w *WhatWeb) faviconHashFor(icon *url.URL, opt RequestOption) (string, error) {
	return w.faviconCache.Do(icon.String(), func() (string, error) {
		resp, err := send(icon, defaultRequest(), opt)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK || !isImage(resp.Header) {
			return "", fmt.Errorf("%w: %s", errNotFavicon, icon)
		}
		content, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return "", fmt.Errorf("read favicon %s: %w", icon, err)
		}
		return faviconHash(content), nil
	})
}

// findFaviconTags maps every reachable candidate icon of a page to its
// content hash. Candidates that fail to fetch, return non-200 or are not
// images are silently dropped.
func (w *WhatWeb) findFaviconTags(base *url.URL, text string, opt RequestOption) map[string]string {
	tags := make(map[string]string)
	for _, icon := range faviconLinks(text, base) {
		hash, err := w.faviconHashFor(icon, opt)
		if err != nil {
			w.logger.Debug().Err(err).Str("favicon", icon.String()).Msg("favicon candidate dropped")
			continue
		}
		tags[icon.String()] = hash
	}
	return tags
}
