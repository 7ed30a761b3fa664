package whatweb

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// maxRedirect caps the hops followed per scheme. Redirect loops in the
	// wild are common enough that an unbounded chase would hang a scan.
	maxRedirect = 5
	// maxBodySize caps how much of a response body is read.
	maxBodySize = 10 * 1024 * 1024
)

// IndexFetch resolves a target into its ordered snapshot chain. A bare
// target is tried as https first and then http until one scheme yields a
// snapshot; an explicit scheme is tried alone. When isIndex is set the
// per-scheme loop follows detected next-hops, up to maxRedirect of them,
// and collects favicons from the first snapshot. Results are memoized per
// (target, template) for the life of the engine.
//
// Send failures truncate the chain rather than failing the call; both
// schemes failing outright yields an empty chain and a nil error. Only an
// unparseable target (or proxy) is an error.
func (w *WhatWeb) IndexFetch(target string, fp WebFingerPrintRequest, isIndex bool, opt RequestOption) ([]*RawData, error) {
	return w.fetchCache.Do(target+fp.key(), func() ([]*RawData, error) {
		return w.indexFetch(target, fp, isIndex, opt)
	})
}

func (w *WhatWeb) indexFetch(target string, fp WebFingerPrintRequest, isIndex bool, opt RequestOption) ([]*RawData, error) {
	lowered := strings.ToLower(target)
	hasScheme := strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://")
	var rawDataList []*RawData
	for _, scheme := range []string{"https://", "http://"} {
		schemeTarget := target
		if !hasScheme {
			schemeTarget = scheme + target
		}
		u, err := url.Parse(schemeTarget)
		if err != nil {
			return nil, fmt.Errorf("parse target %q: %w", target, err)
		}
		if u.Path == "" {
			u.Path = "/"
		}
		first := true
		for hop := 0; ; hop++ {
			resp, err := send(u, fp, opt)
			if err != nil {
				w.logger.Debug().Err(err).Str("url", u.String()).Msg("send failed")
				break
			}
			rawData := w.fetchRawData(resp, isIndex && first, opt)
			first = false
			rawDataList = append(rawDataList, rawData)
			if !isIndex || rawData.NextURL == nil || hop >= maxRedirect {
				break
			}
			u = rawData.NextURL
		}
		if hasScheme || len(rawDataList) > 0 {
			break
		}
	}
	return rawDataList, nil
}

// fetchRawData turns one response into an immutable snapshot: body bytes
// are decoded into text, an image response is hashed in place of text,
// favicon links are chased for the first home-page snapshot of a non-5xx
// response, and the next hop is resolved from headers and body.
func (w *WhatWeb) fetchRawData(resp *http.Response, isIndex bool, opt RequestOption) *RawData {
	defer resp.Body.Close()
	base := resp.Request.URL
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		w.logger.Debug().Err(err).Str("url", base.String()).Msg("body read truncated")
	}
	text := decodeText(body, resp.Header)
	favicon := make(map[string]string)
	if isImage(resp.Header) {
		// The probed path serves the icon itself; hash it and drop the text.
		favicon[base.String()] = faviconHash(body)
		text = ""
	}
	if isIndex && resp.StatusCode < http.StatusInternalServerError {
		for icon, hash := range w.findFaviconTags(base, text, opt) {
			favicon[icon] = hash
		}
	}
	return &RawData{
		URL:        base,
		Path:       base.Path,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		Text:       strings.ToLower(text),
		Favicon:    favicon,
		NextURL:    nextJump(resp.Header, base, text),
	}
}
