package whatweb

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:94.0) Gecko/20100101 Firefox/94.0"

// shiroCookie is a crafted remember-me value: Shiro-backed sites answer it
// with a rememberMe=deleteMe cookie, which fingerprints them.
const shiroCookie = "rememberMe=admin;rememberMe-K=admin"

var knownMethods = map[string]struct{}{
	http.MethodGet: {}, http.MethodHead: {}, http.MethodPost: {},
	http.MethodPut: {}, http.MethodPatch: {}, http.MethodDelete: {},
	http.MethodOptions: {}, http.MethodTrace: {},
}

// requestMethod uppercases the template method, falling back to GET for
// anything unrecognized.
func requestMethod(name string) string {
	method := strings.ToUpper(strings.TrimSpace(name))
	if _, ok := knownMethods[method]; !ok {
		return http.MethodGet
	}
	return method
}

// send performs a single HTTP exchange for one fingerprint request. TLS
// verification is off (self-signed targets are the norm), redirects are
// never followed (the orchestrator needs to see them), and connections are
// not reused (targets are one-shot).
func send(u *url.URL, fp WebFingerPrintRequest, opt RequestOption) (*http.Response, error) {
	target := *u
	if fp.Path != "/" && fp.Path != "" {
		target.Path = fp.Path
		target.RawPath = ""
	}
	// A broken body payload downgrades to an empty body, not a failed probe.
	body, err := base64.StdEncoding.DecodeString(fp.RequestData)
	if err != nil {
		body = nil
	}
	req, err := http.NewRequest(requestMethod(fp.RequestMethod), target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target.String(), err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", shiroCookie)
	for name, value := range fp.RequestHeaders {
		req.Header.Set(name, value)
	}

	var proxy func(*http.Request) (*url.URL, error)
	if opt.Proxy != "" {
		proxyURL, err := url.Parse(opt.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", opt.Proxy, err)
		}
		proxy = http.ProxyURL(proxyURL)
	}
	client := &http.Client{
		Timeout: opt.Timeout,
		Transport: &http.Transport{
			Proxy: proxy,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target.String(), err)
	}
	return resp, nil
}
