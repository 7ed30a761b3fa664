package whatweb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// WebFingerPrintRequest describes how a target is probed for one rule: the
// request path, method, extra headers and a base64-encoded body.
type WebFingerPrintRequest struct {
	Path           string            `json:"path"`
	RequestMethod  string            `json:"request_method"`
	RequestHeaders map[string]string `json:"request_headers"`
	RequestData    string            `json:"request_data"`
}

// key identifies a template for fetch-cache lookups. Header maps print in
// sorted key order, so the key is stable.
func (r WebFingerPrintRequest) key() string {
	return fmt.Sprintf("%s|%s|%s|%v", r.Path, r.RequestMethod, r.RequestData, r.RequestHeaders)
}

// defaultRequest is the plain home-page probe.
func defaultRequest() WebFingerPrintRequest {
	return WebFingerPrintRequest{Path: "/", RequestMethod: "get"}
}

// MatchRules are the conditions one fingerprint checks against a snapshot.
// A zero StatusCode matches any status. Keywords are stored lower-cased.
type MatchRules struct {
	StatusCode  int               `json:"status_code"`
	FaviconHash []string          `json:"favicon_hash"`
	Headers     map[string]string `json:"headers"`
	Keyword     []string          `json:"keyword"`
}

func (m MatchRules) isEmpty() bool {
	return m.StatusCode == 0 && len(m.FaviconHash) == 0 && len(m.Headers) == 0 && len(m.Keyword) == 0
}

// V3WebFingerPrint is one named fingerprint rule. Priority orders
// confidence: higher values are more specific detections.
type V3WebFingerPrint struct {
	Name       string                `json:"name"`
	Priority   uint32                `json:"priority"`
	Request    WebFingerPrintRequest `json:"request"`
	MatchRules MatchRules            `json:"match_rules"`
}

// ErrEmptyRule is returned when a library contains a rule without any match
// condition. Such a rule would match every snapshot it is run against, so
// the loader rejects it instead of letting the matcher guess.
var ErrEmptyRule = errors.New("whatweb: fingerprint rule has no match conditions")

// WebFingerPrintLib groups the loaded rules into the three disjoint sets
// the checker schedules: Special rules carry their own probe request, Index
// rules run against home-page snapshots, Favicon rules only run once a
// snapshot has collected at least one favicon hash.
type WebFingerPrintLib struct {
	Special []*V3WebFingerPrint
	Index   []*V3WebFingerPrint
	Favicon []*V3WebFingerPrint
}

// NewWebFingerPrintLib parses a v3 fingerprint JSON document (a flat array
// of rules) and groups it. Keywords are lower-cased here so matching never
// has to.
func NewWebFingerPrintLib(data []byte) (*WebFingerPrintLib, error) {
	var rules []*V3WebFingerPrint
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse fingerprint library: %w", err)
	}
	lib := &WebFingerPrintLib{}
	for _, fp := range rules {
		if fp.MatchRules.isEmpty() {
			return nil, fmt.Errorf("%w: %q", ErrEmptyRule, fp.Name)
		}
		for i, keyword := range fp.MatchRules.Keyword {
			fp.MatchRules.Keyword[i] = strings.ToLower(keyword)
		}
		switch {
		case len(fp.MatchRules.FaviconHash) > 0:
			lib.Favicon = append(lib.Favicon, fp)
		case fp.Request.Path == "/" && strings.EqualFold(fp.Request.RequestMethod, "get") && fp.Request.RequestData == "":
			lib.Index = append(lib.Index, fp)
		default:
			lib.Special = append(lib.Special, fp)
		}
	}
	return lib, nil
}

// NewWebFingerPrintLibFromFile reads and parses a fingerprint library file.
func NewWebFingerPrintLibFromFile(path string) (*WebFingerPrintLib, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fingerprint library: %w", err)
	}
	return NewWebFingerPrintLib(data)
}
