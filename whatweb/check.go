package whatweb

import (
	"strings"
	"sync"
)

// Evaluate reports whether one fingerprint's rules hold for one snapshot.
// Checks short-circuit in order: favicon hashes, status code, headers,
// keywords.
func Evaluate(raw *RawData, fp *V3WebFingerPrint) bool {
	rules := fp.MatchRules
	if len(rules.FaviconHash) > 0 {
		// A favicon rule never matches a snapshot that collected no hashes.
		if len(raw.Favicon) == 0 {
			return false
		}
		collected := make(map[string]struct{}, len(raw.Favicon))
		for _, hash := range raw.Favicon {
			collected[hash] = struct{}{}
		}
		intersects := false
		for _, hash := range rules.FaviconHash {
			if _, ok := collected[hash]; ok {
				intersects = true
				break
			}
		}
		if !intersects {
			return false
		}
	}
	if rules.StatusCode != 0 && raw.StatusCode != rules.StatusCode {
		return false
	}
	if len(rules.Headers) > 0 {
		block := headerToString(raw.Headers)
		loweredBlock := strings.ToLower(block)
		for name, want := range rules.Headers {
			// Set-Cookie values may spread over several lines, so the whole
			// flattened block is searched, case-sensitively.
			if name == "set-cookie" && !strings.Contains(block, want) {
				return false
			}
			if len(raw.Headers.Values(name)) == 0 {
				return false
			}
			if want != "*" && !strings.Contains(loweredBlock, strings.ToLower(want)) {
				return false
			}
		}
	}
	for _, keyword := range rules.Keyword {
		if !strings.Contains(raw.Text, keyword) {
			return false
		}
	}
	return true
}

// CheckAll evaluates every applicable rule of the library against one
// snapshot concurrently and merges matches into name -> priority. Favicon
// rules are scheduled only when the snapshot collected at least one hash.
// Rules are pure functions over the read-only snapshot, so the fan-out
// needs no locking; completion order is undefined and a name matched by
// two rules keeps whichever priority lands last.
func (w *WhatWeb) CheckAll(raw *RawData, lib *WebFingerPrintLib, debug bool) map[string]uint32 {
	if debug {
		w.logger.Info().Msg(raw.String())
	}
	groups := [][]*V3WebFingerPrint{lib.Special, lib.Index}
	if len(raw.Favicon) > 0 {
		groups = append(groups, lib.Favicon)
	}
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	matches := make(chan *V3WebFingerPrint, total)
	var wg sync.WaitGroup
	for _, group := range groups {
		for _, fp := range group {
			fp := fp
			wg.Add(1)
			go func() {
				defer wg.Done()
				if Evaluate(raw, fp) {
					matches <- fp
				}
			}()
		}
	}
	wg.Wait()
	close(matches)
	webNameSet := make(map[string]uint32, total)
	for fp := range matches {
		if debug {
			w.logger.Info().Interface("fingerprint", fp).Msg("fingerprint matched")
		}
		webNameSet[fp.Name] = fp.Priority
	}
	return webNameSet
}
