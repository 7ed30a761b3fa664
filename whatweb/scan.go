package whatweb

// ScanResult is the merged outcome of probing one target.
type ScanResult struct {
	Target     string
	URL        string
	Title      string
	StatusCode int
	Matches    map[string]uint32
}

// Scan runs the full probe sequence for one target: the home-page fetch
// with the default request and every snapshot it produces, then each
// special rule's custom probe. Match maps merge in that order. URL, title
// and status come from the last home-page snapshot, the one the redirect
// chain settled on.
//
// A target that cannot be fetched at all comes back with an empty match
// map, not an error; only a malformed target fails.
func (w *WhatWeb) Scan(target string, lib *WebFingerPrintLib, opt RequestOption, debug bool) (ScanResult, error) {
	result := ScanResult{Target: target, Matches: make(map[string]uint32)}
	rawDataList, err := w.IndexFetch(target, defaultRequest(), true, opt)
	if err != nil {
		return result, err
	}
	for _, rawData := range rawDataList {
		for name, priority := range w.CheckAll(rawData, lib, debug) {
			result.Matches[name] = priority
		}
		result.URL = rawData.URL.String()
		result.Title = GetTitle(rawData.Text)
		result.StatusCode = rawData.StatusCode
	}
	for _, fp := range lib.Special {
		specialList, err := w.IndexFetch(target, fp.Request, false, opt)
		if err != nil {
			w.logger.Debug().Err(err).Str("name", fp.Name).Msg("special probe failed")
			continue
		}
		for _, rawData := range specialList {
			for name, priority := range w.CheckAll(rawData, lib, debug) {
				result.Matches[name] = priority
			}
		}
	}
	return result, nil
}
