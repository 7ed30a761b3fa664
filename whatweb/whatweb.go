// Package whatweb fingerprints the software stack behind a URL. It fetches
// one or more response snapshots for a target (following redirects and
// collecting favicon hashes along the way) and evaluates every rule of a
// fingerprint library against each snapshot concurrently.
package whatweb

import "github.com/rs/zerolog"

// WhatWeb drives target fetching and fingerprint evaluation. It owns the
// two process-lifetime caches (favicon hashes and fetch results), so a
// program should create one instance and share it across targets.
type WhatWeb struct {
	logger       zerolog.Logger
	faviconCache *memoCache[string]
	fetchCache   *memoCache[[]*RawData]
}

// New creates a WhatWeb engine. Pass zerolog.Nop() to silence it.
func New(logger zerolog.Logger) *WhatWeb {
	return &WhatWeb{
		logger:       logger,
		faviconCache: newMemoCache[string](),
		fetchCache:   newMemoCache[[]*RawData](),
	}
}
