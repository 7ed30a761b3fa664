package whatweb

import "time"

// RequestOption carries the per-request knobs every fetch receives. It is
// immutable and passed by value.
type RequestOption struct {
	// Timeout bounds one whole HTTP exchange. Zero means no timeout.
	Timeout time.Duration
	// Proxy is the proxy URL used for every request, empty for none.
	Proxy string
}

// NewRequestOption builds a RequestOption from a timeout in seconds and a
// proxy URL string.
func NewRequestOption(timeoutSeconds uint64, proxy string) RequestOption {
	return RequestOption{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
		Proxy:   proxy,
	}
}
