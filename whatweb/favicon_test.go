package whatweb

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaviconLinks(t *testing.T) {
	base := mustParse(t, "https://kali-team.cn/")
	tests := []struct {
		text string
		want string
	}{
		{
			text: `<link rel="icon" href="/uistyle/themes/default/images/favicon.ico" type="image/x-icon" />`,
			want: "/uistyle/themes/default/images/favicon.ico",
		},
		{
			text: `<link rel="shortcut icon" href="/logo.png">`,
			want: "/logo.png",
		},
	}
	for _, tt := range tests {
		links := faviconLinks(tt.text, base)
		found := false
		for _, link := range links {
			if link.Path == tt.want {
				found = true
			}
		}
		assert.True(t, found, "expected %s among candidates for %q", tt.want, tt.text)
	}
}

func TestFaviconLinksAlwaysIncludeDefaultIco(t *testing.T) {
	base := mustParse(t, "https://example.com/deep/page")
	links := faviconLinks("<html></html>", base)
	_, ok := links["https://example.com/favicon.ico"]
	assert.True(t, ok, "the conventional root icon is always a candidate")
}

func TestFaviconLinksAbsoluteHref(t *testing.T) {
	base := mustParse(t, "https://example.com/")
	links := faviconLinks(`<link rel="icon" href="https://cdn.example.net/icon.png">`, base)
	_, ok := links["https://cdn.example.net/icon.png"]
	assert.True(t, ok)
}

func TestFindFaviconTags(t *testing.T) {
	iconBytes := []byte("fake-png-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(iconBytes)
		case "/favicon.ico":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("not an icon"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	w := New(zerolog.Nop())
	base := mustParse(t, server.URL+"/")
	tags := w.findFaviconTags(base, `<link rel="icon" href="/logo.png">`, testOption)

	require.Len(t, tags, 1, "the non-image /favicon.ico candidate must be dropped")
	assert.Equal(t, faviconHash(iconBytes), tags[server.URL+"/logo.png"])
}

func TestFaviconHashMemoized(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favicon.ico" {
			hits.Add(1)
			w.Header().Set("Content-Type", "image/x-icon")
			w.Write([]byte("icon"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	w := New(zerolog.Nop())
	base := mustParse(t, server.URL+"/")
	for i := 0; i < 3; i++ {
		tags := w.findFaviconTags(base, "", testOption)
		require.Len(t, tags, 1)
	}
	assert.Equal(t, int32(1), hits.Load(), "repeated lookups of one URL must cost one fetch")
}

func TestFaviconFailuresAreNotCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/x-icon")
		w.Write([]byte("icon"))
	}))
	defer server.Close()

	w := New(zerolog.Nop())
	icon := mustParse(t, server.URL+"/favicon.ico")

	_, err := w.faviconHashFor(icon, testOption)
	require.Error(t, err)

	hash, err := w.faviconHashFor(icon, testOption)
	require.NoError(t, err)
	assert.Equal(t, faviconHash([]byte("icon")), hash)
}

func TestIsImage(t *testing.T) {
	h := http.Header{}
	assert.False(t, isImage(h))
	h.Set("Content-Type", "text/html; charset=utf-8")
	assert.False(t, isImage(h))
	h.Set("Content-Type", "image/png")
	assert.True(t, isImage(h))
	h.Set("Content-Type", "image/x-icon; charset=binary")
	assert.True(t, isImage(h))
}
