package whatweb

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestNextJumpLocationHeaderWinsOverMetaRefresh(t *testing.T) {
	current := mustParse(t, "https://example.com/")
	headers := http.Header{}
	headers.Set("Location", "https://example.com/from-header")
	body := `<html><head><meta http-equiv="refresh" content="0;url=/from-meta"></head></html>`

	next := nextJump(headers, current, body)
	require.NotNil(t, next)
	assert.Equal(t, "https://example.com/from-header", next.String())
}

func TestNextJumpRelativeLocation(t *testing.T) {
	current := mustParse(t, "https://example.com/a/b")
	headers := http.Header{}
	headers.Set("Location", "c")

	next := nextJump(headers, current, "")
	require.NotNil(t, next)
	assert.Equal(t, "https://example.com/a/c", next.String())
}

func TestNextJumpMetaRefresh(t *testing.T) {
	current := mustParse(t, "https://example.com/")
	body := `<html><head><meta HTTP-EQUIV="Refresh" content="1;url=/login"></head></html>`

	next := nextJump(http.Header{}, current, body)
	require.NotNil(t, next)
	assert.Equal(t, "https://example.com/login", next.String())
}

func TestNextJumpJSRedirects(t *testing.T) {
	current := mustParse(t, "https://example.com/")
	tests := []struct {
		body string
		want string
	}{
		{
			body: `<script>window.location.replace("login.jsp?up=1");</script>`,
			want: "https://example.com/login.jsp?up=1",
		},
		{
			body: `<html><meta charset='utf-8'/><script>self.location='/index.php?m=user&f=login&referer=lw==';</script>`,
			want: "https://example.com/index.php?m=user&f=login&referer=lw==",
		},
		{
			body: `window.location.href = "../cgi-bin/login.cgi?requestname=2&cmd=0";`,
			want: "https://example.com/cgi-bin/login.cgi?requestname=2&cmd=0",
		},
	}
	for _, tt := range tests {
		next := nextJump(http.Header{}, current, tt.body)
		require.NotNil(t, next, "body: %s", tt.body)
		assert.Equal(t, tt.want, next.String())
	}
}

func TestNextJumpJSIgnoredForLargeBodies(t *testing.T) {
	current := mustParse(t, "https://example.com/")
	body := `<script>window.location.replace("login.jsp");</script>` + strings.Repeat(" ", 1100)

	assert.Nil(t, nextJump(http.Header{}, current, body))
}

func TestNextJumpInvalidCandidates(t *testing.T) {
	current := mustParse(t, "https://example.com/")

	headers := http.Header{}
	headers.Set("Location", "http://%zz-invalid")
	assert.Nil(t, nextJump(headers, current, ""))

	assert.Nil(t, nextJump(http.Header{}, current, "<html><body>nothing here</body></html>"))
}
