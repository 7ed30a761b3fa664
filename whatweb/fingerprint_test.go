package whatweb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLibraryJSON = `[
  {
    "name": "favicon-tech",
    "priority": 5,
    "request": {"path": "/", "request_method": "get", "request_headers": {}, "request_data": ""},
    "match_rules": {"status_code": 0, "favicon_hash": ["deadbeef"], "headers": {}, "keyword": []}
  },
  {
    "name": "index-tech",
    "priority": 3,
    "request": {"path": "/", "request_method": "get", "request_headers": {}, "request_data": ""},
    "match_rules": {"status_code": 0, "favicon_hash": [], "headers": {}, "keyword": ["Powered By IndexTech"]}
  },
  {
    "name": "special-tech",
    "priority": 4,
    "request": {"path": "/console/login.jsp", "request_method": "get", "request_headers": {}, "request_data": ""},
    "match_rules": {"status_code": 200, "favicon_hash": [], "headers": {}, "keyword": ["weblogic"]}
  },
  {
    "name": "special-post-tech",
    "priority": 2,
    "request": {"path": "/", "request_method": "post", "request_headers": {"Content-Type": "text/xml"}, "request_data": "cGluZw=="},
    "match_rules": {"status_code": 0, "favicon_hash": [], "headers": {}, "keyword": ["pong"]}
  }
]`

func TestNewWebFingerPrintLibGrouping(t *testing.T) {
	lib, err := NewWebFingerPrintLib([]byte(testLibraryJSON))
	require.NoError(t, err)

	require.Len(t, lib.Favicon, 1)
	require.Len(t, lib.Index, 1)
	require.Len(t, lib.Special, 2)
	assert.Equal(t, "favicon-tech", lib.Favicon[0].Name)
	assert.Equal(t, "index-tech", lib.Index[0].Name)
}

func TestNewWebFingerPrintLibLowercasesKeywords(t *testing.T) {
	lib, err := NewWebFingerPrintLib([]byte(testLibraryJSON))
	require.NoError(t, err)
	assert.Equal(t, []string{"powered by indextech"}, lib.Index[0].MatchRules.Keyword)
}

func TestNewWebFingerPrintLibRejectsEmptyRule(t *testing.T) {
	empty := `[
	  {
	    "name": "matches-everything",
	    "priority": 1,
	    "request": {"path": "/", "request_method": "get", "request_headers": {}, "request_data": ""},
	    "match_rules": {"status_code": 0, "favicon_hash": [], "headers": {}, "keyword": []}
	  }
	]`
	_, err := NewWebFingerPrintLib([]byte(empty))
	require.ErrorIs(t, err, ErrEmptyRule)
}

func TestNewWebFingerPrintLibBadJSON(t *testing.T) {
	_, err := NewWebFingerPrintLib([]byte(`{"not": "an array"`))
	require.Error(t, err)
}

func TestNewWebFingerPrintLibFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.json")
	require.NoError(t, os.WriteFile(path, []byte(testLibraryJSON), 0o644))

	lib, err := NewWebFingerPrintLibFromFile(path)
	require.NoError(t, err)
	assert.Len(t, lib.Special, 2)

	_, err = NewWebFingerPrintLibFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestRequestTemplateKeyIsStable(t *testing.T) {
	a := WebFingerPrintRequest{Path: "/x", RequestMethod: "get", RequestHeaders: map[string]string{"A": "1", "B": "2"}}
	b := WebFingerPrintRequest{Path: "/x", RequestMethod: "get", RequestHeaders: map[string]string{"B": "2", "A": "1"}}
	assert.Equal(t, a.key(), b.key())

	c := WebFingerPrintRequest{Path: "/y", RequestMethod: "get"}
	assert.NotEqual(t, a.key(), c.key())
}
