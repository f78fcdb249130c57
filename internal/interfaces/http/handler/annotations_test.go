package handler_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

// Every mounted API route carries a swag @Router line so `swag init` documents it
func TestHandlers_RoutesAreAnnotated(t *testing.T) {
	app := newTestApp(t)

	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	var src strings.Builder
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") {
			continue
		}
		b, err := os.ReadFile(f)
		require.NoError(t, err)
		src.Write(b)
	}
	annotations := src.String()

	checked := 0
	for _, r := range app.engine.Routes() {
		path := r.Path
		switch {
		case strings.HasPrefix(path, "/api/v1/"):
			path = strings.TrimPrefix(path, "/api/v1")
		case path == "/health":
		default:
			continue
		}
		path = pathParam.ReplaceAllString(path, "{$1}")
		want := regexp.MustCompile(`@Router\s+` + regexp.QuoteMeta(path) + `\s+\[` + strings.ToLower(r.Method) + `\]`)
		assert.Truef(t, want.MatchString(annotations), "%s %s has no @Router annotation", r.Method, r.Path)
		checked++
	}
	assert.Greater(t, checked, 50)
}
