package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const indexBody = "<!DOCTYPE html>\n<html><body>preview</body></html>\n"

// newFixtureTree builds a servable directory next to a file that must
// never be reachable:
//
//	parent/secret.txt
//	parent/public/index.html
//	parent/public/app.js
//	parent/public/docs/index.html
func newFixtureTree(t *testing.T) (root string) {
	t.Helper()

	parent := t.TempDir()
	root = filepath.Join(parent, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))

	files := map[string]string{
		filepath.Join(parent, "secret.txt"):       "top secret\n",
		filepath.Join(root, "index.html"):         indexBody,
		filepath.Join(root, "app.js"):             "console.log('app')\n",
		filepath.Join(root, "docs", "index.html"): "<p>docs</p>\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	}

	return root
}

func newStaticRouter(t *testing.T) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.NoRoute(NewStaticHandler(newFixtureTree(t), "index.html").Handle)
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestStaticHandler_RootServesIndex(t *testing.T) {
	router := newStaticRouter(t)

	w := get(router, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, indexBody, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestStaticHandler_RootAndIndexIdentical(t *testing.T) {
	router := newStaticRouter(t)

	root := get(router, "/")
	index := get(router, "/index.html")

	assert.Equal(t, index.Code, root.Code)
	assert.Equal(t, index.Body.String(), root.Body.String())
	assert.Equal(t, index.Header().Get("Content-Type"), root.Header().Get("Content-Type"))
	assert.Equal(t, index.Header().Get("Content-Length"), root.Header().Get("Content-Length"))
	assert.Equal(t, index.Header().Get("Last-Modified"), root.Header().Get("Last-Modified"))
}

func TestStaticHandler_QueryStringIgnored(t *testing.T) {
	router := newStaticRouter(t)

	w := get(router, "/?tab=diff&row=3")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, indexBody, w.Body.String())
}

func TestStaticHandler_ServesAsset(t *testing.T) {
	router := newStaticRouter(t)

	w := get(router, "/app.js")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log('app')\n", w.Body.String())
}

func TestStaticHandler_NotFound(t *testing.T) {
	router := newStaticRouter(t)

	w := get(router, "/does-not-exist.xyz")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404 page not found", w.Body.String())
}

func TestStaticHandler_TraversalStaysInsideRoot(t *testing.T) {
	router := newStaticRouter(t)

	for _, target := range []string{
		"/../secret.txt",
		"/../../etc/passwd",
		"/docs/../../secret.txt",
	} {
		t.Run(target, func(t *testing.T) {
			w := get(router, target)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.NotContains(t, w.Body.String(), "top secret")
			assert.NotContains(t, w.Body.String(), "root:")
		})
	}
}

func TestStaticHandler_DirectoryServesItsIndex(t *testing.T) {
	router := newStaticRouter(t)

	for _, target := range []string{"/docs", "/docs/"} {
		t.Run(target, func(t *testing.T) {
			w := get(router, target)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "<p>docs</p>\n", w.Body.String())
		})
	}
}

func TestStaticHandler_DirectoryWithoutIndexIs404(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	router := gin.New()
	router.NoRoute(NewStaticHandler(root, "index.html").Handle)

	w := get(router, "/empty")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticHandler_RefusesWriteMethods(t *testing.T) {
	router := newStaticRouter(t)

	for _, method := range []string{
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodPatch,
	} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, "/app.js", nil))

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
			assert.NotContains(t, w.Body.String(), "console.log")
		})
	}
}

func TestStaticHandler_HeadOmitsBody(t *testing.T) {
	router := newStaticRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/app.js", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "javascript")
}

func TestStaticHandler_CustomIndexDocument(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.html"), []byte("<p>main</p>"), 0o644))

	router := gin.New()
	router.NoRoute(NewStaticHandler(root, "main.html").Handle)

	w := get(router, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>main</p>", w.Body.String())
}
