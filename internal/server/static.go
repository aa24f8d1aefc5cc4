package server

import (
	"errors"
	"io/fs"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// StaticHandler delivers files from a fixed root directory.
//
// Path resolution goes through http.Dir, which confines lookups to the
// root: the request path is cleaned against "/" first, so ".." elements
// can never climb above it. Delivery goes through http.ServeContent, which
// supplies Content-Type, Content-Length, Last-Modified and the
// conditional/range handling.
type StaticHandler struct {
	root  http.Dir
	index string
}

// NewStaticHandler creates a handler rooted at the given directory.
// index is the document served for the root path (normally "index.html").
func NewStaticHandler(root, index string) *StaticHandler {
	return &StaticHandler{
		root:  http.Dir(root),
		index: index,
	}
}

// Handle serves one request.
//
// The root path rewrites to the index document; every other path is
// delegated unchanged. The query string never participates in resolution.
// Only file reads are implemented: anything but GET or HEAD is refused
// before the filesystem is touched. (OPTIONS never reaches this handler;
// the CORS middleware answers it.)
func (h *StaticHandler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Header("Allow", "GET, HEAD, OPTIONS")
		c.String(http.StatusMethodNotAllowed, "405 method not allowed")
		c.Abort()
		return
	}

	upath := path.Clean("/" + c.Request.URL.Path)
	if upath == "/" {
		upath = "/" + h.index
	}

	h.serveFile(c, upath)
}

// serveFile opens name under the root and streams it.
//
// ServeContent is used instead of http.FileServer so that a direct request
// for the index document is served as-is rather than redirected: "/" and
// "/index.html" must produce identical responses.
func (h *StaticHandler) serveFile(c *gin.Context, name string) {
	f, err := h.root.Open(name)
	if err != nil {
		h.abortWithFSError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.abortWithFSError(c, err)
		return
	}

	// Directories are served as their index document. No listings.
	if info.IsDir() {
		idx, err := h.root.Open(path.Join(name, h.index))
		if err != nil {
			h.abortWithFSError(c, err)
			return
		}
		defer idx.Close()

		idxInfo, err := idx.Stat()
		if err != nil || idxInfo.IsDir() {
			c.String(http.StatusNotFound, "404 page not found")
			c.Abort()
			return
		}

		http.ServeContent(c.Writer, c.Request, idxInfo.Name(), idxInfo.ModTime(), idx)
		return
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// abortWithFSError maps filesystem errors onto the standard status pair.
func (h *StaticHandler) abortWithFSError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.String(http.StatusNotFound, "404 page not found")
	case errors.Is(err, fs.ErrPermission):
		c.String(http.StatusForbidden, "403 Forbidden")
	default:
		c.String(http.StatusInternalServerError, "500 Internal Server Error")
	}
	c.Abort()
}
