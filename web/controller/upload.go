package controller

import (
	"net/http"
	"os"
	"strings"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/storage"

	"github.com/gin-gonic/gin"
)

// UploadController serves stored originals and thumbnails to logged-in
// users. Paths are resolved through the store so traversal never escapes
// the upload root.
type UploadController struct {
	BaseController

	store *storage.Store
}

func NewUploadController(g *gin.RouterGroup) *UploadController {
	a := &UploadController{store: storage.NewStore(config.GetUploadRoot())}
	a.initRouter(g)
	return a
}

func (a *UploadController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/u")
	g.Use(a.checkLogin)

	g.GET("/*filepath", a.serve)
}

func (a *UploadController) serve(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")

	abs, err := a.store.Abs(rel)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "public, max-age=2592000, immutable")
	c.File(abs)
}
