package handlers

import (
	"net/http"

	"github.com/Basic-PDF-Manager/Document-Service/internal/blob"
	"github.com/Basic-PDF-Manager/Document-Service/internal/catalog"
	"github.com/Basic-PDF-Manager/Document-Service/internal/registry"
	"github.com/Basic-PDF-Manager/Document-Service/internal/services"
	"github.com/Basic-PDF-Manager/Document-Service/internal/session"
	"github.com/Basic-PDF-Manager/Document-Service/internal/storage"
	"github.com/gin-gonic/gin"
)

// Handlers carries the request-scoped collaborators. Everything is
// constructed once at startup and injected; no package-level state.
type Handlers struct {
	Registry   *registry.Registry
	Catalog    *catalog.Catalog
	Blobs      blob.FileStore
	Sessions   *session.Store
	Events     *services.Publisher
	Reconciler *storage.Reconciler
	CLAMAVURL  string
}

func New(reg *registry.Registry, cat *catalog.Catalog, blobs blob.FileStore, sessions *session.Store, events *services.Publisher, rec *storage.Reconciler, clamAvURL string) *Handlers {
	return &Handlers{
		Registry:   reg,
		Catalog:    cat,
		Blobs:      blobs,
		Sessions:   sessions,
		Events:     events,
		Reconciler: rec,
		CLAMAVURL:  clamAvURL,
	}
}

func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"documents": h.Registry.Count(),
	}
	if h.Reconciler != nil {
		resp["failed_writes"] = len(h.Reconciler.Failures())
	}
	c.JSON(http.StatusOK, resp)
}

func userFromContext(c *gin.Context) (session.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return session.User{}, false
	}
	user, ok := v.(session.User)
	return user, ok
}
