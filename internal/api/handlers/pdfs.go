package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
	"github.com/Basic-PDF-Manager/Document-Service/internal/registry"
	"github.com/gin-gonic/gin"
)

// ListPDFs returns documents, optionally filtered to a single folder.
// The filter is by direct placement only; documents in child folders are
// not pulled up into the parent's listing. A folderId of 0 means no
// filter, same as omitting it.
func (h *Handlers) ListPDFs(c *gin.Context) {
	var folderID *int
	if raw := c.Query("folderId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid folder id"})
			return
		}
		if id != 0 {
			folderID = &id
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pdfs": h.Registry.List(folderID)})
}

func (h *Handlers) GetPDF(c *gin.Context) {
	doc, err := h.Registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "PDF not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeletePDF removes the document and requests removal of its binary
// content. A failed binary removal is logged and does not abort the
// operation: the registry entry is gone regardless.
func (h *Handlers) DeletePDF(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.removeDocument(id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "PDF not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.Events.Publish("documents.deleted", gin.H{
		"action":      "deleted",
		"document_id": id,
		"deleted_by":  doc.UploadedBy,
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type metadataRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetMetadata attaches or overwrites a key/value pair on a document.
func (h *Handlers) SetMetadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "key is required"})
		return
	}

	doc, err := h.Registry.SetMetadata(c.Param("id"), req.Key, req.Value)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "PDF not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": doc})
}

// removeDocument deletes a document from the registry and best-effort
// removes the current binary plus every historical version binary.
func (h *Handlers) removeDocument(id string) (models.Document, error) {
	doc, err := h.Registry.Delete(id)
	if err != nil {
		return models.Document{}, err
	}

	seen := map[string]bool{}
	names := []string{doc.StoredFilename}
	for _, v := range doc.Versions {
		names = append(names, v.StoredFilename)
	}
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if err := h.Blobs.Remove(name); err != nil {
			logBlobRemoveFailure(name, err)
		}
	}
	return doc, nil
}

func logBlobRemoveFailure(name string, err error) {
	log.Printf("Warning: failed to remove stored file %s: %v", name, err)
}
