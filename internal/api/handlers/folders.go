package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListFolders returns the full folder hierarchy as a flat list; the
// frontend reconstructs the tree from parentId.
func (h *Handlers) ListFolders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "folders": h.Catalog.Folders()})
}
