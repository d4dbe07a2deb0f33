package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Basic-PDF-Manager/Document-Service/internal/blob"
	"github.com/Basic-PDF-Manager/Document-Service/internal/catalog"
	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
	"github.com/Basic-PDF-Manager/Document-Service/internal/registry"
	"github.com/Basic-PDF-Manager/Document-Service/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	maxUploadSize      = 10 << 20 // 10 MB
	pdfContentType     = "application/pdf"
	defaultDescription = "No description"
)

// UploadPDF accepts a multipart PDF upload and registers it. The binary is
// written to the blob store before the registry mutation; metadata
// persistence happens asynchronously behind the registry.
func (h *Handlers) UploadPDF(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not logged in"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File exceeds the 10 MB limit"})
		return
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != pdfContentType {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Only PDF files are allowed"})
		return
	}

	folderID := catalog.DefaultFolderID
	if raw := c.PostForm("folderId"); raw != "" {
		folderID, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid folder id"})
			return
		}
	}
	if !h.Catalog.Exists(folderID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Specified folder does not exist"})
		return
	}

	storedName := blob.StoredFilename(fileHeader.Filename)

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	defer f.Close()

	if err := h.Blobs.Save(f, fileHeader.Size, storedName, pdfContentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store file: " + err.Error()})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = strings.TrimSuffix(fileHeader.Filename, ".pdf")
	}
	description := c.PostForm("description")
	if description == "" {
		description = defaultDescription
	}

	doc := h.Registry.Upload(models.Document{
		Filename:         title,
		Description:      description,
		OriginalFilename: fileHeader.Filename,
		StoredFilename:   storedName,
		FileURL:          h.Blobs.URL(storedName),
		Size:             fileHeader.Size,
		UploadedBy:       user.Username,
		FolderID:         folderID,
	})

	h.Events.Publish("documents.uploaded", gin.H{
		"action":      "uploaded",
		"document_id": doc.ID,
		"folder_id":   doc.FolderID,
		"size":        doc.Size,
		"uploaded_by": doc.UploadedBy,
		"uploaded_at": doc.UploadedAt,
	})

	if h.CLAMAVURL != "" {
		go services.ScanUpload(h.Blobs, h.CLAMAVURL, doc.ID, storedName, func() {
			h.removeDocument(doc.ID)
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "file": doc})
}

// UploadVersion registers a new version of an existing document. Unlike
// the plain upload path, this is the explicit re-upload operation: it
// appends to the version history and bumps the version number.
func (h *Handlers) UploadVersion(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not logged in"})
		return
	}
	id := c.Param("id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File exceeds the 10 MB limit"})
		return
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != pdfContentType {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Only PDF files are allowed"})
		return
	}

	// Existence check up front so a missing id does not leave an orphaned
	// binary behind.
	if _, err := h.Registry.Get(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "PDF not found"})
		return
	}

	storedName := blob.StoredFilename(fileHeader.Filename)

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	defer f.Close()

	if err := h.Blobs.Save(f, fileHeader.Size, storedName, pdfContentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store file: " + err.Error()})
		return
	}

	doc, err := h.Registry.AddVersion(id, registry.VersionInput{
		StoredFilename: storedName,
		FileURL:        h.Blobs.URL(storedName),
		FileSize:       fileHeader.Size,
		Description:    c.PostForm("description"),
		CreatedBy:      user.Username,
	})
	if err != nil {
		// Deleted between the check and the mutation; drop the binary.
		if remErr := h.Blobs.Remove(storedName); remErr != nil {
			logBlobRemoveFailure(storedName, remErr)
		}
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "PDF not found"})
		return
	}

	h.Events.Publish("documents.uploaded", gin.H{
		"action":         "version_uploaded",
		"document_id":    doc.ID,
		"version_number": doc.VersionNumber,
		"size":           doc.Size,
		"uploaded_by":    user.Username,
		"uploaded_at":    time.Now().UTC().Format(time.RFC3339),
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "file": doc})
}
