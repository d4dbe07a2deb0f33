package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Basic-PDF-Manager/Document-Service/internal/api/handlers"
	"github.com/Basic-PDF-Manager/Document-Service/internal/blob"
	"github.com/Basic-PDF-Manager/Document-Service/internal/catalog"
	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
	"github.com/Basic-PDF-Manager/Document-Service/internal/registry"
	"github.com/Basic-PDF-Manager/Document-Service/internal/session"
	"github.com/Basic-PDF-Manager/Document-Service/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router     *gin.Engine
	store      *storage.SnapshotStore
	reg        *registry.Registry
	uploadsDir string
	cookie     *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	store := storage.NewSnapshotStore(filepath.Join(dir, "pdf_documents.json"))
	rec := storage.NewReconciler(store)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		rec.Shutdown(ctx, nil)
	})

	reg := registry.New(nil, rec)
	uploadsDir := filepath.Join(dir, "uploads")
	blobs, err := blob.NewLocalStore(uploadsDir)
	require.NoError(t, err)

	sessions := session.NewStore(session.User{
		ID:       1,
		Username: "user@example.com",
		Name:     "Project Leader",
	}, "password", time.Hour)

	r := gin.New()
	RegisterRoutes(r, handlers.New(reg, catalog.NewDefault(), blobs, sessions, nil, rec, ""), sessions)

	return &testEnv{router: r, store: store, reg: reg, uploadsDir: uploadsDir}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	body := bytes.NewBufferString(`{"username":"user@example.com","password":"password"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			e.cookie = c
			return
		}
	}
	t.Fatal("login response did not set a session cookie")
}

func pdfUpload(t *testing.T, path, filename, contentType string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test content"))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type fileResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	File    models.Document `json:"file"`
}

type listResponse struct {
	Success bool              `json:"success"`
	PDFs    []models.Document `json:"pdfs"`
}

func uploadOne(t *testing.T, env *testEnv, title, folderID string) models.Document {
	t.Helper()
	fields := map[string]string{"title": title}
	if folderID != "" {
		fields["folderId"] = folderID
	}
	w := env.do(pdfUpload(t, "/api/upload", title+".pdf", "application/pdf", fields))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp fileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.File
}

func TestUploadRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(pdfUpload(t, "/api/upload", "doc.pdf", "application/pdf", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.reg.Count())
}

func TestUploadScenario(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	doc := uploadOne(t, env, "Quarterly Report", "2")

	assert.Regexp(t, `^pdf_\d+_\d+$`, doc.ID)
	assert.Equal(t, 2, doc.FolderID)
	assert.Equal(t, 1, doc.VersionNumber)
	assert.Equal(t, "user@example.com", doc.UploadedBy)
	assert.Equal(t, "Quarterly Report", doc.Filename)
	assert.Equal(t, "No description", doc.Description)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs?folderId=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var inFolder listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inFolder))
	require.Len(t, inFolder.PDFs, 1)
	assert.Equal(t, doc.ID, inFolder.PDFs[0].ID)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs?folderId=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var otherFolder listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &otherFolder))
	assert.Empty(t, otherFolder.PDFs)
}

func TestListTreatsZeroFolderAsUnfiltered(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	uploadOne(t, env, "In Root", "1")
	uploadOne(t, env, "In Child", "2")

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs?folderId=0", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var all listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all.PDFs, 2)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs?folderId=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadDefaultsToRootFolder(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	doc := uploadOne(t, env, "No Folder", "")
	assert.Equal(t, catalog.DefaultFolderID, doc.FolderID)
}

func TestUploadRejectsUnknownFolder(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(pdfUpload(t, "/api/upload", "doc.pdf", "application/pdf", map[string]string{"folderId": "99"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.reg.Count())
}

func TestUploadRejectsNonPDF(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(pdfUpload(t, "/api/upload", "doc.txt", "text/plain", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.reg.Count())
}

func TestUploadRejectsMissingFile(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := env.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPDFReturnsBareDocument(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	doc := uploadOne(t, env, "Fetch Me", "1")

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs/"+doc.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, doc.ID, got.ID)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs/pdf_0_0", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteThenGet(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	doc := uploadOne(t, env, "Doomed", "1")

	w := env.do(httptest.NewRequest(http.MethodDelete, "/api/pdfs/"+doc.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs/"+doc.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/pdfs", nil))
	var all listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Empty(t, all.PDFs)
}

func TestDeleteMissingLeavesCountUnchanged(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	uploadOne(t, env, "Keeper", "1")

	w := env.do(httptest.NewRequest(http.MethodDelete, "/api/pdfs/pdf_0_0", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, env.reg.Count())
}

func TestVersionUploadBumpsVersionNumber(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	doc := uploadOne(t, env, "Versioned", "1")

	w := env.do(pdfUpload(t, "/api/pdfs/"+doc.ID+"/versions", "versioned-v2.pdf", "application/pdf",
		map[string]string{"description": "second draft"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp fileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.File.VersionNumber)
	require.Len(t, resp.File.Versions, 2)
	assert.Equal(t, doc.StoredFilename, resp.File.Versions[0].StoredFilename)
	assert.Equal(t, "second draft", resp.File.Versions[1].Description)

	w = env.do(pdfUpload(t, "/api/pdfs/pdf_0_0/versions", "v2.pdf", "application/pdf", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Delete has to clean up the binary behind every version, including the
// initial upload that was superseded by a re-upload.
func TestDeleteRemovesAllVersionBinaries(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	doc := uploadOne(t, env, "Replaced", "1")

	w := env.do(pdfUpload(t, "/api/pdfs/"+doc.ID+"/versions", "replaced-v2.pdf", "application/pdf", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp fileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEqual(t, doc.StoredFilename, resp.File.StoredFilename)

	v1Path := filepath.Join(env.uploadsDir, doc.StoredFilename)
	v2Path := filepath.Join(env.uploadsDir, resp.File.StoredFilename)
	_, err := os.Stat(v1Path)
	require.NoError(t, err)
	_, err = os.Stat(v2Path)
	require.NoError(t, err)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/pdfs/"+doc.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	_, err = os.Stat(v1Path)
	assert.True(t, os.IsNotExist(err), "initial version binary should be removed")
	_, err = os.Stat(v2Path)
	assert.True(t, os.IsNotExist(err), "current version binary should be removed")
}

func TestSetMetadata(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	doc := uploadOne(t, env, "Tagged", "1")

	body := bytes.NewBufferString(`{"key":"department","value":"engineering"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/pdfs/"+doc.ID+"/metadata", body)
	req.Header.Set("Content-Type", "application/json")
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp fileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.File.Metadata, 1)
	assert.Equal(t, "engineering", resp.File.Metadata[0].Value)

	// missing key
	req = httptest.NewRequest(http.MethodPut, "/api/pdfs/"+doc.ID+"/metadata", bytes.NewBufferString(`{"value":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
}

func TestFoldersEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/folders", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.login(t)
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/folders", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool            `json:"success"`
		Folders []models.Folder `json:"folders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Folders, 3)
}

func TestCheckAuthAndLogout(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/check-auth", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	env.login(t)
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/check-auth", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/user", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	body := bytes.NewBufferString(`{"username":"user@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
}

// A restart reconstructs the registry from the snapshot written by the
// reconciler, field for field.
func TestRestartRestoresRegistry(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	uploadOne(t, env, "Survivor A", "2")
	uploadOne(t, env, "Survivor B", "1")

	// wait for the async writes to land
	require.Eventually(t, func() bool {
		docs, err := env.store.LoadAll(context.Background())
		return err == nil && len(docs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	persisted, err := env.store.LoadAll(context.Background())
	require.NoError(t, err)

	restarted := registry.New(persisted, nil)
	assert.Equal(t, env.reg.Snapshot(), restarted.Snapshot())
}
