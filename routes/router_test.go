package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neovault/config"
	"neovault/models"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.File{}, &models.AdminSettings{}))

	cfg := config.AppConfig{
		GinMode:         "test",
		SessionSecret:   "test-secret",
		SessionTTLHours: 1,
		SessionStore:    "memory",
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 1,
		AllowedOrigins:  []string{"*"},
	}
	return SetupRouter(db, cfg)
}

func doJSON(r *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine) []*http.Cookie {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "admin123"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func uploadFile(r *gin.Engine, cookies []*http.Cookie, fieldName, filename, contentType, content, categoryID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(h)
	part.Write([]byte(content))
	if categoryID != "" {
		mw.WriteField("categoryId", categoryID)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginLogoutFlow(t *testing.T) {
	r := newTestRouter(t)

	// Missing fields.
	w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong credentials.
	w = doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Default credentials work.
	cookies := login(t, r)

	w = doJSON(r, http.MethodGet, "/api/auth/user", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var user struct {
		Username string `json:"username"`
		IsAdmin  bool   `json:"isAdmin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin)

	// No session: 401.
	w = doJSON(r, http.MethodGet, "/api/auth/user", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout invalidates the session.
	w = doJSON(r, http.MethodPost, "/api/logout", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/auth/user", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout without a session is still a success.
	w = doJSON(r, http.MethodPost, "/api/logout", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMutatingEndpointsRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	calls := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/auth/user"},
		{http.MethodGet, "/api/admin/settings"},
		{http.MethodPut, "/api/admin/settings"},
		{http.MethodPost, "/api/categories"},
		{http.MethodDelete, "/api/categories/some-id"},
		{http.MethodPost, "/api/files/upload"},
		{http.MethodDelete, "/api/files/some-id"},
		{http.MethodPatch, "/api/files/some-id"},
	}
	for _, call := range calls {
		w := doJSON(r, call.method, call.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", call.method, call.path)
	}
}

func TestPublicEndpointsNeedNoAuth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/categories", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/files", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/files/unknown/download", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryLifecycle(t *testing.T) {
	r := newTestRouter(t)
	cookies := login(t, r)

	// Slug derivation.
	w := doJSON(r, http.MethodPost, "/api/categories", gin.H{"name": "My Docs!!"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.Equal(t, "my-docs", cat.Slug)
	assert.Equal(t, "My Docs!!", cat.Name)

	// A name normalizing to the same slug conflicts.
	w = doJSON(r, http.MethodPost, "/api/categories", gin.H{"name": "my docs"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing name is invalid.
	w = doJSON(r, http.MethodPost, "/api/categories", gin.H{}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Public listing includes it with an empty files array.
	w = doJSON(r, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cats []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	require.Len(t, cats, 1)

	// Delete cascades and returns no content.
	w = doJSON(r, http.MethodDelete, "/api/categories/"+cat.ID, nil, cookies)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(r, http.MethodGet, "/api/categories", nil, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	assert.Empty(t, cats)
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	r := newTestRouter(t)
	cookies := login(t, r)

	payload := "hello vault, this is the payload"
	w := uploadFile(r, cookies, "file", "notes.txt", "text/plain", payload, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var file models.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &file))
	assert.Equal(t, "notes.txt", file.OriginalName)
	assert.Equal(t, int64(len(payload)), file.Size)
	assert.Equal(t, "admin", file.UploadedBy)

	// Download returns identical bytes and the original name.
	w = doJSON(r, http.MethodGet, "/api/files/"+file.ID+"/download", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.String())
	assert.Equal(t, `attachment; filename="notes.txt"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestUploadValidation(t *testing.T) {
	r := newTestRouter(t)
	cookies := login(t, r)

	// No file field.
	w := doJSON(r, http.MethodPost, "/api/files/upload", nil, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Disallowed type leaves no trace.
	w = uploadFile(r, cookies, "file", "script.sh", "application/x-sh", "#!/bin/sh", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(r, http.MethodGet, "/api/files", nil, nil)
	var files []models.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	assert.Empty(t, files)

	// Unknown category.
	w = uploadFile(r, cookies, "file", "notes.txt", "text/plain", "hi", "no-such-category")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The .exe override admits executables.
	w = uploadFile(r, cookies, "file", "setup.exe", "application/x-msdownload", "MZ", "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestFileSoftDelete(t *testing.T) {
	r := newTestRouter(t)
	cookies := login(t, r)

	w := uploadFile(r, cookies, "file", "doomed.txt", "text/plain", "bye", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var file models.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &file))

	w = doJSON(r, http.MethodDelete, "/api/files/"+file.ID, nil, cookies)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone from listings and download.
	w = doJSON(r, http.MethodGet, "/api/files", nil, nil)
	var files []models.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	assert.Empty(t, files)
	w = doJSON(r, http.MethodGet, "/api/files/"+file.ID+"/download", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deleting again is 404: the row no longer resolves.
	w = doJSON(r, http.MethodDelete, "/api/files/"+file.ID, nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilePatch(t *testing.T) {
	r := newTestRouter(t)
	cookies := login(t, r)

	w := doJSON(r, http.MethodPost, "/api/categories", gin.H{"name": "Docs"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var cat models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))

	w = uploadFile(r, cookies, "file", "draft.txt", "text/plain", "v1", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var file models.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &file))

	w = doJSON(r, http.MethodPatch, "/api/files/"+file.ID, gin.H{"originalName": "final.txt", "categoryId": cat.ID}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var patched models.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patched))
	assert.Equal(t, "final.txt", patched.OriginalName)
	require.NotNil(t, patched.CategoryID)
	assert.Equal(t, cat.ID, *patched.CategoryID)

	// Category changes are validated.
	w = doJSON(r, http.MethodPatch, "/api/files/"+file.ID, gin.H{"categoryId": "bogus"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown file id.
	w = doJSON(r, http.MethodPatch, "/api/files/unknown", gin.H{"originalName": "x"}, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Category-scoped listing sees the patched file.
	w = doJSON(r, http.MethodGet, "/api/files?categoryId="+cat.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var files []models.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, file.ID, files[0].ID)
}

func TestAdminSettingsEndpoints(t *testing.T) {
	r := newTestRouter(t)
	cookies := login(t, r)

	w := doJSON(r, http.MethodGet, "/api/admin/settings", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admin", body["username"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")

	// Invalid body.
	w = doJSON(r, http.MethodPut, "/api/admin/settings", gin.H{"username": "newadmin"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Rotate credentials.
	w = doJSON(r, http.MethodPut, "/api/admin/settings", gin.H{"username": "newadmin", "password": "newpass"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// Old credentials stop working, new ones work.
	w = doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "admin123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"username": "newadmin", "password": "newpass"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}
