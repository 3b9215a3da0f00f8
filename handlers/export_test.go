package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/helperkit/tagstore/internal/export"
	"github.com/helperkit/tagstore/internal/tag"
	"github.com/helperkit/tagstore/internal/tag/repository"
)

type stubUploader struct {
	keys []string
	err  error
}

func (u *stubUploader) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	if u.err != nil {
		return u.err
	}
	u.keys = append(u.keys, objectName)
	return nil
}

func newExportRouter(t *testing.T, uploader *stubUploader) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	svc := export.NewService(repo, uploader, export.NewMemoryJobStore())
	r := gin.New()
	NewExportHandler(svc).Register(r.Group("/"))
	return r, repo
}

func TestExport_Snapshot(t *testing.T) {
	uploader := &stubUploader{}
	r, repo := newExportRouter(t, uploader)
	for _, name := range []string{"a", "b"} {
		_, err := repo.Create(context.Background(), &tag.Tag{Name: name, AuthorID: "u", Description: "body"})
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/export", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var job export.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	require.Equal(t, export.StatusCompleted, job.Status)
	require.Equal(t, 2, job.TagCount)
	require.Len(t, uploader.keys, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/export/"+job.JobID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/export/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport_UploadFailureSurfaced(t *testing.T) {
	uploader := &stubUploader{err: errors.New("bucket offline")}
	r, _ := newExportRouter(t, uploader)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/export", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)

	var job export.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	require.Equal(t, export.StatusFailed, job.Status)
	require.Contains(t, job.Error, "bucket offline")
}

func TestExport_Protected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := export.NewService(repository.NewMemoryRepo(), &stubUploader{}, export.NewMemoryJobStore())
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	r := gin.New()
	NewExportHandler(svc).Register(r.Group("/"), deny)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/export", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
