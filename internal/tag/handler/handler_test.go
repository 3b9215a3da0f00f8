package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/helperkit/tagstore/internal/tag"
	"github.com/helperkit/tagstore/internal/tag/service"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*gin.Engine, *service.Service) {
	g := gin.New()
	svc := service.NewMemory()
	RegisterTagRoutes(g, svc)
	return g, svc
}

func doJSON(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestTagHandler_CRUD(t *testing.T) {
	g, _ := newTestRouter()

	// create
	w := doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"d.py cogs","description":"how cogs work","authorId":"1234"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created tag.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "1234", created.AuthorID)

	// fetch by exact name
	w = doJSON(t, g, http.MethodGet, "/api/tags/name/d.py%20cogs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got tag.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "how cogs work", got.Description)

	// list
	w = doJSON(t, g, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Tags []tag.Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Tags, 1)

	// edit
	w = doJSON(t, g, http.MethodPatch, "/api/tags/id/"+created.ID, `{"description":"updated"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var edited tag.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edited))
	require.Equal(t, "updated", edited.Description)
	require.NotNil(t, edited.LastEditedAt)

	// existence probe
	w = doJSON(t, g, http.MethodHead, "/api/tags/name/d.py%20cogs", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	// delete
	w = doJSON(t, g, http.MethodDelete, "/api/tags/name/d.py%20cogs", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, g, http.MethodGet, "/api/tags/name/d.py%20cogs", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, g, http.MethodHead, "/api/tags/name/d.py%20cogs", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTagHandler_DuplicateCreate(t *testing.T) {
	g, _ := newTestRouter()

	w := doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"faq","description":"a","authorId":"1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"faq","description":"b","authorId":"2"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestTagHandler_Validation(t *testing.T) {
	g, _ := newTestRouter()

	// missing fields rejected by binding
	w := doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// oversized name rejected by service validation
	long := strings.Repeat("n", 101)
	w = doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"`+long+`","description":"d","authorId":"1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTagHandler_EditMissing(t *testing.T) {
	g, _ := newTestRouter()

	w := doJSON(t, g, http.MethodPatch, "/api/tags/id/nope", `{"description":"x"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTagHandler_DeleteMissing(t *testing.T) {
	g, _ := newTestRouter()

	w := doJSON(t, g, http.MethodDelete, "/api/tags/name/ghost", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTagHandler_Suggest(t *testing.T) {
	g, _ := newTestRouter()

	doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"d.py cogs","description":"a","authorId":"1"}`)
	doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"other","description":"b","authorId":"1"}`)

	w := doJSON(t, g, http.MethodGet, "/api/tags/suggest?q=d.py", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Choices []tag.Choice `json:"choices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "d.py cogs", resp.Choices[0].Value)
}

func TestTagHandler_SearchFilter(t *testing.T) {
	g, _ := newTestRouter()

	doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"alpha","description":"a","authorId":"1"}`)
	doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"beta","description":"b","authorId":"1"}`)

	w := doJSON(t, g, http.MethodGet, "/api/tags?q=alp", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tags []tag.Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tags, 1)
	require.Equal(t, "alpha", resp.Tags[0].Name)
}

func TestTagHandler_ListPage(t *testing.T) {
	g, _ := newTestRouter()

	for i := 0; i < 12; i++ {
		w := doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"tag-`+string(rune('a'+i))+`","description":"d","authorId":"1"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, g, http.MethodGet, "/api/tags?page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tags  []tag.Tag `json:"tags"`
		Page  int       `json:"page"`
		Pages int       `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Page)
	require.Equal(t, 2, resp.Pages)
	require.Len(t, resp.Tags, 2)

	w = doJSON(t, g, http.MethodGet, "/api/tags?page=3", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTagHandler_ProtectedRoutes(t *testing.T) {
	g := gin.New()
	svc := service.NewMemory()
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	RegisterTagRoutes(g, svc, deny)

	// reads stay open
	w := doJSON(t, g, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, w.Code)

	// mutations blocked
	w = doJSON(t, g, http.MethodPost, "/api/tags", `{"name":"x","description":"y","authorId":"1"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(t, g, http.MethodDelete, "/api/tags/name/x", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
