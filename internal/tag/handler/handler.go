package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/helperkit/tagstore/internal/tag/service"
	"github.com/helperkit/tagstore/pkg/middleware"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type createRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	AuthorID    string `json:"authorId"`
}

type updateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// RegisterTagRoutes wires the REST tag API. protect middlewares (auth + role
// checks) are applied to the mutating routes only; read routes stay public.
func RegisterTagRoutes(r gin.IRouter, svc *service.Service, protect ...gin.HandlerFunc) {
	g := r.Group("/api/tags")

	g.GET("", func(c *gin.Context) {
		query := c.Query("q")
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
		if err != nil || limit < 1 || limit > maxListLimit {
			limit = defaultListLimit
		}

		if query != "" {
			hits, err := svc.Search(c.Request.Context(), query, limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"tags": hits})
			return
		}

		list, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// ?page= returns one display page of 10 instead of a limited listing
		if p := c.Query("page"); p != "" {
			pages := service.Pages(list)
			page, err := strconv.Atoi(p)
			if err != nil || page < 1 || page > len(pages) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"tags": pages[page-1], "page": page, "pages": len(pages)})
			return
		}

		if len(list) > limit {
			list = list[:limit]
		}
		c.JSON(http.StatusOK, gin.H{"tags": list})
	})

	g.GET("/suggest", func(c *gin.Context) {
		choices, err := svc.Suggest(c.Request.Context(), c.Query("q"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"choices": choices})
	})

	g.GET("/name/:name", func(c *gin.Context) {
		t, err := svc.Get(c.Request.Context(), c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	// existence probe without fetching the body
	g.HEAD("/name/:name", func(c *gin.Context) {
		ok, err := svc.Exists(c.Request.Context(), c.Param("name"))
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	})

	mut := g.Group("")
	for _, mw := range protect {
		mut.Use(mw)
	}

	mut.POST("", func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		author := middleware.ClaimSubject(c)
		if author == "" {
			author = req.AuthorID
		}
		t, err := svc.Create(c.Request.Context(), req.Name, author, req.Description)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	})

	mut.PATCH("/id/:id", func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		t, err := svc.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	mut.DELETE("/name/:name", func(c *gin.Context) {
		removed, err := svc.Delete(c.Request.Context(), c.Param("name"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "tag already exists"})
	case errors.Is(err, service.ErrInvalidName), errors.Is(err, service.ErrInvalidDescription):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
