package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>tagstore — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the tag store endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "tagstore", "version": "v0.1.0" },
  "paths": {
    "/api/tags": {
      "get": { "summary": "List tags, optionally filtered by ?q= substring", "responses": { "200": { "description": "tag list" } } },
      "post": { "summary": "Create a tag (helper only)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"description":{"type":"string"},"author_id":{"type":"string"}}}}}}, "responses": { "201": { "description": "created" }, "409": { "description": "name already exists" } } }
    },
    "/api/tags/suggest": {
      "get": { "summary": "Autocomplete choices for a partial tag name", "responses": { "200": { "description": "at most 25 choices" } } }
    },
    "/api/tags/name/{name}": {
      "get": { "summary": "Fetch a tag by name", "responses": { "200": { "description": "tag" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a tag by name (helper only)", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/tags/id/{id}": {
      "patch": { "summary": "Edit a tag's name and/or description (helper only)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"description":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated tag" }, "404": { "description": "not found" }, "409": { "description": "new name already exists" } } }
    },
    "/interactions/command": {
      "post": { "summary": "Execute a chat command (view/info/list/create/edit/delete)", "responses": { "200": { "description": "message, embed or modal" } } }
    },
    "/interactions/modal": {
      "post": { "summary": "Submit a create/edit tag form", "responses": { "200": { "description": "result message" } } }
    },
    "/interactions/autocomplete": {
      "post": { "summary": "Autocomplete tag names for a slash-command option", "responses": { "200": { "description": "choice list" } } }
    },
    "/auth/login": {
      "post": { "summary": "Editor login with username/password", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/admin/export": {
      "post": { "summary": "Export all tags to object storage (helper only)", "responses": { "201": { "description": "export job" } } }
    },
    "/api/admin/export/{id}": {
      "get": { "summary": "Fetch an export job by id", "responses": { "200": { "description": "export job" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
