package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/helperkit/tagstore/internal/tag/service"
)

// Modal custom ids understood by the modal-submission endpoint.
const (
	modalNewTag        = "tagstore_new_tag"
	modalEditTagPrefix = "tagstore_edit_tag_"
)

// CommandRequest is the platform-neutral shape of one chat command. The
// chat front-end resolves platform specifics (slash-command parsing, role
// membership) and forwards the result here. Helper reflects the invoking
// chat user's role as resolved by the front-end; the front-end itself is
// authenticated by the middleware fronting the group.
type CommandRequest struct {
	Command string            `json:"command" binding:"required"`
	Options map[string]string `json:"options"`
	UserID  string            `json:"user_id"`
	Helper  bool              `json:"helper"`
}

// ModalRequest carries a submitted form back to the store.
type ModalRequest struct {
	CustomID  string            `json:"custom_id" binding:"required"`
	UserID    string            `json:"user_id"`
	Responses map[string]string `json:"responses"`
}

type ModalField struct {
	CustomID    string `json:"custom_id"`
	Label       string `json:"label"`
	Style       string `json:"style"`
	Value       string `json:"value,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	MinLength   int    `json:"min_length"`
	MaxLength   int    `json:"max_length"`
}

type Modal struct {
	CustomID string       `json:"custom_id"`
	Title    string       `json:"title"`
	Fields   []ModalField `json:"fields"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      string       `json:"footer,omitempty"`
}

// CommandResponse is rendered by the chat front-end as a message, embed,
// popup form or autocomplete choice list.
type CommandResponse struct {
	Content   string  `json:"content,omitempty"`
	Ephemeral bool    `json:"ephemeral,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
	Modal     *Modal  `json:"modal,omitempty"`
	Page      int     `json:"page,omitempty"`
	Pages     int     `json:"pages,omitempty"`
}

// CommandHandler adapts chat commands and form submissions to the tag store.
type CommandHandler struct {
	tags *service.Service
}

func NewCommandHandler(tags *service.Service) *CommandHandler {
	return &CommandHandler{tags: tags}
}

// Register wires the gateway under /interactions. protect middlewares
// (front-end authentication) apply to the whole group.
func (h *CommandHandler) Register(rg *gin.RouterGroup, protect ...gin.HandlerFunc) {
	g := rg.Group("/interactions", protect...)
	g.POST("/command", h.Command)
	g.POST("/modal", h.Modal)
	g.POST("/autocomplete", h.Autocomplete)
}

func (h *CommandHandler) Command(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Command {
	case "view":
		h.view(c, req)
	case "info":
		h.info(c, req)
	case "list":
		h.list(c, req)
	case "create":
		if !requireHelper(c, req) {
			return
		}
		c.JSON(http.StatusOK, CommandResponse{Modal: newTagModal()})
	case "edit":
		if !requireHelper(c, req) {
			return
		}
		h.edit(c, req)
	case "delete":
		if !requireHelper(c, req) {
			return
		}
		h.delete(c, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown command %q", req.Command)})
	}
}

func (h *CommandHandler) view(c *gin.Context, req CommandRequest) {
	name := req.Options["tag_name"]
	t, err := h.tags.Get(c.Request.Context(), name)
	if err != nil {
		writeTagError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, CommandResponse{Content: t.Description})
}

func (h *CommandHandler) info(c *gin.Context, req CommandRequest) {
	name := req.Options["tag_name"]
	t, err := h.tags.Get(c.Request.Context(), name)
	if err != nil {
		writeTagError(c, name, err)
		return
	}

	edited := "N/A"
	if t.LastEditedAt != nil {
		edited = t.LastEditedAt.UTC().Format("2006-01-02 15:04:05 UTC")
	}
	embed := Embed{
		Title: t.Name,
		Fields: []EmbedField{
			{Name: "Author", Value: fmt.Sprintf("<@%s>", t.AuthorID), Inline: true},
			{Name: "Timestamps", Value: fmt.Sprintf("Created at: %s\nLast edited: %s", t.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"), edited), Inline: true},
			{Name: "Content", Value: "Please use /tag view.", Inline: true},
		},
		Footer: "Tags are made and maintained by the Helpers here in the support server. Please contact one if you believe one is incorrect.",
	}
	c.JSON(http.StatusOK, CommandResponse{Embeds: []Embed{embed}})
}

func (h *CommandHandler) list(c *gin.Context, req CommandRequest) {
	all, err := h.tags.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(all) == 0 {
		c.JSON(http.StatusOK, CommandResponse{Content: "There are no tags yet.", Ephemeral: true})
		return
	}

	pages := service.Pages(all)
	page := 1
	if v, ok := req.Options["page"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(pages) {
			page = n
		}
	}

	lines := make([]string, 0, len(pages[page-1]))
	for i, t := range pages[page-1] {
		lines = append(lines, fmt.Sprintf("` %d ` %s", (page-1)*service.PageSize+i+1, t.Name))
	}
	embed := Embed{
		Title:       "Tag List",
		Description: "This is the list of currently existing tags.",
		Fields:      []EmbedField{{Name: "Names", Value: strings.Join(lines, "\n")}},
	}
	c.JSON(http.StatusOK, CommandResponse{Embeds: []Embed{embed}, Page: page, Pages: len(pages)})
}

func (h *CommandHandler) edit(c *gin.Context, req CommandRequest) {
	name := req.Options["tag_name"]
	t, err := h.tags.Get(c.Request.Context(), name)
	if err != nil {
		writeTagError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, CommandResponse{Modal: editTagModal(t.ID, t.Name, t.Description)})
}

func (h *CommandHandler) delete(c *gin.Context, req CommandRequest) {
	name := req.Options["tag_name"]
	removed, err := h.tags.Delete(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, CommandResponse{Content: fmt.Sprintf(":x: Tag %s does not exist.", name), Ephemeral: true})
		return
	}
	c.JSON(http.StatusOK, CommandResponse{
		Content:   fmt.Sprintf(":heavy_check_mark: Tag `%s` has been successfully deleted.", name),
		Ephemeral: true,
	})
}

func (h *CommandHandler) Modal(c *gin.Context) {
	var req ModalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case req.CustomID == modalNewTag:
		h.addTag(c, req)
	case strings.HasPrefix(req.CustomID, modalEditTagPrefix):
		h.editTag(c, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown modal %q", req.CustomID)})
	}
}

func (h *CommandHandler) addTag(c *gin.Context, req ModalRequest) {
	name := req.Responses["tag_name"]
	_, err := h.tags.Create(c.Request.Context(), name, req.UserID, req.Responses["tag_description"])
	if errors.Is(err, service.ErrAlreadyExists) {
		c.JSON(http.StatusConflict, CommandResponse{
			Content:   fmt.Sprintf(":x: Tag `%s` already exists.\n(Did you mean to use /tag edit?)", name),
			Ephemeral: true,
		})
		return
	}
	if err != nil {
		writeTagError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, CommandResponse{
		Content:   fmt.Sprintf(":heavy_check_mark: `%s` now exists. In order to view it, please use /tag view.", name),
		Ephemeral: true,
	})
}

func (h *CommandHandler) editTag(c *gin.Context, req ModalRequest) {
	id := strings.TrimPrefix(req.CustomID, modalEditTagPrefix)

	original, err := h.tags.GetByID(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, CommandResponse{Content: ":x: The original tag could not be found.", Ephemeral: true})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := req.Responses["tag_name"]
	description := req.Responses["tag_description"]
	if _, err := h.tags.Update(c.Request.Context(), id, &name, &description); err != nil {
		writeTagError(c, name, err)
		return
	}

	content := fmt.Sprintf(":heavy_check_mark: Tag `%s` has been edited.", name)
	if name != original.Name {
		content = fmt.Sprintf(":heavy_check_mark: Tag `%s` has been edited and re-named to `%s`.", original.Name, name)
	}
	c.JSON(http.StatusOK, CommandResponse{Content: content, Ephemeral: true})
}

func (h *CommandHandler) Autocomplete(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	choices, err := h.tags.Suggest(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"choices": choices})
}

func requireHelper(c *gin.Context, req CommandRequest) bool {
	if !req.Helper {
		c.JSON(http.StatusForbidden, CommandResponse{
			Content:   ":x: You do not have permission to use this command.",
			Ephemeral: true,
		})
		return false
	}
	return true
}

func writeTagError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, CommandResponse{Content: fmt.Sprintf(":x: Tag %s does not exist.", name), Ephemeral: true})
	case errors.Is(err, service.ErrInvalidName), errors.Is(err, service.ErrInvalidDescription):
		c.JSON(http.StatusBadRequest, CommandResponse{Content: ":x: " + err.Error(), Ephemeral: true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func newTagModal() *Modal {
	return &Modal{
		CustomID: modalNewTag,
		Title:    "Create new tag",
		Fields: []ModalField{
			{
				CustomID:    "tag_name",
				Label:       "What do you want the tag to be named?",
				Style:       "short",
				Placeholder: "d.py cogs vs. i.py extensions",
				MinLength:   1,
				MaxLength:   service.NameMaxLen,
			},
			{
				CustomID:    "tag_description",
				Label:       "What do you want the tag to include?",
				Style:       "paragraph",
				Placeholder: "(Note: you can also put codeblocks in here!)",
				MinLength:   1,
				MaxLength:   service.DescriptionMaxLen,
			},
		},
	}
}

func editTagModal(id, name, description string) *Modal {
	m := newTagModal()
	m.CustomID = modalEditTagPrefix + id
	m.Title = "Edit tag"
	m.Fields[0].Value = name
	m.Fields[1].Value = description
	return m
}
