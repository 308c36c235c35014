package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/api/middleware"
	"salemre/backend/internal/services"
)

// BlogHandler serves /api/blog.
type BlogHandler struct {
	blog services.IBlogService
}

func NewBlogHandler(blog services.IBlogService) *BlogHandler {
	return &BlogHandler{blog: blog}
}

func (h *BlogHandler) List(c *gin.Context) {
	res, err := h.blog.List(c.Request.Context(), c.Request.URL.Query(), middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendList(c, res)
}

func (h *BlogHandler) Get(c *gin.Context) {
	p, err := h.blog.Get(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, p)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var in services.BlogInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.blog.Create(c.Request.Context(), in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusCreated, p)
}

func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "blog post")
	if !ok {
		return
	}
	var in services.BlogInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.blog.Update(c.Request.Context(), id, in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, p)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "blog post")
	if !ok {
		return
	}
	if err := h.blog.Delete(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, gin.H{})
}

// Categories handles GET /api/blog/categories.
func (h *BlogHandler) Categories(c *gin.Context) {
	sendData(c, http.StatusOK, h.blog.Categories())
}

// Tags handles GET /api/blog/tags.
func (h *BlogHandler) Tags(c *gin.Context) {
	tags, err := h.blog.Tags(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	sendData(c, http.StatusOK, tags)
}
