package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/api/middleware"
	"salemre/backend/internal/services"
)

// PropertyHandler serves /api/properties.
type PropertyHandler struct {
	properties services.IPropertyService
}

func NewPropertyHandler(properties services.IPropertyService) *PropertyHandler {
	return &PropertyHandler{properties: properties}
}

// List handles GET /api/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	res, err := h.properties.List(c.Request.Context(), c.Request.URL.Query(), middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendList(c, res)
}

// Get handles GET /api/properties/:id, where :id is a numeric id or a slug.
func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.properties.Get(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, p)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var in services.PropertyInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.properties.Create(c.Request.Context(), in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusCreated, p)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "property")
	if !ok {
		return
	}
	var in services.PropertyInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.properties.Update(c.Request.Context(), id, in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, p)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "property")
	if !ok {
		return
	}
	if err := h.properties.Delete(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, gin.H{})
}

// AddImages handles POST /api/properties/:id/images with {"images": [url, ...]}.
func (h *PropertyHandler) AddImages(c *gin.Context) {
	id, ok := pathID(c, "property")
	if !ok {
		return
	}
	var body struct {
		Images []string `json:"images"`
	}
	if !bindJSON(c, &body) {
		return
	}
	p, err := h.properties.AddImages(c.Request.Context(), id, body.Images, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, p)
}
