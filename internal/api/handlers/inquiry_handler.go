package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/api/middleware"
	"salemre/backend/internal/services"
)

// InquiryHandler serves /api/inquiries.
type InquiryHandler struct {
	inquiries services.IInquiryService
}

func NewInquiryHandler(inquiries services.IInquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// Create handles the public POST /api/inquiries.
func (h *InquiryHandler) Create(c *gin.Context) {
	var in services.InquiryInput
	if !bindJSON(c, &in) {
		return
	}
	i, err := h.inquiries.Create(c.Request.Context(), in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusCreated, i)
}

func (h *InquiryHandler) List(c *gin.Context) {
	res, err := h.inquiries.List(c.Request.Context(), c.Request.URL.Query(), middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendList(c, res)
}

func (h *InquiryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "inquiry")
	if !ok {
		return
	}
	i, err := h.inquiries.Get(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, i)
}

func (h *InquiryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "inquiry")
	if !ok {
		return
	}
	var in services.InquiryUpdate
	if !bindJSON(c, &in) {
		return
	}
	i, err := h.inquiries.Update(c.Request.Context(), id, in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, i)
}

func (h *InquiryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "inquiry")
	if !ok {
		return
	}
	if err := h.inquiries.Delete(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, gin.H{})
}
