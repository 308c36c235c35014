package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/api/middleware"
	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/services"
)

// maxFilesPerUpload bounds one multipart request.
const maxFilesPerUpload = 10

// UploadHandler serves /api/uploads.
type UploadHandler struct {
	uploads  services.IUploadService
	maxBytes int64
}

func NewUploadHandler(uploads services.IUploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes}
}

// Upload handles POST /api/uploads with multipart field "files".
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes*maxFilesPerUpload+1<<20)
	}
	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, apperrors.NewValidationError("files is required"))
		return
	}
	headers := form.File["files"]
	if len(headers) > maxFilesPerUpload {
		sendError(c, apperrors.NewValidationError(fmt.Sprintf("at most %d files per upload", maxFilesPerUpload)))
		return
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			sendError(c, apperrors.NewValidationError(fh.Filename+" could not be read"))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			sendError(c, apperrors.NewValidationError(fh.Filename+" could not be read"))
			return
		}
		files = append(files, services.UploadFile{Filename: fh.Filename, Data: data})
	}

	res, err := h.uploads.Upload(c.Request.Context(), files, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusCreated, res)
}

// Serve handles GET /api/uploads/:name by streaming the stored file.
func (h *UploadHandler) Serve(c *gin.Context) {
	rc, contentType, err := h.uploads.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		sendError(c, err)
		return
	}
	defer rc.Close()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
