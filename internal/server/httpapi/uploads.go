package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

type presignRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// Upload accepts either a raw image body or a multipart form with the image
// in field "file", stores it and answers with its public URL.
func (h *Handler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		// room for multipart framing
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+64<<10)
	}

	data, contentType, err := h.readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		badRequest(c, err.Error())
		return
	}

	url, err := h.media.Upload(c.Request.Context(), userID(c), contentType, data)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.Uploads.Inc()
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (h *Handler) readUpload(c *gin.Context) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(c.ContentType())
	if mediaType == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, "", err
			}
			return nil, "", errors.New("file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", err
		}
		return data, sniffType(fh.Header.Get("Content-Type"), data), nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", err
	}
	return data, sniffType(c.GetHeader("Content-Type"), data), nil
}

// sniffType trusts a declared image type and sniffs the content otherwise.
func sniffType(declared string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err == nil && mediaType != "application/octet-stream" {
		return declared
	}
	if len(data) == 0 {
		return declared
	}
	return http.DetectContentType(data)
}

func (h *Handler) PresignUpload(c *gin.Context) {
	var req presignRequest
	if !bindJSON(c, &req, false) {
		return
	}

	ticket, err := h.media.PresignUpload(c.Request.Context(), userID(c), req.ContentType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}
