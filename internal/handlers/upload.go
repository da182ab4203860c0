package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/projectpulse/backend/internal/services"
	"github.com/projectpulse/backend/pkg/response"
)

// incomingFile adapts the request's multipart file part to the upload
// pipeline's payload. The part named "file" carries the bytes; its declared
// content type drives the allowlist check.
func incomingFile(c *gin.Context) (*services.IncomingFile, multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, response.NewBadRequest("file is not sent")
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, response.NewGeneric("failed to read uploaded file")
	}

	return &services.IncomingFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      f,
	}, f, nil
}
