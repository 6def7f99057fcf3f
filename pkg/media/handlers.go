package media

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
)

// maxUploadBytes bounds a single image upload.
const maxUploadBytes = 10 << 20

type handler struct {
	mediaService *Service
}

// upload accepts a multipart image and returns its public URL.
func (h *handler) upload(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return errcodes.ValidationError(`"image" file is required`)
	}
	if fileHeader.Size > maxUploadBytes {
		return errcodes.ValidationError("Image is too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return errors.WithStack(err)
	}
	if len(data) > maxUploadBytes {
		return errcodes.ValidationError("Image is too large")
	}

	url, err := h.mediaService.SaveImage(SaveImageOptions{
		Data:  data,
		Cover: c.QueryParam("kind") == "cover",
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
