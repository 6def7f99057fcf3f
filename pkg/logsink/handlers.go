package logsink

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	sink Sink
}

// FrontendErrorPayload is what the frontend reports when its global error
// handler fires.
type FrontendErrorPayload struct {
	Message string `json:"message" validate:"required"`
	Stack   string `json:"stack"`
	URL     string `json:"url"`
}

func (h *handler) frontendError(c echo.Context) error {
	payload := FrontendErrorPayload{}
	if err := c.Bind(&payload); err != nil {
		return errors.WithStack(err)
	}

	data := map[string]interface{}{}
	if payload.Stack != "" {
		data["Stack"] = payload.Stack
	}
	if payload.URL != "" {
		data["URL"] = payload.URL
	}
	h.sink.Emit(SeverityError, "Frontend Error: "+payload.Message, data)

	return c.JSON(http.StatusOK, map[string]string{"message": "logged"})
}
