package handler

import (
	"loyalty-platform/internal/notify"

	"github.com/labstack/echo/v4"
)

// BusinessEvents streams order lifecycle events to the authenticated
// business's dashboard
func BusinessEvents(c echo.Context) error {
	return hub.ServeSSE(c, notify.BusinessChannel(actorID(c)))
}
