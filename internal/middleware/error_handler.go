package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CustomErrorHandler creates a custom error handler for Echo. API callers
// get a JSON body; everything else gets plain text.
func CustomErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			switch code {
			case http.StatusNotFound:
				message = "The resource you're looking for doesn't exist."
			case http.StatusForbidden:
				message = "You don't have permission to access this resource."
			case http.StatusUnauthorized:
				message = "Please log in to continue."
			case http.StatusBadRequest:
				message = "The request could not be processed."
			}
		}
	}

	// Log the error
	c.Logger().Error(err)

	if c.Response().Committed {
		return
	}

	accept := c.Request().Header.Get(echo.HeaderAccept)
	if accept == "" || accept == echo.MIMEApplicationJSON || c.Request().Header.Get(echo.HeaderContentType) == echo.MIMEApplicationJSON {
		if err := c.JSON(code, map[string]string{"error": message}); err != nil {
			c.Logger().Error(err)
		}
		return
	}

	if err := c.String(code, message); err != nil {
		c.Logger().Error(err)
	}
}
