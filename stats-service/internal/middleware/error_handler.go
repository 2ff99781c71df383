package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/MIgor26/explore-with-me/stats-service/internal/service"
	"github.com/labstack/echo/v4"
)

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
		msg = err.Error()
	default:
		log.Printf("[ErrorHandler] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	_ = c.JSON(code, map[string]string{"error": http.StatusText(code), "message": msg})
}
