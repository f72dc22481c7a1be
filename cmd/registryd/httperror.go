package main

import (
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"

	"github.com/feckmell/instanceregistry/regerr"
)

var errorCodeToStatusCode = map[string]int{
	regerr.ErrBadParameter:        http.StatusBadRequest,
	regerr.ErrEntityNotFound:      http.StatusNotFound,
	regerr.ErrInternalServerError: http.StatusInternalServerError,
}

// errResponse is the JSON body written on any handler error.
type errResponse struct {
	Error *regerr.RegistryError `json:"error,omitempty"`
}

// registerErrorHandler installs a handler that maps *regerr.RegistryError
// (and echo's own *echo.HTTPError) to the matching HTTP status code.
func registerErrorHandler(e *echo.Echo, logger log.Logger) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		regErr := regerr.ToRegistryError(err)
		statusCode := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			statusCode = he.Code
			if regErr == nil {
				msg, _ := he.Message.(string)
				regErr = regerr.NewBadParameterError(msg, err)
			}
		} else if regErr != nil {
			if sc, ok := errorCodeToStatusCode[regErr.Code]; ok {
				statusCode = sc
			}
		} else {
			regErr = regerr.NewInternalServerError("an internal server error has occurred", err)
		}

		level.Error(logger).Log("msg", "HTTP request error", "err", err)
		_ = c.JSON(statusCode, errResponse{Error: regErr})
	}
}
