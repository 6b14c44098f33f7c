package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/anonto42/nano-chat/backend/pkg/logging"
	"github.com/anonto42/nano-chat/backend/validators"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders every error as {"error": "..."} and logs server faults.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			err = he.Internal
		}
	}
	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		slog.Error("write error response", slog.Any("error", err))
	}
}

// internalError hides err from the client but keeps it for logging.
func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

// repositoryError maps repository sentinel errors to HTTP errors. notFound is
// the message used for ErrNotFound and ErrMissingReference.
func repositoryError(err error, notFound string) error {
	if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrMissingReference) {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	var dup *repositories.DuplicateError
	if errors.As(err, &dup) {
		return echo.NewHTTPError(http.StatusConflict, dup.Error())
	}
	return internalError(err)
}

func bindRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	return nil
}

func validateRequest(c echo.Context, req interface{}) error {
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}
	return nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
