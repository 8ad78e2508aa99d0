package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/labstack/echo/v4"
)

// msgInvalidCredentials is shown verbatim by the agent on a failed login.
const msgInvalidCredentials = "Invalid username or password"

type messageBody struct {
	Message string `json:"message"`
}

func message(c echo.Context, code int, msg string) error {
	return c.JSON(code, messageBody{Message: msg})
}

// fail maps service and repository errors onto status codes.
func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return message(c, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return message(c, http.StatusConflict, "already exists")
	case errors.Is(err, common.ErrorValidation):
		return message(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return message(c, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, common.ErrorRemoteDisabled):
		return message(c, http.StatusServiceUnavailable, common.ErrorRemoteDisabled.Error())
	case errors.Is(err, common.ErrorRemoteUnavailable):
		return message(c, http.StatusServiceUnavailable, common.ErrorRemoteUnavailable.Error())
	default:
		s.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		return message(c, http.StatusInternalServerError, "internal error")
	}
}
