package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/song-sponsorship/internal/service"
)

// parseID reads the numeric :id path parameter.
func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // ids are positive integers
	if err != nil || id == 0 {                            // zero is never a valid row id
		return 0, false
	}
	return id, true
}

// errorJSON writes the {"error": msg} body used by every failure.
func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// validationOr writes 400 with the validation reason when err is a
// *service.ValidationError, and 500 with fallback otherwise.
func validationOr(c echo.Context, err error, fallback string) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return errorJSON(c, http.StatusBadRequest, ve.Reason)
	}
	c.Logger().Error(err)
	return errorJSON(c, http.StatusInternalServerError, fallback)
}
