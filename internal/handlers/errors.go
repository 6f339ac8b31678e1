package handlers

import (
	"errors"
	"net/http"

	"prodimport/internal/apiclient"
	"prodimport/internal/ingestion"
	"prodimport/internal/models"

	"github.com/labstack/echo/v4"
)

// relayError はリモートAPIのエラーをそのままのステータスで返す
// 入力検証エラーは400、通信エラーは502
func relayError(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), map[string]string{"error": errorMessage(err)})
}

func errorStatus(err error) int {
	if status := apiclient.StatusOf(err); status != 0 {
		return status
	}
	if isValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func errorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail()
	}
	return err.Error()
}

func isValidation(err error) bool {
	for _, target := range []error{
		models.ErrEmptySKU,
		models.ErrInvalidEvent,
		models.ErrInvalidURL,
		ingestion.ErrMissingSKUColumn,
		ingestion.ErrUnsupportedFormat,
		ingestion.ErrEmptyFile,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
