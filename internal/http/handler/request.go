package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Identity assertions are compact JWTs; anything near this size is not one.
const maxExchangeBodyBytes int64 = 16 << 10

// assertionFrom reads the identity assertion from a bearer header, or from a
// JSON body of the form {"assertion": "..."}.
func assertionFrom(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(headerAuthorization); strings.HasPrefix(header, bearerPrefix) {
		if assertion := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)); assertion != "" {
			return assertion, nil
		}
	}

	req, err := decodeExchangeRequest(c.Request())
	if err != nil {
		return "", err
	}
	return req.Assertion, nil
}

// decodeExchangeRequest accepts exactly one JSON object with no unknown
// fields and a non-blank assertion.
func decodeExchangeRequest(r *http.Request) (ExchangeRequest, error) {
	var req ExchangeRequest

	mediaType, _, err := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))
	if err != nil || mediaType != echo.MIMEApplicationJSON {
		return req, echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxExchangeBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return req, echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	req.Assertion = strings.TrimSpace(req.Assertion)
	if req.Assertion == "" {
		return req, echo.NewHTTPError(http.StatusBadRequest, msgAssertionRequired)
	}
	return req, nil
}
