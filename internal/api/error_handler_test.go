package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

func TestHTTPErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrApplicantNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{domain.ErrAdminExists, http.StatusConflict},
		{domain.ErrAdminNotFound, http.StatusNotFound},
		{domain.ErrExtractionTimeout, http.StatusGatewayTimeout},
		{domain.ErrExtractionFailed, http.StatusBadGateway},
		{errors.New("something unexpected"), http.StatusInternalServerError},
		{echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		// Wrapped domain errors map the same as bare ones.
		{fmt.Errorf("transition: %w", domain.ErrApplicantNotFound), http.StatusNotFound},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler(tc.err, c)

		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			t.Errorf("%v: expected JSON envelope", tc.err)
		}
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.NoContent(http.StatusAccepted)

	handler(errors.New("late failure"), c)

	if rec.Code != http.StatusAccepted {
		t.Errorf("committed response must not be overwritten, got %d", rec.Code)
	}
}
