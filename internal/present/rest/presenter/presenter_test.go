package presenter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"

	"github.com/totegamma/rentchain/internal/domain"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.AuthorizationError{Reason: "x"}, http.StatusForbidden},
		{domain.StateError{Resource: "agreement", Reason: "x"}, http.StatusConflict},
		{domain.FundsError{Reason: "x"}, http.StatusPaymentRequired},
		{domain.NotFoundError{Resource: "property"}, http.StatusNotFound},
		{domain.InvalidArgumentError{Field: "owner", Reason: "x"}, http.StatusBadRequest},
		{pkgerrors.Wrap(domain.FundsError{}, "sign"), http.StatusPaymentRequired},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got, _ := Status(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d got %d", tc.err, tc.want, got)
		}
	}
}

func TestCacheableETag(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := Cacheable(e.NewContext(req, rec), map[string]string{"a": "b"}); err != nil {
		t.Fatalf("cacheable: %v", err)
	}
	etag := rec.Header().Get("ETag")
	if rec.Code != http.StatusOK || etag == "" {
		t.Fatalf("expected 200 with etag, got %d %q", rec.Code, etag)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	if err := Cacheable(e.NewContext(req, rec), map[string]string{"a": "b"}); err != nil {
		t.Fatalf("cacheable: %v", err)
	}
	if rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304 got %d", rec.Code)
	}
}
