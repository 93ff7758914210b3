package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type loginForm struct {
	Username string `form:"username" json:"username" validate:"required,max=8"`
	Limit    int    `query:"limit" json:"limit" default:"25" validate:"gte=1,lte=100"`
}

func newFormContext(form url.Values, query string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/login?"+query, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	req := &loginForm{}
	if verr := ReadAndValidateRequest(newFormContext(url.Values{"username": {"alice"}}, ""), req); verr != nil {
		t.Fatalf("unexpected errors: %v", verr)
	}
	if req.Username != "alice" || req.Limit != 25 {
		t.Fatalf("bound = %+v", req)
	}
}

func TestReadAndValidateRequestReportsTagNames(t *testing.T) {
	verr := ReadAndValidateRequest(newFormContext(url.Values{"username": {"far-too-long"}}, ""), &loginForm{})
	errs, ok := verr.([]ValidationError)
	if !ok || len(errs) != 1 {
		t.Fatalf("errors = %#v", verr)
	}
	e := errs[0]
	if e.Code != "ERR_MAX" || e.Field != "username" {
		t.Fatalf("error = %+v", e)
	}
	if e.Message != "username must be at most 8 characters" {
		t.Fatalf("message = %q", e.Message)
	}
}

func TestReadAndValidateRequestMissing(t *testing.T) {
	verr := ReadAndValidateRequest(newFormContext(url.Values{}, ""), &loginForm{})
	errs, ok := verr.([]ValidationError)
	if !ok || len(errs) != 1 || errs[0].Message != "username is required" {
		t.Fatalf("errors = %#v", verr)
	}
}
