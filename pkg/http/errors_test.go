package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type errorEnvelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    []*AppError `json:"data"`
}

func recordResponse(t *testing.T, fn func(c echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	if err := fn(e.NewContext(req, rec)); err != nil {
		t.Fatalf("write response: %v", err)
	}
	return rec
}

func TestAppErrorResponseCarriesStatusAndCode(t *testing.T) {
	rec := recordResponse(t, func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundErrorf("alert rule %s not found", "r1"))
	})

	var body errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != 404 {
		t.Fatalf("expected envelope status 404, got %d", body.Status)
	}
	if len(body.Data) != 1 || body.Data[0].Code != "ERR_NOT_FOUND" {
		t.Fatalf("unexpected error payload: %+v", body.Data)
	}
	if !strings.Contains(body.Data[0].Message, "r1") {
		t.Fatalf("expected formatted message, got %q", body.Data[0].Message)
	}
}

func TestAppErrorResponseFallsBackTo500(t *testing.T) {
	rec := recordResponse(t, func(c echo.Context) error {
		return AppErrorResponse(c, fmt.Errorf("disk on fire"))
	})

	var body errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != 500 {
		t.Fatalf("expected envelope status 500, got %d", body.Status)
	}
}

func TestAppErrorWrapsCause(t *testing.T) {
	cause := errors.New("row missing")
	appErr := BadRequestError("bad csv").WithError(cause)

	if !errors.Is(appErr, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if !strings.Contains(appErr.Error(), "row missing") {
		t.Fatalf("expected cause in message, got %q", appErr.Error())
	}
}
