package web_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adamwoolhether/printer/web"
	"github.com/adamwoolhether/printer/web/errs"
)

type renderPayload struct {
	Content string `json:"content" validate:"required"`
	Time    int64  `json:"time" validate:"gt=0"`
}

func TestDecode(t *testing.T) {
	tests := map[string]struct {
		body      string
		wantErr   bool
		wantField string
	}{
		"valid":          {body: `{"content":"x","time":1}`},
		"missing field":  {body: `{"time":1}`, wantErr: true, wantField: "content"},
		"invalid time":   {body: `{"content":"x","time":0}`, wantErr: true, wantField: "time"},
		"unknown field":  {body: `{"content":"x","time":1,"other":1}`, wantErr: true},
		"malformed json": {body: `{`, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var p renderPayload
			err := web.Decode(r, &p)

			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantField != "" {
				if _, ok := errs.GetFieldErrors(err).Fields()[tc.wantField]; !ok {
					t.Errorf("exp field error for %q, got: %v", tc.wantField, err)
				}
			}
		})
	}
}

func TestRespondBinary(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	if err := web.RespondBinary(r.Context(), w, "image/png", []byte("png")); err != nil {
		t.Fatalf("respond: %v", err)
	}

	if w.Code != http.StatusOK || w.Body.String() != "png" {
		t.Errorf("status = %d, body = %q", w.Code, w.Body)
	}
	if w.Header().Get("Content-Type") != "image/png" || w.Header().Get("Content-Length") != "3" {
		t.Errorf("headers = %v", w.Header())
	}
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	if err := web.RespondError(r.Context(), w, errs.New(http.StatusBadRequest, errors.New("nope"))); err != nil {
		t.Fatalf("respond: %v", err)
	}

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"statusCode":400`) {
		t.Errorf("body = %s", w.Body)
	}
}

func TestRespondJSON_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	if err := web.RespondJSON(r.Context(), w, http.StatusNoContent, map[string]string{"ignored": "x"}); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("status = %d, body = %q", w.Code, w.Body)
	}
}
