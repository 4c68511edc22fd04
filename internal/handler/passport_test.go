package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackclub/food-passport/internal/model"
)

// multipartSubmission builds a multipart form body for POST /api/submissions.
// An empty photo string omits the file part entirely.
func multipartSubmission(t *testing.T, fields map[string]string, photo string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing field %s: %v", k, err)
		}
	}
	if photo != "" {
		// CreateFormFile hardcodes application/octet-stream, so build the
		// part header by hand to carry a real image content type.
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photo"; filename="result.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("creating photo part: %v", err)
		}
		if _, err := part.Write([]byte(photo)); err != nil {
			t.Fatalf("writing photo: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestListWorkshops(t *testing.T) {
	env := newTestEnv(t)

	t.Run("requires auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/workshops", nil)
		rr := env.do(req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("returns the seeded set", func(t *testing.T) {
		_, cookie := env.loginAs(t, "U1", model.RoleLeader)

		req := httptest.NewRequest(http.MethodGet, "/api/workshops", nil)
		req.AddCookie(cookie)
		rr := env.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var entries []model.PassportEntry
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&entries))
		assert.Len(t, entries, 6, "the six seeded global workshops")
		for _, e := range entries {
			assert.Nil(t, e.Submission, "no submissions yet for %s", e.Slug)
		}
	})
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginAs(t, "U1", model.RoleLeader)

	submit := func(cookie *http.Cookie, fields map[string]string, photo string) *httptest.ResponseRecorder {
		body, contentType := multipartSubmission(t, fields, photo)
		req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
		req.Header.Set("Content-Type", contentType)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		return env.do(req)
	}

	t.Run("requires auth", func(t *testing.T) {
		rr := submit(nil, map[string]string{"workshopSlug": "glaze", "eventCode": "GLAZE-1"}, "fake jpeg")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("records a submission", func(t *testing.T) {
		rr := submit(cookie, map[string]string{
			"workshopSlug": "glaze",
			"eventCode":    "GLAZE-123",
			"notes":        "made donuts",
		}, "fake jpeg bytes")

		assert.Equal(t, http.StatusOK, rr.Code)

		var sub model.Submission
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&sub))
		assert.True(t, sub.Completed)
		assert.Equal(t, "GLAZE-123", sub.EventCode)
		assert.NotEmpty(t, sub.PhotoRef)

		// The passport now shows the submission on the glaze entry
		listReq := httptest.NewRequest(http.MethodGet, "/api/workshops", nil)
		listReq.AddCookie(cookie)
		listRR := env.do(listReq)

		var entries []model.PassportEntry
		assert.NoError(t, json.NewDecoder(listRR.Body).Decode(&entries))
		for _, e := range entries {
			if e.Slug == "glaze" {
				if assert.NotNil(t, e.Submission) {
					assert.Equal(t, "GLAZE-123", e.Submission.EventCode)
				}
			}
		}
	})

	t.Run("resubmission replaces", func(t *testing.T) {
		rr := submit(cookie, map[string]string{"workshopSlug": "glaze", "eventCode": "GLAZE-999"}, "other jpeg")
		assert.Equal(t, http.StatusOK, rr.Code)

		var sub model.Submission
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&sub))
		assert.Equal(t, "GLAZE-999", sub.EventCode)
	})

	t.Run("missing photo", func(t *testing.T) {
		rr := submit(cookie, map[string]string{"workshopSlug": "glaze", "eventCode": "GLAZE-1"}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing event code", func(t *testing.T) {
		rr := submit(cookie, map[string]string{"workshopSlug": "glaze"}, "fake jpeg")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown workshop", func(t *testing.T) {
		rr := submit(cookie, map[string]string{"workshopSlug": "no-such", "eventCode": "X-1"}, "fake jpeg")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/submissions", bytes.NewBufferString(`{"eventCode":"X"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		rr := env.do(req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
