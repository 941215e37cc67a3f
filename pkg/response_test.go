package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResponses(t *testing.T) {
	testCases := []struct {
		name                string
		write               func(w http.ResponseWriter)
		expectedStatus      int
		expectedContentType string
		expectedBody        string
	}{
		{
			name: "WriteResponseBytes",
			write: func(w http.ResponseWriter) {
				WriteResponseBytes(w, ContentType.JSON, []byte(`{"id":"1"}`), http.StatusCreated)
			},
			expectedStatus:      http.StatusCreated,
			expectedContentType: ContentType.JSON,
			expectedBody:        `{"id":"1"}`,
		},
		{
			name: "WriteResponseBytesOK",
			write: func(w http.ResponseWriter) {
				WriteResponseBytesOK(w, ContentType.JSON, []byte(`{"id":"1"}`))
			},
			expectedStatus:      http.StatusOK,
			expectedContentType: ContentType.JSON,
			expectedBody:        `{"id":"1"}`,
		},
		{
			name: "WriteResponse",
			write: func(w http.ResponseWriter) {
				WriteResponse(w, ContentType.Text, "exercise not found", http.StatusNotFound)
			},
			expectedStatus:      http.StatusNotFound,
			expectedContentType: ContentType.Text,
			expectedBody:        "exercise not found",
		},
		{
			name:                "WriteTextResponseOK",
			write:               func(w http.ResponseWriter) { WriteTextResponseOK(w, "v1.2.3") },
			expectedStatus:      http.StatusOK,
			expectedContentType: ContentType.Text,
			expectedBody:        "v1.2.3",
		},
		{
			name:                "WriteJSONResponseOK",
			write:               func(w http.ResponseWriter) { WriteJSONResponseOK(w, `{"status":"ok"}`) },
			expectedStatus:      http.StatusOK,
			expectedContentType: ContentType.JSON,
			expectedBody:        `{"status":"ok"}`,
		},
		{
			name: "NoContentType",
			write: func(w http.ResponseWriter) {
				WriteResponse(w, "", "", http.StatusNoContent)
			},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.write(rr)
			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedContentType, rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedBody, rr.Body.String())
		})
	}
}
