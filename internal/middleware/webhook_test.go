package middleware

import (
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func signature(body, secret string) string {
	return "sha256=" + hex.EncodeToString(Sign([]byte(body), secret))
}

func TestVerifyHMAC(t *testing.T) {
	body := []byte(`{"action":"completed"}`)
	raw := hex.EncodeToString(Sign(body, "s3cret"))

	tests := []struct {
		name string
		sig  string
		want bool
	}{
		{"prefixed", "sha256=" + raw, true},
		{"raw hex", raw, true},
		{"wrong secret", signature(string(body), "other"), false},
		{"not hex", "sha256=zz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyHMAC(body, tt.sig, "s3cret"); got != tt.want {
				t.Errorf("VerifyHMAC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebhookHMAC(t *testing.T) {
	const body = `{"action":"completed"}`

	tests := []struct {
		name       string
		secret     string
		sig        string
		wantStatus int
	}{
		{"valid", "s3cret", signature(body, "s3cret"), http.StatusOK},
		{"secret not configured", "", signature(body, "s3cret"), http.StatusServiceUnavailable},
		{"missing signature", "s3cret", "", http.StatusUnauthorized},
		{"bad signature", "s3cret", signature(body, "nope"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody string
			handler := WebhookHMAC(tt.secret, HeaderGitHubSignature)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			if tt.sig != "" {
				req.Header.Set(HeaderGitHubSignature, tt.sig)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK && gotBody != body {
				t.Errorf("expected body restored for next handler, got %q", gotBody)
			}
		})
	}
}
