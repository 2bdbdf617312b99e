package socrata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// testClient points a Client at a local test server.
func testClient(srv *httptest.Server) *Client {
	return &Client{
		httpClient: srv.Client(),
		baseURL:    srv.URL,
		appToken:   "tok123",
		username:   "publisher",
		password:   "secret",
	}
}

// TestClient_Upsert verifies the request shape: POST of the row array to
// /resource/{dataset}.json with the app token and basic auth.
func TestClient_Upsert(t *testing.T) {
	var gotMethod, gotPath, gotToken string
	var gotUser, gotPass string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-App-Token")
		gotUser, gotPass, _ = r.BasicAuth()
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"Rows Created": 1, "Rows Updated": 1}`))
	}))
	defer srv.Close()

	rows := []map[string]any{
		{"id": "147_camera_1", "status_code": float64(1)},
		{"id": "148_camera_2", "status_code": float64(-1)},
	}

	if err := testClient(srv).Upsert(context.Background(), "pj7k-98z2", rows); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/resource/pj7k-98z2.json" {
		t.Errorf("path = %q, want /resource/pj7k-98z2.json", gotPath)
	}
	if gotToken != "tok123" {
		t.Errorf("X-App-Token = %q, want tok123", gotToken)
	}
	if gotUser != "publisher" || gotPass != "secret" {
		t.Errorf("basic auth = (%q, %q), want (publisher, secret)", gotUser, gotPass)
	}

	var sent []map[string]any
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("request body is not a JSON array: %v", err)
	}
	if len(sent) != 2 || sent[0]["id"] != "147_camera_1" {
		t.Errorf("sent rows = %v, want the 2 input rows in order", sent)
	}
}

// TestClient_Upsert_PortalError verifies that non-2xx responses fail with the
// portal's error body included for diagnosis.
func TestClient_Upsert_PortalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Invalid app_token specified"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	err := testClient(srv).Upsert(context.Background(), "pj7k-98z2", nil)
	if err == nil {
		t.Fatal("Upsert() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q should include the status code", err)
	}
	if !strings.Contains(err.Error(), "Invalid app_token") {
		t.Errorf("error %q should include the portal error body", err)
	}
}

// TestClient_Upsert_Accepted verifies any 2xx status counts as success.
func TestClient_Upsert_Accepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	if err := testClient(srv).Upsert(context.Background(), "j9p3-9u87", nil); err != nil {
		t.Errorf("Upsert() error = %v, want nil for 202", err)
	}
}
