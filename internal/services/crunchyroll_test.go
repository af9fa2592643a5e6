package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/anidex/internal/shared"
	tu "github.com/desertthunder/anidex/internal/testing"
)

func crConfig(baseURL string) shared.CatalogConfig {
	return shared.CatalogConfig{
		BaseURL:    baseURL,
		BasicToken: "dGVzdDo=",
		Locale:     "en-US",
		PageSize:   100,
	}
}

func TestCrunchyrollService(t *testing.T) {
	t.Run("NewCrunchyrollService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			svc := NewCrunchyrollService(shared.CatalogConfig{}, nil)
			if svc == nil {
				t.Fatal("expected service to be created")
			}
			if svc.baseURL != defaultCRBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultCRBaseURL, svc.baseURL)
			}
			if svc.pageSize != 2000 {
				t.Errorf("expected default page size 2000, got %d", svc.pageSize)
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewCrunchyrollService(shared.CatalogConfig{}, nil); svc.Name() != "Crunchyroll" {
			t.Errorf("expected name to be 'Crunchyroll', got %s", svc.Name())
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("acquires anonymous token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != crTokenPath {
					t.Errorf("expected path %s, got %s", crTokenPath, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Basic dGVzdDo=" {
					t.Errorf("unexpected Authorization header %q", got)
				}
				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if got := r.PostForm.Get("grant_type"); got != "client_id" {
					t.Errorf("expected grant_type client_id, got %q", got)
				}
				json.NewEncoder(w).Encode(map[string]any{"access_token": "tok123", "token_type": "Bearer"})
			}))
			defer server.Close()

			svc := NewCrunchyrollService(crConfig(server.URL), nil)
			if err := svc.Authenticate(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.token == nil || svc.token.AccessToken != "tok123" {
				t.Errorf("expected stored token tok123, got %+v", svc.token)
			}
		})

		t.Run("fails on missing token in response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{})
			}))
			defer server.Close()

			svc := NewCrunchyrollService(crConfig(server.URL), nil)
			err := svc.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("fails on non-200 status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			svc := NewCrunchyrollService(crConfig(server.URL), nil)
			if err := svc.Authenticate(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("fails on transport error", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			svc := NewCrunchyrollService(crConfig("http://localhost:1"), client)
			if err := svc.Authenticate(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("fails on unreadable response body", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
				}, nil),
			}

			svc := NewCrunchyrollService(crConfig("http://localhost:1"), client)
			if err := svc.Authenticate(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("fails without basic token", func(t *testing.T) {
			svc := NewCrunchyrollService(shared.CatalogConfig{}, nil)
			if err := svc.Authenticate(context.Background()); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("FetchCatalog", func(t *testing.T) {
		validItem := map[string]any{
			"id":          "GRMG8ZQZR",
			"title":       "One Piece",
			"type":        "series",
			"description": "Monkey D. Luffy sails the Grand Line.",
		}

		serve := func(t *testing.T, payload map[string]any) *httptest.Server {
			t.Helper()
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case crTokenPath:
					json.NewEncoder(w).Encode(map[string]any{"access_token": "tok123"})
				case crBrowsePath:
					if got := r.URL.Query().Get("type"); got != "series" {
						t.Errorf("expected type=series, got %q", got)
					}
					if got := r.URL.Query().Get("n"); got != "100" {
						t.Errorf("expected n=100, got %q", got)
					}
					json.NewEncoder(w).Encode(payload)
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
		}

		t.Run("fetches and decodes catalog items", func(t *testing.T) {
			server := serve(t, map[string]any{"total": 1, "data": []any{validItem}})
			defer server.Close()

			svc := NewCrunchyrollService(crConfig(server.URL), nil)
			if err := svc.Authenticate(context.Background()); err != nil {
				t.Fatalf("authenticate failed: %v", err)
			}

			items, err := svc.FetchCatalog(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(items) != 1 {
				t.Fatalf("expected 1 item, got %d", len(items))
			}
			if items[0].ID != "GRMG8ZQZR" || items[0].Title != "One Piece" {
				t.Errorf("unexpected item %+v", items[0])
			}
		})

		t.Run("fails before authentication", func(t *testing.T) {
			svc := NewCrunchyrollService(crConfig("http://127.0.0.1:1"), nil)
			if _, err := svc.FetchCatalog(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("detects schema drift on first record", func(t *testing.T) {
			drifted := map[string]any{
				"series_id": "GRMG8ZQZR", // renamed upstream
				"title":     "One Piece",
				"type":      "series",
			}
			server := serve(t, map[string]any{"total": 1, "data": []any{drifted}})
			defer server.Close()

			svc := NewCrunchyrollService(crConfig(server.URL), nil)
			if err := svc.Authenticate(context.Background()); err != nil {
				t.Fatalf("authenticate failed: %v", err)
			}

			if _, err := svc.FetchCatalog(context.Background()); !errors.Is(err, shared.ErrSchemaDrift) {
				t.Fatalf("expected ErrSchemaDrift, got %v", err)
			}
		})

		t.Run("accepts empty catalog", func(t *testing.T) {
			server := serve(t, map[string]any{"total": 0, "data": []any{}})
			defer server.Close()

			svc := NewCrunchyrollService(crConfig(server.URL), nil)
			if err := svc.Authenticate(context.Background()); err != nil {
				t.Fatalf("authenticate failed: %v", err)
			}

			items, err := svc.FetchCatalog(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(items) != 0 {
				t.Errorf("expected empty catalog, got %d items", len(items))
			}
		})
	})
}

func TestValidateItemShape(t *testing.T) {
	t.Run("empty description still passes", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"X","title":"T","type":"series","description":""}`)
		if err := validateItemShape(raw); err != nil {
			t.Errorf("presence check should accept empty values, got %v", err)
		}
	})

	t.Run("rejects non-object record", func(t *testing.T) {
		if err := validateItemShape(json.RawMessage(`[1,2]`)); !errors.Is(err, shared.ErrSchemaDrift) {
			t.Errorf("expected ErrSchemaDrift, got %v", err)
		}
	})
}
