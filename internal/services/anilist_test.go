package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/anidex/internal/shared"
)

func TestBuildBatchQuery(t *testing.T) {
	query := buildBatchQuery([]string{"Naruto", `Say "I love you"`})

	for _, want := range []string{
		"anime0: Page(page: 1, perPage: 3)",
		"anime1: Page(page: 1, perPage: 3)",
		`media(search: "Naruto", type: ANIME, sort: SEARCH_MATCH)`,
		`media(search: "Say \"I love you\"", type: ANIME, sort: SEARCH_MATCH)`,
		"studios { nodes { name isAnimationStudio } }",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
}

func TestAnilistService(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		if svc := NewAnilistService("", nil); svc.Name() != "AniList" {
			t.Errorf("expected name to be 'AniList', got %s", svc.Name())
		}
	})

	t.Run("defaults URL", func(t *testing.T) {
		if svc := NewAnilistService("", nil); svc.url != defaultAnilistURL {
			t.Errorf("expected url %s, got %s", defaultAnilistURL, svc.url)
		}
	})

	t.Run("SearchBatch", func(t *testing.T) {
		t.Run("maps aliases back to titles", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				body, _ := io.ReadAll(r.Body)
				var payload map[string]string
				if err := json.Unmarshal(body, &payload); err != nil {
					t.Fatalf("request body is not JSON: %v", err)
				}
				if !strings.Contains(payload["query"], "anime1: Page") {
					t.Errorf("expected aliased query, got %s", payload["query"])
				}

				json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{
						"anime0": map[string]any{"media": []map[string]any{
							{"id": 21, "title": map[string]any{"romaji": "One Piece"}},
						}},
						"anime1": map[string]any{"media": []map[string]any{}},
					},
				})
			}))
			defer server.Close()

			svc := NewAnilistService(server.URL, nil)
			results, err := svc.SearchBatch(context.Background(), []string{"One Piece", "Unknown Show"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(results) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(results))
			}
			if got := results["One Piece"]; len(got) != 1 || got[0].ID != 21 {
				t.Errorf("unexpected candidates for One Piece: %+v", got)
			}
			if got := results["Unknown Show"]; len(got) != 0 {
				t.Errorf("expected no candidates for Unknown Show, got %+v", got)
			}
		})

		t.Run("empty title list avoids the network", func(t *testing.T) {
			svc := NewAnilistService("http://127.0.0.1:1", nil)
			results, err := svc.SearchBatch(context.Background(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(results) != 0 {
				t.Errorf("expected empty map, got %+v", results)
			}
		})

		t.Run("surfaces 429 as ErrRateLimited", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			svc := NewAnilistService(server.URL, nil)
			_, err := svc.SearchBatch(context.Background(), []string{"Bleach"})
			if !errors.Is(err, shared.ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited, got %v", err)
			}
		})

		t.Run("surfaces other failures as ErrAPIRequest", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			svc := NewAnilistService(server.URL, nil)
			_, err := svc.SearchBatch(context.Background(), []string{"Bleach"})
			if errors.Is(err, shared.ErrRateLimited) {
				t.Fatal("500 must not look like a rate limit")
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
		})
	})
}
