//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type product struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type favoritesList struct {
	Count int       `json:"count"`
	Items []product `json:"items"`
}

func TestSystem_E2E_Storefront(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar, Timeout: 5 * time.Second}

	var products []product
	doJSON(t, client, http.MethodGet, baseURL+"/api/v1/products?locale=tr", nil, &products, http.StatusOK)
	if len(products) == 0 {
		t.Fatalf("expected non-empty products")
	}
	first := products[0]

	doJSON(t, client, http.MethodPost, baseURL+"/api/v1/favorites", map[string]any{
		"slug":   first.Slug,
		"locale": "tr",
	}, nil, http.StatusCreated)

	assertFavorite(t, client, first.ID)

	page := getText(t, client, baseURL+"/tr/favorites")
	if !strings.Contains(page, first.Name) {
		t.Fatalf("favorites page does not list %q", first.Name)
	}

	if os.Getenv("E2E_RESTART") == "1" {
		restartService(t, ctx, "storefront")
		waitReady(t, ctx, baseURL+"/readyz")
		assertFavorite(t, client, first.ID)
	}

	req, _ := http.NewRequest(http.MethodDelete, baseURL+"/api/v1/favorites/"+first.ID, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("delete favorite: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete favorite: status=%d", resp.StatusCode)
	}
}

func assertFavorite(t *testing.T, client *http.Client, id string) {
	t.Helper()

	var list favoritesList
	doJSON(t, client, http.MethodGet, baseURL+"/api/v1/favorites", nil, &list, http.StatusOK)
	if list.Count != 1 || list.Items[0].ID != id {
		t.Fatalf("favorites = %#v, want only %s", list, id)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == http.StatusOK {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func getText(t *testing.T, client *http.Client, url string) string {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status=%d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
