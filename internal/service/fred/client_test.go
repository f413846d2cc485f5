package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", srv.URL, 5*time.Second).(*Client)
}

func TestFetchObservationsResamplesMonthly(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/observations" {
			http.NotFound(w, r)
			return
		}
		gotQuery = map[string]string{
			"series_id": r.URL.Query().Get("series_id"),
			"api_key":   r.URL.Query().Get("api_key"),
			"file_type": r.URL.Query().Get("file_type"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[
			{"date":"2024-01-05","value":"100.0"},
			{"date":"2024-01-26","value":"101.5"},
			{"date":"2024-02-02","value":"."},
			{"date":"2024-02-23","value":"102.0"},
			{"date":"2024-03-01","value":"103.25"}
		]}`))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	obs, err := c.FetchObservations(context.Background(), "UNRATE", start, end)
	if err != nil {
		t.Fatalf("FetchObservations: %v", err)
	}

	if gotQuery["series_id"] != "UNRATE" || gotQuery["api_key"] != "test-key" || gotQuery["file_type"] != "json" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}

	want := []struct {
		month string
		value float64
	}{
		{"2024-01", 101.5}, // last value of January wins
		{"2024-02", 102.0}, // "." placeholder skipped
		{"2024-03", 103.25},
	}
	if len(obs) != len(want) {
		t.Fatalf("got %d observations, want %d: %+v", len(obs), len(want), obs)
	}
	for i, w := range want {
		if obs[i].Month != w.month || obs[i].Value != w.value {
			t.Errorf("obs[%d] = %+v, want %s=%v", i, obs[i], w.month, w.value)
		}
	}
}

func TestFetchObservationsUnsortedInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[
			{"date":"2024-02-15","value":"2"},
			{"date":"2024-01-15","value":"1"}
		]}`))
	})

	obs, err := c.FetchObservations(context.Background(), "GDP", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchObservations: %v", err)
	}
	if len(obs) != 2 || obs[0].Month != "2024-01" || obs[1].Month != "2024-02" {
		t.Fatalf("observations not sorted by month: %+v", obs)
	}
}

func TestFetchObservationsUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_message":"Bad Request"}`, http.StatusBadRequest)
	})

	if _, err := c.FetchObservations(context.Background(), "NOPE", time.Time{}, time.Time{}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestFetchSeriesTitle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"seriess":[{"id":"UNRATE","title":"Unemployment Rate"}]}`))
	})

	title, err := c.FetchSeriesTitle(context.Background(), "UNRATE")
	if err != nil {
		t.Fatalf("FetchSeriesTitle: %v", err)
	}
	if title != "Unemployment Rate" {
		t.Errorf("title = %q, want %q", title, "Unemployment Rate")
	}
}

func TestFetchSeriesTitleEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"seriess":[]}`))
	})

	if _, err := c.FetchSeriesTitle(context.Background(), "MISSING"); err == nil {
		t.Fatal("expected error for empty seriess")
	}
}
