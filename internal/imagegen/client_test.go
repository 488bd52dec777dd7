package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const testJobID = "3fa85f64-5717-4562-b3fc-2c963f66afa6"

// recordSleeps collects requested delays instead of waiting.
func recordSleeps(out *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*out = append(*out, d)
		return nil
	}
}

func newTestClient(t *testing.T, h http.Handler, sleeps *[]time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "key", "secret", WithSleep(recordSleeps(sleeps)))
}

func TestResolveModel(t *testing.T) {
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key/api/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Key") != "Key key" || r.Header.Get("X-Secret") != "Secret secret" {
			t.Errorf("auth headers missing: %v", r.Header)
		}
		_, _ = w.Write([]byte(`[{"id":4,"name":"Kandinsky","version":3.1,"type":"TEXT2IMAGE"}]`))
	}), &sleeps)

	id, err := c.ResolveModel(context.Background())
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if id != 4 {
		t.Fatalf("expected model 4, got %d", id)
	}
}

func TestResolveModel_EmptyOrMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":     `[]`,
		"no id":     `[{"name":"x"}]`,
		"not list":  `{"error":"unauthorized"}`,
		"not json":  `<html>`,
		"string id": `[{"id":"4"}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var sleeps []time.Duration
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}), &sleeps)

			_, err := c.ResolveModel(context.Background())
			if !errors.Is(err, ErrNoModelAvailable) {
				t.Fatalf("expected ErrNoModelAvailable, got %v", err)
			}
		})
	}
}

func TestSubmit_ReturnsJobID(t *testing.T) {
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key/api/v1/text2image/run" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart: %v", err)
		}
		if got := r.FormValue("model_id"); got != "4" {
			t.Errorf("model_id = %q", got)
		}
		var p generateParams
		if err := json.Unmarshal([]byte(r.FormValue("params")), &p); err != nil {
			t.Errorf("params json: %v", err)
		}
		if p.Type != "GENERATE" || p.NumImages != 1 || p.Width != 1024 || p.Height != 1024 || p.GenerateParams.Query != "a cat" {
			t.Errorf("unexpected params %+v", p)
		}
		_, _ = w.Write([]byte(`{"uuid":"` + testJobID + `","status":"INITIAL"}`))
	}), &sleeps)

	id, err := c.Submit(context.Background(), "a cat", 4, DefaultSubmitOptions())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != testJobID {
		t.Fatalf("unexpected id %q", id)
	}
	if len(sleeps) != 0 {
		t.Fatalf("no delay expected after a successful first attempt, got %v", sleeps)
	}
}

func TestSubmit_ExhaustsAfterMaxAttempts(t *testing.T) {
	var calls int32
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"pipeline_status":"DISABLED_BY_QUEUE"}`))
	}), &sleeps)

	opts := DefaultSubmitOptions()
	opts.MaxAttempts = 4
	opts.Delay = 7 * time.Second

	id, err := c.Submit(context.Background(), "a cat", 4, opts)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", got)
	}
	if len(sleeps) != 3 {
		t.Fatalf("expected 3 delays between 4 attempts, got %v", sleeps)
	}
	for _, d := range sleeps {
		if d != 7*time.Second {
			t.Fatalf("submit delay must be fixed, got %v", sleeps)
		}
	}
}

func TestSubmit_SucceedsOnLaterAttempt(t *testing.T) {
	var calls int32
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`busy`))
			return
		}
		_, _ = w.Write([]byte(`{"uuid":"` + testJobID + `"}`))
	}), &sleeps)

	id, err := c.Submit(context.Background(), "a cat", 4, DefaultSubmitOptions())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != testJobID || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("id=%q calls=%d", id, calls)
	}
}

func TestSubmit_MalformedSuccessBodyIsError(t *testing.T) {
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}), &sleeps)

	if _, err := c.Submit(context.Background(), "a cat", 4, DefaultSubmitOptions()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSubmit_NetworkErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "k", "s", WithSleep(func(context.Context, time.Duration) error { return nil }))
	if _, err := c.Submit(context.Background(), "a cat", 4, DefaultSubmitOptions()); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestAwaitCompletion_LinearBackoff(t *testing.T) {
	var calls int32
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key/api/v1/text2image/status/"+testJobID {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if atomic.AddInt32(&calls, 1) < 4 {
			_, _ = w.Write([]byte(`{"status":"PROCESSING"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"DONE","images":["aGVsbG8="]}`))
	}), &sleeps)

	images, err := c.AwaitCompletion(context.Background(), testJobID, DefaultPollOptions())
	if err != nil {
		t.Fatalf("AwaitCompletion: %v", err)
	}
	if len(images) != 1 || images[0] != "aGVsbG8=" {
		t.Fatalf("unexpected images %v", images)
	}
	want := []time.Duration{10 * time.Second, 12 * time.Second, 14 * time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", sleeps, want)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Fatalf("sleeps = %v, want %v", sleeps, want)
		}
	}
}

func TestAwaitCompletion_TimeoutIsNotAnError(t *testing.T) {
	var calls int32
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status":"INITIAL"}`))
	}), &sleeps)

	opts := PollOptions{MaxAttempts: 5, InitialDelay: time.Second, Step: 2 * time.Second}
	images, err := c.AwaitCompletion(context.Background(), testJobID, opts)
	if err != nil {
		t.Fatalf("timeout must not be an error: %v", err)
	}
	if images != nil {
		t.Fatalf("expected nil images, got %v", images)
	}
	if atomic.LoadInt32(&calls) != 5 {
		t.Fatalf("expected 5 polls, got %d", calls)
	}
}

func TestAwaitCompletion_Failed(t *testing.T) {
	var sleeps []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAIL","errorDescription":"nsfw"}`))
	}), &sleeps)

	_, err := c.AwaitCompletion(context.Background(), testJobID, DefaultPollOptions())
	if !errors.Is(err, ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
}

func TestAwaitCompletion_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"PROCESSING"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL, "k", "s", WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	if _, err := c.AwaitCompletion(ctx, testJobID, DefaultPollOptions()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
