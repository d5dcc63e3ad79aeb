package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pkt.systems/pslog"
)

func TestOllamaGenerateStructured(t *testing.T) {
	var got generateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: `{"happy_path": []}`})
	}))
	defer ts.Close()

	o := NewOllama(ts.URL, "llama3", time.Second, pslog.New(io.Discard))
	out, err := o.Generate(context.Background(), "make scenarios", true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `{"happy_path": []}` {
		t.Fatalf("unexpected output %q", out)
	}
	if got.Model != "llama3" || got.Prompt != "make scenarios" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Stream {
		t.Fatalf("streaming must be disabled")
	}
	if got.Format != "json" {
		t.Fatalf("structured call must request json format, got %q", got.Format)
	}
}

func TestOllamaGenerateFreeText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Format != "" {
			t.Errorf("free-text call must not force a format, got %q", req.Format)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "plain text"})
	}))
	defer ts.Close()

	o := NewOllama(ts.URL, "llama3", time.Second, pslog.New(io.Discard))
	out, err := o.Generate(context.Background(), "say something", false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "plain text" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer ts.Close()

	o := NewOllama(ts.URL, "nope", time.Second, pslog.New(io.Discard))
	if _, err := o.Generate(context.Background(), "x", true); err == nil {
		t.Fatalf("expected error for HTTP 404")
	}
}

func TestOllamaGenerateBodyError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Error: "out of memory"})
	}))
	defer ts.Close()

	o := NewOllama(ts.URL, "llama3", time.Second, pslog.New(io.Discard))
	_, err := o.Generate(context.Background(), "x", true)
	if err == nil || !strings.Contains(err.Error(), "out of memory") {
		t.Fatalf("expected body error, got %v", err)
	}
}

func TestOllamaGenerateContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise Close blocks forever.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer ts.Close()

	o := NewOllama(ts.URL, "llama3", time.Minute, pslog.New(io.Discard))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := o.Generate(ctx, "x", true); err == nil {
		t.Fatalf("expected context deadline error")
	}
}

func TestGeneratorFunc(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, prompt string, structured bool) (string, error) {
		return prompt + "!", nil
	})
	out, err := gen.Generate(context.Background(), "hi", false)
	if err != nil || out != "hi!" {
		t.Fatalf("got %q, %v", out, err)
	}
}
