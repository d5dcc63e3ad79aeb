package session

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := Record{WSDL: "<definitions/>", FileName: "svc.wsdl", Categories: []string{"happy_path"}}
	if err := s.Put("abc", rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get("abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FileName != "svc.wsdl" || len(got.Categories) != 1 {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := s.Delete("abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get("abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := NewBolt(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec := Record{WSDL: "<definitions/>", FileName: "svc.wsdl", Categories: []string{"happy_path"}, Feedback: []string{"add a zero case"}}
	if err := s.Put("abc", rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = NewBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get("abc")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.WSDL != "<definitions/>" || len(got.Feedback) != 1 {
		t.Fatalf("unexpected record after reopen: %+v", got)
	}
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
