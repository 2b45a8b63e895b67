package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	perr "biokb/internal/platform/errors"
)

func TestHTTPFetcher_SkipsWhenSizeAndMTimeMatch(t *testing.T) {
	lastMod := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	body := []byte("hello world")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", lastMod.Format(http.TimeFormat))
		w.Header().Set("Content-Length", "11")
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	workDir := t.TempDir()
	localPath := filepath.Join(workDir, "data.txt")
	if err := os.WriteFile(localPath, body, 0o644); err != nil {
		t.Fatalf("seed local file: %v", err)
	}
	if err := os.Chtimes(localPath, lastMod, lastMod); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	f := NewHTTPFetcher(5 * time.Second)
	results, err := f.Fetch(context.Background(), srv.URL, FileSet{"data.txt": "/data.txt"}, workDir)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !results["data.txt"].Skipped {
		t.Fatalf("got %+v, want Skipped=true", results["data.txt"])
	}
}

func TestHTTPFetcher_DownloadsAndStampsMTimeWhenStale(t *testing.T) {
	remoteModTime := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	body := []byte("fresh content")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", remoteModTime.Format(http.TimeFormat))
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "999")
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	workDir := t.TempDir()
	localPath := filepath.Join(workDir, "data.txt")
	staleTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.WriteFile(localPath, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed local file: %v", err)
	}
	if err := os.Chtimes(localPath, staleTime, staleTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	f := NewHTTPFetcher(5 * time.Second)
	results, err := f.Fetch(context.Background(), srv.URL, FileSet{"data.txt": "/data.txt"}, workDir)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !results["data.txt"].Downloaded {
		t.Fatalf("got %+v, want Downloaded=true", results["data.txt"])
	}

	got, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("read local file: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("got content %q, want %q", got, body)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(remoteModTime) {
		t.Fatalf("got mtime %v, want %v", info.ModTime(), remoteModTime)
	}
}

func TestHTTPFetcher_MissingRemoteReportsMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	results, err := f.Fetch(context.Background(), srv.URL, FileSet{"data.txt": "/data.txt"}, t.TempDir())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	r := results["data.txt"]
	if r.Err == nil {
		t.Fatal("a missing remote file must be reported so the adapter can abort its run")
	}
	if !perr.IsCode(r.Err, perr.ErrorCodeNotFound) {
		t.Fatalf("got %v, want a not-found classification", r.Err)
	}
	if r.Downloaded || r.Skipped {
		t.Fatalf("got %+v, want neither downloaded nor skipped for a missing remote", r)
	}
}
