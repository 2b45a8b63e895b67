package transport

import (
	"context"
	"io"
	"net/http"
	"path"
	"time"

	perr "biokb/internal/platform/errors"
)

// HTTPFetcher is the hypertext conditional downloader: one HEAD per file to
// read Content-Length/Last-Modified, then a GET when the remote looks newer
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher builds an HTTPFetcher with the given timeout; zero means no
// timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher for the hypertext protocol
func (f *HTTPFetcher) Fetch(ctx context.Context, host string, files FileSet, workDir string) (map[string]Result, error) {
	out := make(map[string]Result, len(files))
	for localName, remotePath := range files {
		localPath := path.Join(workDir, localName)
		url := host + remotePath

		remote, err := f.head(ctx, url)
		if err != nil {
			out[localName] = Result{Err: perr.Wrapf(err, perr.ErrorCodeUnavailable, "HEAD %s", url)}
			continue
		}

		if shouldSkip(stat(localPath), remote) {
			out[localName] = Result{Skipped: true}
			continue
		}
		if remote.Missing {
			out[localName] = Result{Err: perr.NotFoundf("remote file missing: %s", url)}
			continue
		}

		body, err := f.get(ctx, url)
		if err != nil {
			out[localName] = Result{Err: perr.Wrapf(err, perr.ErrorCodeUnavailable, "GET %s", url)}
			continue
		}
		if err := writeAndStamp(localPath, body, remote.MTime); err != nil {
			out[localName] = Result{Err: err}
			continue
		}
		out[localName] = Result{Downloaded: true}
	}
	return out, nil
}

func (f *HTTPFetcher) head(ctx context.Context, url string) (RemoteStat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return RemoteStat{}, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return RemoteStat{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return RemoteStat{Missing: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return RemoteStat{}, perr.Newf(perr.ErrorCodeUnavailable, "unexpected status %d for %s", resp.StatusCode, url)
	}

	mtime := time.Now()
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			mtime = t
		}
	}
	return RemoteStat{Size: resp.ContentLength, MTime: mtime}, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "unexpected status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
