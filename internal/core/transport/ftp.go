package transport

import (
	"context"
	"path"
	"time"

	"github.com/jlaffaye/ftp"

	perr "biokb/internal/platform/errors"
)

// FTPFetcher is the file-transfer conditional downloader: one directory
// listing per distinct remote directory, matched against local size+mtime
type FTPFetcher struct {
	Timeout time.Duration
}

// NewFTPFetcher builds an FTPFetcher with the given dial/command timeout
func NewFTPFetcher(timeout time.Duration) *FTPFetcher {
	return &FTPFetcher{Timeout: timeout}
}

// Fetch implements Fetcher for the file-transfer protocol. files' remote
// paths are grouped by directory so each distinct directory is LIST'd once
func (f *FTPFetcher) Fetch(ctx context.Context, host string, files FileSet, workDir string) (map[string]Result, error) {
	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(f.Timeout))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "dial %s", host)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "anonymous login to %s", host)
	}

	byDir := make(map[string][]struct{ local, remote string })
	for localName, remotePath := range files {
		dir := path.Dir(remotePath)
		byDir[dir] = append(byDir[dir], struct{ local, remote string }{localName, remotePath})
	}

	now := time.Now().UTC()
	remoteStats := make(map[string]RemoteStat, len(files))
	for dir, group := range byDir {
		entries, err := conn.List(dir)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "LIST %s", dir)
		}
		byName := make(map[string]*ftp.Entry, len(entries))
		for _, e := range entries {
			byName[e.Name] = e
		}
		for _, g := range group {
			base := path.Base(g.remote)
			if e, ok := byName[base]; ok {
				// listings without a year column come back attributed to the
				// current year; normalize the same way the raw parser does
				remoteStats[g.local] = RemoteStat{Size: int64(e.Size), MTime: rollbackIfFuture(e.Time, now)}
			} else {
				remoteStats[g.local] = RemoteStat{Missing: true}
			}
		}
	}

	out := make(map[string]Result, len(files))
	for localName, remotePath := range files {
		localPath := path.Join(workDir, localName)
		remote := remoteStats[localName]

		if shouldSkip(stat(localPath), remote) {
			out[localName] = Result{Skipped: true}
			continue
		}
		if remote.Missing {
			out[localName] = Result{Err: perr.NotFoundf("remote file missing: %s", remotePath)}
			continue
		}

		r, err := conn.Retr(remotePath)
		if err != nil {
			out[localName] = Result{Err: perr.Wrapf(err, perr.ErrorCodeUnavailable, "RETR %s", remotePath)}
			continue
		}
		body, err := readAllAndClose(r)
		if err != nil {
			out[localName] = Result{Err: perr.Wrapf(err, perr.ErrorCodeUnavailable, "read %s", remotePath)}
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
