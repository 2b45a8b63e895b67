// Package transport implements the incremental download layer:
// conditional fetch over file-transfer (FTP) and hypertext (HTTP) protocols,
// skipping files whose remote size and mtime already match what's on disk
package transport

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	perr "biokb/internal/platform/errors"
	ptime "biokb/internal/platform/time"
)

// readAllAndClose drains r fully and closes it, returning whatever bytes
// were read even if Close itself errors
func readAllAndClose(r io.ReadCloser) ([]byte, error) {
	defer r.Close()
	return io.ReadAll(r)
}

// RemoteStat is what a probe learns about one remote file
type RemoteStat struct {
	Size  int64
	MTime time.Time
	// Missing marks a remote path that does not exist (a file-transfer LIST
	// that never named it, or an HTTP HEAD that 404'd)
	Missing bool
}

// localStat is what's already on disk, or the zero value if absent
type localStat struct {
	size    int64
	mtime   time.Time
	present bool
}

// FileSet maps a local path (under the adapter's working directory) to the
// remote path that should fill it
type FileSet map[string]string

// Result reports, per local path, whether a download happened
type Result struct {
	Downloaded bool
	Skipped    bool
	Err        error
}

func stat(localPath string) localStat {
	info, err := os.Stat(localPath)
	if err != nil {
		return localStat{}
	}
	return localStat{size: info.Size(), mtime: info.ModTime(), present: true}
}

// shouldSkip: skip exactly when the remote size matches and the remote
// mtime is no newer than local
func shouldSkip(local localStat, remote RemoteStat) bool {
	if remote.Missing || !local.present {
		return false
	}
	return remote.Size == local.size && !remote.MTime.After(local.mtime)
}

// writeAndStamp overwrites localPath with body and sets its mtime (truncated
// to second precision, matching what remote listings report) so the next run
// can skip the file
func writeAndStamp(localPath string, body []byte, mtime time.Time) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "mkdir for %s", localPath)
	}
	if err := os.WriteFile(localPath, body, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "write %s", localPath)
	}
	if !mtime.IsZero() {
		stamp := ptime.ToSecond(mtime)
		if err := os.Chtimes(localPath, stamp, stamp); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "chtimes %s", localPath)
		}
	}
	return nil
}

// Fetcher is implemented by the FTP and HTTP conditional downloaders
type Fetcher interface {
	// Fetch conditionally downloads every local->remote mapping in files,
	// rooted under workDir for local paths, against the given remote host
	Fetch(ctx context.Context, host string, files FileSet, workDir string) (map[string]Result, error)
}
