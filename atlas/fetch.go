package atlas

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/carbocation/pfx"
	"github.com/dustin/go-humanize"
)

// DefaultFetchTimeout bounds every HTTP request, including the body transfer.
const DefaultFetchTimeout = 30 * time.Second

// FetchReport summarizes one FetchAll run.
type FetchReport struct {
	Downloaded      int
	SkippedExisting int
	Failed          int
	Bytes           int64
}

func (r FetchReport) String() string {
	return fmt.Sprintf("%d downloaded (%s), %d already present, %d failed",
		r.Downloaded, humanize.Bytes(uint64(r.Bytes)), r.SkippedExisting, r.Failed)
}

// Fetcher mirrors remote coordinate files into a local directory.
type Fetcher struct {
	Client  *http.Client
	BaseURL string
	DestDir string

	// Concurrency is the number of simultaneous downloads. Values below 1 are
	// treated as 1.
	Concurrency int
}

// NewFetcher returns a sequential Fetcher whose client gives up on any single
// file after timeout. A zero timeout selects DefaultFetchTimeout.
func NewFetcher(baseURL, destDir string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	return &Fetcher{
		Client:      &http.Client{Timeout: timeout},
		BaseURL:     baseURL,
		DestDir:     destDir,
		Concurrency: 1,
	}
}

// URLFor joins the base URL and a relative path with exactly one slash.
func (f *Fetcher) URLFor(relativePath string) string {
	return strings.TrimSuffix(f.BaseURL, "/") + "/" + strings.TrimPrefix(relativePath, "/")
}

// LocalPath is where relativePath is stored under DestDir.
func (f *Fetcher) LocalPath(relativePath string) string {
	return filepath.Join(f.DestDir, filepath.FromSlash(relativePath))
}

// FetchAll downloads every reference that is not already present locally.
// Single-file failures are logged and counted; only cancellation of ctx stops
// the batch early. References sharing a path are fetched once and the
// repeats are counted as already present.
func (f *Fetcher) FetchAll(ctx context.Context, refs []FileReference) (FetchReport, error) {
	var (
		report FetchReport
		mu     sync.Mutex
		wg     sync.WaitGroup
	)

	if err := os.MkdirAll(f.DestDir, 0755); err != nil {
		return report, pfx.Err(err)
	}

	concurrency := f.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	semaphore := make(chan struct{}, concurrency)

	queued := make(map[string]struct{}, len(refs))
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return report, err
		}

		if _, exists := queued[ref.RelativePath]; exists {
			mu.Lock()
			report.SkippedExisting++
			mu.Unlock()
			continue
		}
		queued[ref.RelativePath] = struct{}{}

		if fileExists(f.LocalPath(ref.RelativePath)) {
			log.Println(i+1, len(refs), "Already downloaded", ref.RelativePath)
			mu.Lock()
			report.SkippedExisting++
			mu.Unlock()
			continue
		}

		semaphore <- struct{}{}
		wg.Add(1)
		go func(i int, ref FileReference) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			log.Println(i+1, len(refs), "Downloading", ref.RelativePath)
			n, skipped, err := f.fetchOne(ctx, ref.RelativePath)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.Println(err)
				report.Failed++
			case skipped:
				report.SkippedExisting++
			default:
				report.Downloaded++
				report.Bytes += n
			}
		}(i, ref)
	}

	wg.Wait()

	return report, ctx.Err()
}

// fetchOne streams one file into a temporary sibling of its destination and
// moves it into place only if the destination is still absent.
func (f *Fetcher) fetchOne(ctx context.Context, relativePath string) (n int64, skipped bool, err error) {
	url := f.URLFor(relativePath)
	dest := f.LocalPath(relativePath)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, false, &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false, &FetchError{URL: url, Err: err}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, false, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, false, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, false, &FetchError{URL: url, Err: err}
	}
	defer os.Remove(tmp.Name())

	n, err = io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, false, &FetchError{URL: url, Err: err}
	}

	if fileExists(dest) {
		return 0, true, nil
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, false, &FetchError{URL: url, Err: err}
	}

	return n, false, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
