package sciutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// SplitGSPath splits gs://bucket/path/to/object into its bucket and object
// names.
func SplitGSPath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// MaybeOpenFromGoogleStorage opens gs:// paths through client and everything
// else from the local disk. The size of the object is returned alongside the
// reader. A nil client is only acceptable for local paths.
func MaybeOpenFromGoogleStorage(path string, client *storage.Client) (io.ReadCloser, int64, error) {
	if strings.HasPrefix(path, "gs://") {
		if client == nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: no google storage client was configured", path))
		}

		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return nil, 0, pfx.Err(err)
		}

		r, err := client.Bucket(bucketName).Object(pathName).NewReader(context.Background())
		if err != nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}

		return r, r.Attrs.Size, nil
	}

	f, err := os.Open(ExpandHome(path))
	if err != nil {
		return nil, 0, err
	}
	fstat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, fstat.Size(), nil
}

// OpenInput opens a local or gs:// path and transparently decompresses it.
// The returned size is that of the raw (possibly compressed) object.
func OpenInput(path string, client *storage.Client) (io.ReadCloser, int64, error) {
	f, size, err := MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return nil, 0, err
	}

	rc, err := MaybeDecompressReadCloser(f)
	if err != nil {
		f.Close()
		return nil, 0, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return rc, size, nil
}
