package api

import "io"

// ProgressFunc reports upload progress: bytes sent so far out of total.
type ProgressFunc func(sent, total int64)

// progressReader counts bytes as the request body is consumed by the
// transport and reports them to the callback.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onProgress: onProgress}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.sent += int64(n)
		if pr.onProgress != nil {
			pr.onProgress(pr.sent, pr.total)
		}
	}
	return n, err
}
