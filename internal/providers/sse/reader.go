// Package sse reads line-framed streaming HTTP bodies. It understands both
// classic server-sent events ("data: " prefixed payload lines) and bare
// line-delimited JSON envelopes, which is the superset the supported
// providers emit.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Reader yields payload lines from a streaming response body one at a time.
// The caller owns the underlying body and decides when to stop reading;
// nothing is read past the line most recently returned.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next payload line with any "data:" prefix stripped.
// Blank lines (event delimiters), SSE comments and non-data SSE fields are
// skipped. Returns io.EOF when the body is exhausted.
func (r *Reader) Next() (string, error) {
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			// Final line without a trailing newline still counts.
			if err == io.EOF {
				if p, ok := payload(strings.TrimSpace(line)); ok {
					return p, nil
				}
			}
			return "", err
		}
		if p, ok := payload(strings.TrimRight(line, "\r\n")); ok {
			return p, nil
		}
	}
}

func payload(line string) (string, bool) {
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	if rest, ok := strings.CutPrefix(line, "data:"); ok {
		return strings.TrimPrefix(rest, " "), true
	}
	// SSE comments and non-data fields.
	if strings.HasPrefix(line, ":") ||
		strings.HasPrefix(line, "event:") ||
		strings.HasPrefix(line, "id:") ||
		strings.HasPrefix(line, "retry:") {
		return "", false
	}
	// Bare line-delimited JSON envelope.
	return line, true
}
