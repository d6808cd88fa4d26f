package domain

import "fmt"

// Response is the canonical HTTP response as seen by the pipeline and hooks.
type Response struct {
	StatusCode int
	Headers    Headers
	Body       []byte
}

// BodyLength returns the byte length of the response body.
func (r *Response) BodyLength() int {
	return len(r.Body)
}

// CopyBody copies the response body into buf and returns the number of bytes
// written. Callers size buf using BodyLength first; a buffer shorter than the
// body fails with BufferTooSmall and writes nothing, never a silent
// truncation.
func (r *Response) CopyBody(buf []byte) (int, error) {
	if len(buf) < len(r.Body) {
		return 0, ErrBufferTooSmall(fmt.Sprintf("body is %d bytes, buffer is %d", len(r.Body), len(buf)))
	}
	return copy(buf, r.Body), nil
}
