package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedRequest marks a connection whose bytes never formed a
// complete request: the connection is dropped without a response.
var ErrMalformedRequest = errors.New("malformed request")

const (
	readChunkSize  = 4096
	maxHeaderBytes = 64 << 10
)

var headerBodySep = []byte("\r\n\r\n")

// Request is one framed request read off a raw connection.
type Request struct {
	Method  string
	Target  string // path plus any query string, as received
	Path    string
	Query   string
	Headers map[string]string // keys lower-cased
	Body    []byte
}

// Header looks a header up case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// ReadRequest frames exactly one request from the connection: it reads in
// chunks until the blank line ending the headers, then keeps reading until
// Content-Length bytes of body have arrived. No Content-Length means no
// body; a peer that disconnects before either point is malformed. Chunked
// transfer encoding and keep-alive are not supported.
func ReadRequest(conn io.Reader) (*Request, error) {
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	sep := -1
	for sep < 0 {
		if len(buf) > maxHeaderBytes {
			return nil, fmt.Errorf("%w: header block exceeds %d bytes", ErrMalformedRequest, maxHeaderBytes)
		}
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			sep = bytes.Index(buf, headerBodySep)
		}
		if err != nil {
			if sep >= 0 {
				break
			}
			return nil, fmt.Errorf("%w: connection closed before headers completed", ErrMalformedRequest)
		}
	}

	head := buf[:sep]
	body := append([]byte(nil), buf[sep+len(headerBodySep):]...)

	lines := strings.Split(string(head), "\r\n")
	fields := strings.Fields(lines[0])
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: bad request line %q", ErrMalformedRequest, lines[0])
	}

	req := &Request{
		Method:  strings.ToUpper(fields[0]),
		Target:  fields[1],
		Headers: make(map[string]string, len(lines)-1),
	}
	req.Path = req.Target
	if i := strings.IndexByte(req.Target, '?'); i >= 0 {
		req.Path = req.Target[:i]
		req.Query = req.Target[i+1:]
	}

	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		req.Headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	if lengthText, ok := req.Headers["content-length"]; ok {
		length, err := strconv.Atoi(lengthText)
		if err != nil || length < 0 {
			return nil, fmt.Errorf("%w: bad content-length %q", ErrMalformedRequest, lengthText)
		}
		switch {
		case len(body) > length:
			body = body[:length]
		case len(body) < length:
			rest := make([]byte, length-len(body))
			if _, err := io.ReadFull(conn, rest); err != nil {
				return nil, fmt.Errorf("%w: connection closed mid-body", ErrMalformedRequest)
			}
			body = append(body, rest...)
		}
		req.Body = body
	}

	return req, nil
}
