package mux

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"net/http"
)

// Response is the outbound side of a Context. It records the status code
// and whether anything has been sent so the server can decide if an error
// response is still possible.
type Response struct {
	w       http.ResponseWriter
	status  int
	written bool
	size    int64

	beforeWriteHeader []func(*Response)
}

func newResponse(w http.ResponseWriter) *Response {
	return &Response{w: w, status: http.StatusOK}
}

// Header returns the response header map.
func (r *Response) Header() http.Header {
	return r.w.Header()
}

// BeforeWriteHeader registers fn to run just before the status line is
// sent. Hooks run once, in registration order, and may still change the
// header map.
func (r *Response) BeforeWriteHeader(fn func(*Response)) {
	if fn == nil {
		return
	}

	r.beforeWriteHeader = append(r.beforeWriteHeader, fn)
}

// WriteHeader sends the status line. Only the first call has an effect.
func (r *Response) WriteHeader(code int) {
	if r.written {
		return
	}

	r.status = code
	r.written = true

	for _, fn := range r.beforeWriteHeader {
		fn(r)
	}
	r.beforeWriteHeader = nil

	r.w.WriteHeader(code)
}

// Write sends body bytes, writing a 200 status first if needed.
func (r *Response) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}

	n, err := r.w.Write(b)
	r.size += int64(n)

	return n, err
}

// Flush sends buffered data to the client when the transport supports it.
func (r *Response) Flush() {
	if f, ok := r.w.(http.Flusher); ok {
		if !r.written {
			r.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// Status returns the status code sent, or 200 if nothing was sent yet.
// Inside a BeforeWriteHeader hook it is the status about to be sent.
func (r *Response) Status() int {
	return r.status
}

// Written reports whether the status line has been sent.
func (r *Response) Written() bool {
	return r.written
}

// Size returns the number of body bytes written.
func (r *Response) Size() int64 {
	return r.size
}

// Unwrap returns the transport response writer.
func (r *Response) Unwrap() http.ResponseWriter {
	return r.w
}

// SendStatus writes an empty response with the given status code.
func (r *Response) SendStatus(code int) {
	r.WriteHeader(code)
}

// SendString writes s as a text/plain response.
func (r *Response) SendString(code int, s string) {
	r.Header().Set("Content-Type", "text/plain; charset=utf-8")
	r.WriteHeader(code)
	_, _ = r.Write([]byte(s))
}

// SendJSON encodes v as JSON and writes it with the given status code.
// If encoding fails, an HTTP 500 Internal Server Error is written instead.
func (r *Response) SendJSON(code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		r.SendString(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	r.Header().Set("Content-Type", "application/json")
	r.WriteHeader(code)
	_, _ = r.Write(buf.Bytes())
}

// SendXML encodes v as XML and writes it with the given status code.
// If encoding fails, an HTTP 500 Internal Server Error is written instead.
func (r *Response) SendXML(code int, v any) {
	var buf bytes.Buffer
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		r.SendString(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	r.Header().Set("Content-Type", "application/xml")
	r.WriteHeader(code)
	_, _ = r.Write(buf.Bytes())
}
