// Package session provides an HTTP response-header interception point.
package session

import (
	"net/http"
	"sync"
)

// Details describes one response whose headers are about to be sent.
type Details struct {
	Method     string
	URL        string
	StatusCode int
	// Headers is a copy of the response headers; listeners may modify and
	// return it.
	Headers http.Header
}

// HeadersListener returns the headers to send for a response.
type HeadersListener func(details Details) http.Header

// Session owns the response-header listener applied by its Handler.
type Session struct {
	mu       sync.RWMutex
	listener HeadersListener
}

// New creates a session with no listener installed.
func New() *Session {
	return &Session{}
}

// OnHeadersReceived installs listener, replacing any previous one. A nil
// listener removes interception.
func (s *Session) OnHeadersReceived(listener HeadersListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = listener
}

func (s *Session) current() HeadersListener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listener
}

// Handler wraps next so that the installed listener rewrites every
// response's headers just before they are written.
func (s *Session) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listener := s.current()
		if listener == nil {
			next.ServeHTTP(w, r)
			return
		}
		iw := &interceptWriter{
			ResponseWriter: w,
			req:            r,
			listener:       listener,
		}
		next.ServeHTTP(iw, r)
		// A handler that writes nothing still gets an implicit 200.
		iw.apply(http.StatusOK)
	})
}

type interceptWriter struct {
	http.ResponseWriter
	req      *http.Request
	listener HeadersListener
	applied  bool
}

func (w *interceptWriter) apply(status int) {
	if w.applied {
		return
	}
	w.applied = true

	h := w.ResponseWriter.Header()
	out := w.listener(Details{
		Method:     w.req.Method,
		URL:        w.req.URL.String(),
		StatusCode: status,
		Headers:    h.Clone(),
	})
	if out == nil {
		return
	}
	for k := range h {
		delete(h, k)
	}
	for k, v := range out {
		h[k] = v
	}
}

func (w *interceptWriter) WriteHeader(status int) {
	w.apply(status)
	w.ResponseWriter.WriteHeader(status)
}

func (w *interceptWriter) Write(p []byte) (int, error) {
	w.apply(http.StatusOK)
	return w.ResponseWriter.Write(p)
}

func (w *interceptWriter) Flush() {
	w.apply(http.StatusOK)
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *interceptWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
