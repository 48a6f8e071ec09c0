package middleware

import (
	"bytes"
	"net/http"
)

// captureWriter records the status code and, optionally, a copy of the
// body while still streaming to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   *bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter, keepBody bool) *captureWriter {
	cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
	if keepBody {
		cw.body = &bytes.Buffer{}
	}
	return cw
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.body != nil {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
