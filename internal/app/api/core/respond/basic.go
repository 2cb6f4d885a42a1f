// Package respond provides small helpers for writing HTTP responses.
package respond

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Status writes an empty response with the given status code.
func Status(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// String writes a plain text response with the given status code.
func String(w http.ResponseWriter, code int, data string) {
	w.Header().Set("Content-Type", "text/plain;charset=utf-8")
	w.WriteHeader(code)

	_, _ = w.Write([]byte(data))
}

// JSON writes a JSON response with the given status code. Nil data is written
// as JSON null. Encoding errors are silently ignored, at that point the status
// code is already on the wire.
func JSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if data == nil {
		_, _ = w.Write([]byte("null"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}

// Data writes a raw response with the given status code and content type.
// If no content type is provided, it is detected from the data.
func Data(w http.ResponseWriter, code int, contentType string, data []byte) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(code)

	_, _ = w.Write(data)
}

// Attachment writes a downloadable response with the given filename.
func Attachment(w http.ResponseWriter, code int, filename, contentType string, data []byte) {
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	Data(w, code, contentType, data)
}
