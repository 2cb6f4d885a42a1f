// Package request provides helpers to extract parameters from an HTTP request.
package request

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

// Path returns the value of the named path parameter.
// The return value is trimmed of leading and trailing whitespace.
func Path(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}

// Query returns the value of the named query parameter.
// The return value is trimmed of leading and trailing whitespace.
func Query(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryDefault returns the value of the named query parameter, or the default
// value if the parameter is absent.
func QueryDefault(r *http.Request, name, defaultValue string) string {
	if !r.URL.Query().Has(name) {
		return defaultValue
	}

	return Query(r, name)
}

// QuerySlice returns all values of the named query parameter.
// All slice values are trimmed of leading and trailing whitespace.
func QuerySlice(r *http.Request, name string) []string {
	values, ok := r.URL.Query()[name]
	if !ok {
		return nil
	}

	result := make([]string, len(values))
	for i, value := range values {
		result[i] = strings.TrimSpace(value)
	}
	return result
}

// ClientIp returns the client IP address of the request. For requests coming
// through a private proxy, the X-Real-Ip and X-Forwarded-For headers are
// consulted.
func ClientIp(r *http.Request) string {
	ipStr, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		ipStr = strings.TrimSpace(r.RemoteAddr)
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	if ip.IsPrivate() || ip.IsLoopback() {
		forwarded := r.Header.Get("X-Real-Ip")
		if forwarded == "" {
			forwarded = r.Header.Get("X-Forwarded-For")
		}
		if forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if realIp := net.ParseIP(strings.TrimSpace(first)); realIp != nil {
				return realIp.String()
			}
		}
	}

	return ip.String()
}

// BodyJson decodes the JSON request body into the target.
// The body reader is closed after reading.
func BodyJson(r *http.Request, target any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(r.Body).Decode(target)
}
