package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// ParseJSON decodes the request body into the given destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes the request body and writes a 400 response on
// failure. Returns false if parsing failed and the error was written.
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// PathInt64 extracts an int64 path variable from the request
func PathInt64(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, fmt.Errorf("missing path parameter %q", name)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("path parameter %q must be an integer", name)
	}
	return value, nil
}

// ParsePathInt64OrError extracts an int64 path variable and writes a 400
// response on failure. Returns false if the error was written.
func ParsePathInt64OrError(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	value, err := PathInt64(r, name)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return value, true
}

// QueryString returns a query parameter, or the fallback when absent.
func QueryString(r *http.Request, name, fallback string) string {
	if value := r.URL.Query().Get(name); value != "" {
		return value
	}
	return fallback
}

// QueryBool returns a boolean query parameter, or the fallback when absent
// or malformed.
func QueryBool(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

// RequireNonEmpty validates that the named field is not blank, writing a
// 400 response when it is. Returns false if the error was written.
func RequireNonEmpty(w http.ResponseWriter, name, value string) bool {
	if strings.TrimSpace(value) == "" {
		WriteBadRequest(w, fmt.Sprintf("%s is required", name))
		return false
	}
	return true
}
