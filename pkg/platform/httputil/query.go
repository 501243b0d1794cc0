package httputil

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	dErrors "dvi/pkg/domain-errors"
	strutil "dvi/pkg/platform/strings"
)

// QueryInt reads an integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.NewField(dErrors.CodeInvalidInput, name, name+" must be an integer")
	}
	return n, nil
}

// QueryTime reads an RFC 3339 timestamp query parameter; absent yields the
// zero time.
func QueryTime(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.NewField(dErrors.CodeInvalidInput, name, name+" must be an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}

// QueryList splits a comma-separated query parameter, dropping blanks and
// repeats. Repeated parameters (?status=a&status=b) are merged.
func QueryList(r *http.Request, name string) []string {
	var parts []string
	for _, v := range r.URL.Query()[name] {
		parts = append(parts, strings.Split(v, ",")...)
	}
	return strutil.DedupeAndTrim(parts)
}
