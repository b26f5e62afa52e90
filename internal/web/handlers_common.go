package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var errMissingField = errors.New("missing form field")

// formInt parses a required integer form field.
func formInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return 0, errMissingField
	}
	return strconv.Atoi(v)
}

// redirectBack answers a plain form post with 303 See Other to the page the
// form was on, or to fallback when the referer is missing or foreign.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = ref.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
