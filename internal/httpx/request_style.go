package httpx

import (
	"net/http"
	"strings"
)

// WantsJSON reports whether the caller is a script (XHR/fetch) rather than a
// browser navigation, which decides between a JSON answer and a redirect.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// SeeOther redirects a form submission to target with 303.
func SeeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
