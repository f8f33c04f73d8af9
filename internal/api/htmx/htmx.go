package htmx

import (
	"net/http"
	"strings"
)

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Trigger appends an event name to the HX-Trigger response header.
func Trigger(w http.ResponseWriter, event string) {
	existing := w.Header().Get("HX-Trigger")
	if existing == "" {
		w.Header().Set("HX-Trigger", event)
		return
	}
	for _, name := range strings.Split(existing, ",") {
		if strings.TrimSpace(name) == event {
			return
		}
	}
	w.Header().Set("HX-Trigger", existing+", "+event)
}
