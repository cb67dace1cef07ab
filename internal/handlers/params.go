package handlers

import (
	"net/http"
	"strconv"
)

// idParam reads a numeric :id-style parameter injected by the pat router.
func idParam(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(":" + name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// principalFromContext reads the identity the JWT middleware stored. The
// zero values mean the request is anonymous.
func principalFromContext(r *http.Request) (int, string) {
	userID, _ := r.Context().Value("user_id").(int)
	role, _ := r.Context().Value("role").(string)
	return userID, role
}
