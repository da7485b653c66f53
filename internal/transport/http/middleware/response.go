package middleware

import (
	"encoding/json"
	"net/http"
)

type denialBody struct {
	Error string `json:"error"`
}

// writeJSONError is the shared rejection writer for the auth, role and rate
// limit middleware. Handlers have their own envelope helpers; middleware
// rejections carry only an error string.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	body, err := json.Marshal(denialBody{Error: msg})
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
