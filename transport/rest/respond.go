package rest

import (
	"encoding/json"
	"net/http"
)

// Every endpoint answers with the same envelope: {"success": true, "data": …}
// or {"success": false, "error": {"code": …, "message": …}}.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidPlayerName = "INVALID_PLAYER_NAME"
	codeInvalidGameID     = "INVALID_GAME_ID"
	codeInvalidLimit      = "INVALID_LIMIT"
	codePlayerNotFound    = "PLAYER_NOT_FOUND"
	codeGameNotFound      = "GAME_NOT_FOUND"
	codeInternalError     = "INTERNAL_ERROR"
)

func (that *Server) respondData(w http.ResponseWriter, status int, data any) {
	that.respond(w, status, envelope{Success: true, Data: data})
}

func (that *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	that.respond(w, status, envelope{Success: false, Error: &apiError{Code: code, Message: message}})
}

func (that *Server) respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
