// Package relay implements the prompt relay: an HTTP handler that holds the
// upstream API key, and the client that talks to it.
package relay

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/syedkumailraza2/buildboard/internal/llm"
)

// MissingKeyMessage is returned when the upstream API key is not set.
const MissingKeyMessage = "Gemini API Missing"

// MaxBodyBytes caps the size of a /generate request body.
const MaxBodyBytes = 100 << 10

// GenerateRequest is the relay request body.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the relay success body.
type GenerateResponse struct {
	Text string `json:"text"`
}

// Handler serves POST /generate.
type Handler struct {
	provider      llm.Provider
	allowedOrigin string
}

// NewHandler creates a relay handler. An empty allowedOrigin disables CORS
// headers.
func NewHandler(provider llm.Provider, allowedOrigin string) *Handler {
	return &Handler{provider: provider, allowedOrigin: allowedOrigin}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.allowedOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", h.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	err := dec.Decode(&req)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = errors.New("trailing data after JSON body")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing prompt"})
		return
	}

	text, err := h.provider.Generate(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			log.Printf("Refusing /generate: %v", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": MissingKeyMessage})
			return
		}
		log.Printf("Error in /generate: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{Text: text})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
