package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/reedham/go-tempo-playlist/internal/playlist"
	"github.com/reedham/go-tempo-playlist/internal/service"
	"github.com/reedham/go-tempo-playlist/internal/tempo"
)

const spotifyAPIBase = "https://api.spotify.com/"

// playlistGenerator is the slice of service.Generator the handlers use;
// tests substitute a stub.
type playlistGenerator interface {
	ResolveTempo(ctx context.Context, title, artist string) (tempo.Estimate, error)
	GeneratePlaylist(ctx context.Context, req playlist.Request) (*service.Generation, error)
}

// generatorFactory builds a generator bound to a session's OAuth token.
type generatorFactory func(ctx context.Context, token *oauth2.Token) playlistGenerator

// Handlers contains the HTTP handlers for the application.
type Handlers struct {
	auth       *spotifyauth.Authenticator
	sessions   *SessionStore
	generators generatorFactory
	httpClient *http.Client
	logger     *log.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(auth *spotifyauth.Authenticator, sessions *SessionStore, generators generatorFactory, logger *log.Logger) *Handlers {
	return &Handlers{
		auth:       auth,
		sessions:   sessions,
		generators: generators,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

// ============================================================================
// Auth
// ============================================================================

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing state cookie")
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		writeError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Spotify auth error: %s", errMsg))
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get token")
		return
	}

	client := spotifyapi.New(h.auth.Client(r.Context(), token))
	user, err := client.CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user info")
		return
	}

	session := h.sessions.Create(token, string(user.ID), user.DisplayName)
	h.sessions.SetCookie(w, session)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout ends the current session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(session.ID)
	}
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me reports the authenticated user (GET /api/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":   session.UserID,
		"name": session.UserName,
	})
}

// ============================================================================
// Playlist API
// ============================================================================

// playlistResponse is the playlist result plus what the chain detected, so
// the UI can show the detected tempo even when the request overrode it.
type playlistResponse struct {
	playlist.Result
	DetectedBPM int          `json:"detectedBpm"`
	TempoSource tempo.Source `json:"tempoSource"`
	Confidence  float64      `json:"confidence,omitempty"`
}

// GeneratePlaylist handles POST /api/playlist.
func (h *Handlers) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req playlist.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gen := h.generators(r.Context(), session.Token)
	result, err := gen.GeneratePlaylist(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrReferenceNotFound):
			writeError(w, http.StatusNotFound, "reference song not found")
		default:
			h.logger.Error("playlist generation failed", "error", err)
			writeError(w, http.StatusBadGateway, "failed to generate playlist")
		}
		return
	}

	writeJSON(w, http.StatusOK, playlistResponse{
		Result:      result.Playlist,
		DetectedBPM: result.Detected.BPM,
		TempoSource: result.Detected.Source,
		Confidence:  result.Detected.Confidence,
	})
}

// ResolveTempo handles GET /api/tempo?title=...&artist=..., the standalone
// detection used before committing to full generation.
func (h *Handlers) ResolveTempo(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	title := r.URL.Query().Get("title")
	artist := r.URL.Query().Get("artist")

	gen := h.generators(r.Context(), session.Token)
	est, err := gen.ResolveTempo(r.Context(), title, artist)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, est)
}

// ============================================================================
// Spotify proxy
// ============================================================================

// SpotifyProxy forwards GET requests to the Spotify API with the session's
// bearer token, preserving status and content type (GET /spotify-proxy/*).
func (h *Handlers) SpotifyProxy(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/spotify-proxy/")
	target := spotifyAPIBase + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build proxy request")
		return
	}
	req.Header.Set("Authorization", "Bearer "+session.Token.AccessToken)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Error("proxy request failed", "url", target, "error", err)
		writeError(w, http.StatusBadGateway, "proxy error")
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// ============================================================================
// Helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// generateOAuthState creates a random state string for CSRF protection.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
