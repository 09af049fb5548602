package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/calebtn/go-mood-matcher/internal/embedding"
	"github.com/calebtn/go-mood-matcher/internal/mood"
	"github.com/calebtn/go-mood-matcher/internal/moodgroups"
	"github.com/calebtn/go-mood-matcher/internal/score"
	"github.com/calebtn/go-mood-matcher/internal/sentiment"
	spotifyclient "github.com/calebtn/go-mood-matcher/internal/spotify"
	"github.com/calebtn/go-mood-matcher/internal/transcribe"
)

// allowedExtensions restricts audio uploads to the container formats the
// transcription service accepts.
var allowedExtensions = map[string]bool{
	".m4a": true,
	".wav": true,
	".mp3": true,
}

// FeatureSource fetches mood attributes for tracks, filling them in place.
type FeatureSource interface {
	FetchAudioFeatures(ctx context.Context, tracks []score.Track) spotifyclient.FetchResult
}

// CatalogFactory builds a FeatureSource authenticated with a bearer token.
type CatalogFactory func(ctx context.Context, accessToken string) FeatureSource

// refreshFunc exchanges an expired OAuth token for a fresh one.
type refreshFunc func(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	auth        *spotifyauth.Authenticator
	sessions    SessionManager
	vocab       *embedding.Vocabulary
	predictor   *mood.Network
	transcriber transcribe.Transcriber
	classifier  sentiment.Classifier
	catalog     CatalogFactory
	refresh     refreshFunc
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	auth *spotifyauth.Authenticator,
	sessions SessionManager,
	vocab *embedding.Vocabulary,
	predictor *mood.Network,
	transcriber transcribe.Transcriber,
	classifier sentiment.Classifier,
	catalog CatalogFactory,
) *Handlers {
	if catalog == nil {
		catalog = func(ctx context.Context, accessToken string) FeatureSource {
			return spotifyclient.NewFromToken(ctx, accessToken)
		}
	}
	// The oauth2 transport refreshes an expired token on its own; asking
	// the wrapped client for its token surfaces the refreshed one.
	refresh := func(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
		return spotify.New(auth.Client(ctx, token)).Token()
	}
	return &Handlers{
		auth:        auth,
		sessions:    sessions,
		vocab:       vocab,
		predictor:   predictor,
		transcriber: transcriber,
		classifier:  classifier,
		catalog:     catalog,
		refresh:     refresh,
	}
}

// Home handles GET /.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"message": "mood matcher API",
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Login redirects the user to Spotify for authorization (GET /login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate state")
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

// Callback exchanges an authorization code for an access token
// (POST /callback). The code arrives as JSON from the frontend, which
// received it on its own redirect URI.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "authorization code not provided")
		return
	}

	token, err := h.auth.Exchange(r.Context(), req.Code)
	if err != nil {
		log.Printf("web: token exchange failed: %v", err)
		respondError(w, http.StatusBadRequest, "failed to obtain access token")
		return
	}

	session, err := h.sessions.Create(r.Context(), token)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.sessions.SetCookie(w, session)

	respondJSON(w, http.StatusOK, map[string]string{"message": "access token obtained successfully"})
}

// Upload analyzes a diary-style audio recording (POST /upload): transcribe,
// classify sentiment into valence, predict danceability and energy from the
// transcript, and fuse everything into a final score.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file part in the request")
		return
	}
	defer file.Close()

	if header.Filename == "" || !allowedFile(header.Filename) {
		respondError(w, http.StatusBadRequest, "invalid file format")
		return
	}

	transcript, err := h.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		log.Printf("web: transcription failed: %v", err)
		respondError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	result, err := h.classifier.Classify(r.Context(), transcript)
	if err != nil {
		log.Printf("web: sentiment classification failed: %v", err)
		respondError(w, http.StatusBadGateway, "sentiment analysis failed")
		return
	}
	valence := score.Valence(result.Label, result.Confidence)

	danceability, energy, err := h.predictor.Predict(h.vocab.Encode(transcript))
	if err != nil {
		log.Printf("web: mood prediction failed: %v", err)
		respondError(w, http.StatusInternalServerError, "mood prediction failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"transcription":   transcript,
		"label":           result.Label,
		"score":           result.Confidence,
		"valence":         valence,
		"danceability":    danceability,
		"energy":          energy,
		"audioFinalScore": score.Fuse(valence, danceability, energy),
	})
}

// analyzeRequest is the JSON body shared by the track analysis endpoints.
type analyzeRequest struct {
	Tracks          []score.Track `json:"tracks"`
	InputFinalScore *float64      `json:"input_final_score"`
}

// AnalyzeTracks ranks candidate tracks by closeness to a target score
// (POST /analyze-tracks).
func (h *Handlers) AnalyzeTracks(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.InputFinalScore == nil {
		respondError(w, http.StatusBadRequest, "input final score is required")
		return
	}
	if len(req.Tracks) == 0 {
		respondError(w, http.StatusBadRequest, "no tracks to analyze")
		return
	}

	token := h.bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	source := h.catalog(r.Context(), token)
	fetch := source.FetchAudioFeatures(r.Context(), req.Tracks)
	log.Printf("web: fetched features for %d of %d tracks (%d failed batches)",
		fetch.Fetched, len(req.Tracks), fetch.FailedBatches)

	ranking := score.Rank(*req.InputFinalScore, req.Tracks)

	respondJSON(w, http.StatusOK, map[string]any{
		"tracks":  ranking.Ranked,
		"skipped": ranking.Skipped,
	})
}

// MoodGroups clusters candidate tracks into named mood groups
// (POST /mood-groups).
func (h *Handlers) MoodGroups(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tracks) == 0 {
		respondError(w, http.StatusBadRequest, "no tracks to group")
		return
	}

	token := h.bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	source := h.catalog(r.Context(), token)
	fetch := source.FetchAudioFeatures(r.Context(), req.Tracks)
	log.Printf("web: fetched features for %d of %d tracks (%d failed batches)",
		fetch.Fetched, len(req.Tracks), fetch.FailedBatches)

	groups, outliers := moodgroups.Detect(req.Tracks, moodgroups.DefaultConfig())

	respondJSON(w, http.StatusOK, map[string]any{
		"groups":   groups,
		"outliers": outliers,
	})
}

// bearerToken returns the access token from the Authorization header,
// falling back to the caller's session. A session outlives its Spotify
// access token, so an expired session token is refreshed and the new one
// stored back before use.
func (h *Handlers) bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok && after != "" {
		return after
	}

	session := h.sessions.GetFromRequest(r)
	if session == nil || session.Token == nil {
		return ""
	}
	if session.Token.Valid() {
		return session.Token.AccessToken
	}

	refreshed, err := h.refresh(r.Context(), session.Token)
	if err != nil {
		log.Printf("web: refreshing token for session %s: %v", session.ID, err)
		return ""
	}
	h.sessions.UpdateToken(r.Context(), session.ID, refreshed)
	return refreshed.AccessToken
}

// allowedFile reports whether the filename has an accepted audio extension.
// The extension check is case-insensitive.
func allowedFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
