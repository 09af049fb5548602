// Command mood-matcher runs the mood matcher API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/calebtn/go-mood-matcher/internal/config"
	"github.com/calebtn/go-mood-matcher/internal/db"
	"github.com/calebtn/go-mood-matcher/internal/embedding"
	"github.com/calebtn/go-mood-matcher/internal/mood"
	"github.com/calebtn/go-mood-matcher/internal/sentiment"
	"github.com/calebtn/go-mood-matcher/internal/transcribe"
	"github.com/calebtn/go-mood-matcher/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	vocab, err := embedding.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}
	log.Printf("loaded vocabulary: %d words, %d dimensions", vocab.Len(), vocab.Dim())

	predictor, err := mood.Load(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("loading mood predictor: %w", err)
	}
	if predictor.InputDim() != vocab.Dim() {
		return fmt.Errorf("mood predictor expects %d-dimensional input, vocabulary provides %d",
			predictor.InputDim(), vocab.Dim())
	}

	transcriber := transcribe.NewClient(transcribe.Config{
		BaseURL: cfg.Transcription.BaseURL,
		Model:   cfg.Transcription.Model,
		APIKey:  cfg.OpenAIAPIKey,
		Timeout: cfg.Transcription.Timeout(),
	})

	classifier := sentiment.NewClient(sentiment.Config{
		BaseURL:  cfg.Sentiment.BaseURL,
		Model:    cfg.Sentiment.Model,
		APIToken: cfg.HFAPIToken,
		Timeout:  cfg.Sentiment.Timeout(),
	})

	// Sessions live in Postgres when a database is configured, in memory
	// otherwise.
	var sessions web.SessionManager
	if cfg.DatabaseURL != "" {
		database, err := db.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		sessions = web.NewDBSessionStore(database)
		log.Printf("using database-backed sessions")

		go cleanupSessions(database)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:           cfg.Addr,
		ClientID:       cfg.SpotifyID,
		ClientSecret:   cfg.SpotifySecret,
		RedirectURI:    cfg.RedirectURI,
		FrontendOrigin: cfg.FrontendOrigin,
		Vocabulary:     vocab,
		Predictor:      predictor,
		Transcriber:    transcriber,
		Classifier:     classifier,
		Sessions:       sessions,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// cleanupSessions periodically removes expired sessions. It runs for the
// life of the process.
func cleanupSessions(database *db.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		n, err := database.Sessions().DeleteExpired(context.Background())
		if err != nil {
			log.Printf("session cleanup: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("session cleanup: removed %d expired sessions", n)
		}
	}
}
