package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/models"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
)

// MetadataResolver maps a candidate title to normalized movie metadata.
type MetadataResolver interface {
	Resolve(ctx context.Context, title string) (*Movie, error)
}

const (
	defaultTemperature    = float32(0.7)
	defaultMaxTokens      = 1000
	defaultResolveTimeout = 10 * time.Second
)

// OrchestratorConfig tunes turn processing. Zero values use defaults.
type OrchestratorConfig struct {
	Temperature    float32
	MaxTokens      int
	ResolveTimeout time.Duration
}

// Orchestrator runs the end-to-end chat turn pipeline: extraction,
// metadata resolution, prompt assembly, generation, sanitization, and
// history recording.
type Orchestrator struct {
	store          *Store
	resolver       MetadataResolver
	model          ChatModel
	temperature    float32
	maxTokens      int
	resolveTimeout time.Duration
}

// TurnResult is returned to the HTTP layer on a successful turn.
type TurnResult struct {
	Reply     string
	SessionID string
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(store *Store, resolver MetadataResolver, chatModel ChatModel, cfg OrchestratorConfig) *Orchestrator {
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = defaultResolveTimeout
	}
	return &Orchestrator{
		store:          store,
		resolver:       resolver,
		model:          chatModel,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		resolveTimeout: cfg.ResolveTimeout,
	}
}

// NewSessionID mints an opaque session identifier. The caller is
// expected to persist it and send it back on subsequent turns.
func NewSessionID() string {
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// HandleTurn processes one chat turn. On generation failure the session
// is left untouched, so retrying the same turn is safe.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, userMessage string) (*TurnResult, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	titles := ExtractMovieTitles(userMessage)
	movies := o.resolveAll(ctx, titles)
	history := o.store.History(sessionID)

	messages := BuildMessages(history, movies, userMessage)
	log.Printf("chat: session %s, %d candidate(s), %d resolved, %d history message(s)",
		sessionID, len(titles), len(movies), len(history))

	resp, err := o.model.Generate(ctx, messages,
		model.WithTemperature(o.temperature),
		model.WithMaxTokens(o.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}
	reply := Sanitize(strings.TrimSpace(resp.Content))

	o.store.Append(sessionID, models.RoleUser, userMessage)
	o.store.Append(sessionID, models.RoleAssistant, reply)

	return &TurnResult{Reply: reply, SessionID: sessionID}, nil
}

// resolveAll looks up every candidate concurrently. Failed or not-found
// lookups are dropped; survivors keep extraction order.
func (o *Orchestrator) resolveAll(ctx context.Context, titles []string) []*Movie {
	if len(titles) == 0 || o.resolver == nil {
		return nil
	}
	results := make([]*Movie, len(titles))
	var wg sync.WaitGroup
	for i, title := range titles {
		wg.Add(1)
		go func(i int, title string) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.resolveTimeout)
			defer cancel()
			movie, err := o.resolver.Resolve(callCtx, title)
			if err != nil {
				if err != ErrMovieNotFound {
					log.Printf("chat: resolve %q failed: %v", title, err)
				}
				return
			}
			results[i] = movie
		}(i, title)
	}
	wg.Wait()

	movies := make([]*Movie, 0, len(titles))
	for _, m := range results {
		if m != nil {
			movies = append(movies, m)
		}
	}
	return movies
}

// ClearTurn drops the session history, reporting whether one existed.
func (o *Orchestrator) ClearTurn(sessionID string) bool {
	return o.store.Clear(sessionID)
}

// DescribeSession exposes session diagnostics.
func (o *Orchestrator) DescribeSession(sessionID string) SessionDescription {
	return o.store.Describe(sessionID)
}
