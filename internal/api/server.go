package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"huntbrief/internal/agent"
	"huntbrief/internal/config"
	"huntbrief/internal/feed"
	"huntbrief/internal/models"
	"huntbrief/internal/providers"
	"huntbrief/internal/storage"
	"huntbrief/internal/tools"

	"github.com/gorilla/mux"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	"go.uber.org/zap"
)

type AgentRunner interface {
	Run(ctx context.Context, question string) (agent.Result, error)
}

type Feed interface {
	feed.Source
	TrendingFrom(ctx context.Context, limit int) ([]feed.Product, feed.Origin, error)
}

type ExchangeStore interface {
	Insert(ctx context.Context, e models.Exchange) (string, error)
	ListRecent(ctx context.Context, limit int) ([]models.Exchange, error)
}

type DigestStore interface {
	Upsert(ctx context.Context, d models.Digest) error
	Get(ctx context.Context, digestID string) (models.Digest, error)
}

type CallLogger interface {
	Insert(ctx context.Context, rec storage.LLMCallRecord) error
}

// WorkflowClient is the part of the Temporal client the server uses.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

// Deps are the collaborators behind the routes. Exchanges, Audit, Digests and
// Temporal may be nil; the routes that need them then answer 503.
type Deps struct {
	Agent     AgentRunner
	LLM       providers.LLMProvider
	Feed      Feed
	Exchanges ExchangeStore
	Audit     CallLogger
	Digests   DigestStore
	Temporal  WorkflowClient
}

type Server struct {
	cfg       config.Config
	agent     AgentRunner
	llm       providers.LLMProvider
	feed      Feed
	exchanges ExchangeStore
	audit     CallLogger
	digests   DigestStore
	temporal  WorkflowClient
	logger    *zap.Logger
	closers   []func()
}

func New(cfg config.Config, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		agent:     deps.Agent,
		llm:       deps.LLM,
		feed:      deps.Feed,
		exchanges: deps.Exchanges,
		audit:     deps.Audit,
		digests:   deps.Digests,
		temporal:  deps.Temporal,
		logger:    logger.Named("api"),
	}
}

// NewServer wires the server from configuration. Postgres and Temporal are
// only dialed when their addresses are set.
func NewServer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pm, err := providers.NewManager(cfg, logger)
	if err != nil {
		return nil, err
	}
	src := feed.NewSource(cfg, logger)
	deps := Deps{
		Agent: agent.New(pm, tools.NewProductHuntRegistry(src), agent.Options{
			Model:         cfg.AgentModel,
			Temperature:   cfg.AgentTemperature,
			MaxIterations: cfg.AgentMaxIterations,
		}, logger),
		LLM:  pm,
		Feed: src,
	}

	var closers []func()
	if cfg.StorageEnabled() {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		db, err := storage.NewDB(dialCtx, cfg.PostgresURL)
		cancel()
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		closers = append(closers, db.Close)
		deps.Exchanges = storage.NewExchangeRepo(db)
		deps.Audit = storage.NewLLMAuditRepo(db)
		deps.Digests = storage.NewDigestRepo(db)
	} else {
		logger.Info("postgres_url not set, history and digests are disabled")
	}
	if cfg.TemporalAddress != "" {
		tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, fmt.Errorf("dial temporal: %w", err)
		}
		closers = append(closers, tc.Close)
		deps.Temporal = tc
	}

	s := New(cfg, deps, logger)
	s.closers = closers
	return s, nil
}

// Close releases the database pool and the Temporal client.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	r.HandleFunc("/api/test", s.handleTest).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/agent", s.handleAgent).Methods(http.MethodPost)
	r.HandleFunc("/api/ai-test", s.handleAITest).Methods(http.MethodPost)
	r.HandleFunc("/api/producthunt", s.handleProductHunt).Methods(http.MethodPost)
	r.HandleFunc("/api/products/trending", s.handleTrending).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/digests", s.handleStartDigest).Methods(http.MethodPost)
	r.HandleFunc("/api/digests/{id}", s.handleGetDigest).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	})
	return withCORS(s.withRequestLog(r))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ListenAndServe runs the API until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func ListenAndServe(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	s, err := NewServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("huntbrief api listening",
			zap.String("addr", cfg.APIAddr),
			zap.String("llm_providers", cfg.LLMProviders),
			zap.Bool("storage", cfg.StorageEnabled()),
			zap.Bool("digests", cfg.DigestsEnabled()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	return nil
}
