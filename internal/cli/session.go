package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/roach88/wikisparql/internal/config"
	"github.com/roach88/wikisparql/internal/endpoint"
	"github.com/roach88/wikisparql/internal/engine"
	"github.com/roach88/wikisparql/internal/store"
)

// session holds the resources one command works with.
type session struct {
	cfg   *config.Config
	store *store.Store
	cache *endpoint.Cache
	conn  *endpoint.HTTPConnection
}

// openSession opens the database (when it exists) and, if withEndpoint is
// set, the endpoint connection. Call close when done.
func openSession(cfg *config.Config, withEndpoint bool) (*session, error) {
	s := &session{cfg: cfg}

	st, err := openExistingStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	s.store = st

	if !withEndpoint {
		return s, nil
	}
	if cfg.Endpoint.QueryURL == "" {
		s.close()
		return nil, &LoadError{Code: ErrCodeNoEndpoint, Message: "no endpoint configured (use --endpoint or endpoint.query_url)"}
	}

	opts := []endpoint.Option{endpoint.WithTimeout(cfg.Endpoint.Timeout)}
	if cfg.Cache.Enabled {
		cache, err := endpoint.OpenCache(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			s.close()
			return nil, &LoadError{Code: ErrCodeCache, Message: fmt.Sprintf("open response cache: %v", err)}
		}
		s.cache = cache
		opts = append(opts, endpoint.WithCache(cache))
	}
	s.conn = endpoint.NewHTTPConnection(cfg.Endpoint.QueryURL, opts...)
	return s, nil
}

// openExistingStore opens the database at path. A missing file yields a
// nil store: labels, concepts and stored IRIs are then simply unknown.
func openExistingStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("database not found, continuing without it", "path", path)
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDatabase, Message: fmt.Sprintf("open database %s: %v", path, err)}
	}
	return st, nil
}

// newEngine builds an engine wired to the session resources.
func (s *session) newEngine() *engine.Engine {
	vocab := s.cfg.Vocab()
	opts := []engine.Option{
		engine.WithCompilerOptions(s.cfg.CompilerOptions()),
		engine.WithDefaultGraph(s.cfg.Endpoint.DefaultGraph),
		engine.WithDefaultLimit(s.cfg.Engine.DefaultLimit),
		engine.WithIgnoreQueryErrors(s.cfg.Engine.IgnoreQueryErrors),
	}
	if s.store != nil {
		opts = append(opts,
			engine.WithResolver(engine.ChainResolver{s.store, engine.IRIResolver{Vocabulary: vocab}}),
			engine.WithLabels(s.store),
			engine.WithConcepts(s.store.Concepts(vocab)),
		)
	}

	// A nil *HTTPConnection must not end up as a non-nil interface.
	var conn engine.Connection
	if s.conn != nil {
		conn = s.conn
	}
	return engine.New(conn, vocab, opts...)
}

func (s *session) close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Warn("failed to close response cache", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}
}
