// Package config loads wikisparql configuration.
//
// Values come from four layers, highest priority first: command-line
// flags, WIKISPARQL_* environment variables, the YAML config file
// (wikisparql.yaml) and built-in defaults.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/querysparql"
)

// Defaults.
const (
	DefaultConfigFile   = "wikisparql.yaml"
	DefaultTimeout      = 30 * time.Second
	DefaultCacheTTL     = 10 * time.Minute
	DefaultLimit        = 50
	DefaultFormat       = "text"
	DefaultDatabaseFile = "wikisparql.db"
)

// Config holds all configuration options.
type Config struct {
	Endpoint   EndpointConfig   `koanf:"endpoint"`
	Cache      CacheConfig      `koanf:"cache"`
	Vocabulary VocabularyConfig `koanf:"vocabulary"`
	Compiler   CompilerConfig   `koanf:"compiler"`
	Engine     EngineConfig     `koanf:"engine"`
	Database   string           `koanf:"database"`
	Verbose    bool             `koanf:"verbose"`
	Format     string           `koanf:"format"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// EndpointConfig configures the SPARQL endpoint.
type EndpointConfig struct {
	QueryURL     string        `koanf:"query_url"`
	DefaultGraph string        `koanf:"default_graph"`
	Timeout      time.Duration `koanf:"timeout"`
}

// CacheConfig configures the response cache. An empty Dir keeps the cache
// in memory for the lifetime of the process.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Dir     string        `koanf:"dir"`
	TTL     time.Duration `koanf:"ttl"`
}

// VocabularyConfig holds the IRI bases of the exported wiki.
type VocabularyConfig struct {
	WikiBase     string `koanf:"wiki_base"`
	PropertyBase string `koanf:"property_base"`
}

// CompilerConfig mirrors querysparql.Options.
type CompilerConfig struct {
	SubcategoryInference bool `koanf:"subcategory_inference"`
	MaxConceptDepth      int  `koanf:"max_concept_depth"`
	ReorderByWeight      bool `koanf:"reorder_by_weight"`
}

// EngineConfig configures query execution.
type EngineConfig struct {
	IgnoreQueryErrors bool `koanf:"ignore_query_errors"`
	DefaultLimit      int  `koanf:"default_limit"`
}

// Vocab returns the configured vocabulary.
func (c *Config) Vocab() ir.Vocabulary {
	return ir.Vocabulary{
		WikiBase:     c.Vocabulary.WikiBase,
		PropertyBase: c.Vocabulary.PropertyBase,
	}
}

// CompilerOptions returns the options for query builders.
func (c *Config) CompilerOptions() querysparql.Options {
	return querysparql.Options{
		SubcategoryInference: c.Compiler.SubcategoryInference,
		MaxConceptDepth:      c.Compiler.MaxConceptDepth,
		ReorderByWeight:      c.Compiler.ReorderByWeight,
	}
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if c.Endpoint.QueryURL != "" {
		u, err := url.Parse(c.Endpoint.QueryURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("endpoint.query_url: %q is not an absolute URL", c.Endpoint.QueryURL)
		}
	}
	if c.Endpoint.Timeout <= 0 {
		return fmt.Errorf("endpoint.timeout must be positive, got %s", c.Endpoint.Timeout)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Vocabulary.WikiBase == "" {
		return fmt.Errorf("vocabulary.wiki_base is required")
	}
	if c.Compiler.MaxConceptDepth < 0 {
		return fmt.Errorf("compiler.max_concept_depth must not be negative, got %d", c.Compiler.MaxConceptDepth)
	}
	if c.Engine.DefaultLimit <= 0 {
		return fmt.Errorf("engine.default_limit must be positive, got %d", c.Engine.DefaultLimit)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format: unknown output format %q (expected text or json)", c.Format)
	}
	return nil
}
