package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/querysparql"
)

// EnvPrefix prefixes every environment variable read by Load.
// A double underscore separates sections:
// WIKISPARQL_ENDPOINT__QUERY_URL -> endpoint.query_url.
const EnvPrefix = "WIKISPARQL_"

// flagKeys maps flag names to config keys. Flags not listed here map to
// their own name with dashes replaced by underscores.
var flagKeys = map[string]string{
	"endpoint":      "endpoint.query_url",
	"graph":         "endpoint.default_graph",
	"timeout":       "endpoint.timeout",
	"cache":         "cache.enabled",
	"cache-dir":     "cache.dir",
	"cache-ttl":     "cache.ttl",
	"wiki-base":     "vocabulary.wiki_base",
	"property-base": "vocabulary.property_base",
	"subcategories": "compiler.subcategory_inference",
	"max-depth":     "compiler.max_concept_depth",
	"reorder":       "compiler.reorder_by_weight",
	"ignore-errors": "engine.ignore_query_errors",
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"endpoint.query_url":             "",
		"endpoint.default_graph":         "",
		"endpoint.timeout":               DefaultTimeout.String(),
		"cache.enabled":                  false,
		"cache.dir":                      "",
		"cache.ttl":                      DefaultCacheTTL.String(),
		"vocabulary.wiki_base":           ir.DefaultWikiBase,
		"vocabulary.property_base":       "",
		"compiler.subcategory_inference": false,
		"compiler.max_concept_depth":     querysparql.DefaultMaxConceptDepth,
		"compiler.reorder_by_weight":     false,
		"engine.ignore_query_errors":     false,
		"engine.default_limit":           DefaultLimit,
		"database":                       DefaultDatabaseFile,
		"verbose":                        false,
		"format":                         DefaultFormat,
	}
}

// Load reads configuration from defaults, the config file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults.
//
// cfgFile may be empty, in which case wikisparql.yaml is used when it
// exists in the working directory. Only flags that were explicitly set
// override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// findConfigFile finds the config file to use.
// Priority: explicit path > wikisparql.yaml > wikisparql.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{DefaultConfigFile, "wikisparql.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey transforms WIKISPARQL_CACHE__TTL into cache.ttl.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}
