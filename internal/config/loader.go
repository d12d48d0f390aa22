package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the configuration for the viewer, its data endpoint and the
// graph database connection.
type Config struct {
	Addr          string `koanf:"addr"`
	GraphEndpoint string `koanf:"graph_endpoint"`
	ListEndpoint  string `koanf:"list_endpoint"`
	GraphShell    string `koanf:"graph_shell"`
	ListShell     string `koanf:"list_shell"`
	ReservedKeys  string `koanf:"reserved_keys"`

	Source    string `koanf:"source"`
	GraphFile string `koanf:"graph_file"`
	ListFile  string `koanf:"list_file"`
	ListQuery string `koanf:"list_query"`

	Neo4jURI      string `koanf:"neo4j_uri"`
	Neo4jUser     string `koanf:"neo4j_user"`
	Neo4jPassword string `koanf:"neo4j_password"`
	Neo4jDatabase string `koanf:"neo4j_database"`
}

const (
	SourceNeo4j = "neo4j"
	SourceFile  = "file"
)

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"addr":           ":8080",
		"graph_endpoint": "http://localhost:8080/api/data",
		"list_endpoint":  "http://localhost:8080/api/list",
		"graph_shell":    "",
		"list_shell":     "",
		"reserved_keys":  "guard",
		"source":         SourceNeo4j,
		"graph_file":     "graph.json",
		"list_file":      "list.json",
		"list_query":     "MATCH (n) RETURN properties(n) AS row",
		"neo4j_uri":      "",
		"neo4j_user":     "",
		"neo4j_password": "",
		"neo4j_database": "",
	}
}

// envKey maps GRAPHVIEW_* and NEO4J_* variables to config keys. Anything
// else is ignored.
func envKey(s string) string {
	switch {
	case strings.HasPrefix(s, "GRAPHVIEW_"):
		return strings.ToLower(strings.TrimPrefix(s, "GRAPHVIEW_"))
	case strings.HasPrefix(s, "NEO4J_"):
		return strings.ToLower(s)
	}
	return ""
}

// findConfigFile returns explicit, or graphview.yaml / graphview.yml from
// the working directory if present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"graphview.yaml", "graphview.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadConfig loads configuration from defaults, a YAML config file,
// environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Only flags that were explicitly set take part.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings a data source needs.
func (c Config) Validate() error {
	switch c.Source {
	case SourceNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI environment variable is not set")
		}
	case SourceFile:
		if c.GraphFile == "" && c.ListFile == "" {
			return fmt.Errorf("file source needs graph_file or list_file")
		}
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceNeo4j, SourceFile)
	}
	return nil
}

// LoadEnv loads environment variables from a .env file, searching up the directory tree.
func LoadEnv() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// Found it
			return godotenv.Load(envPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached root
		}
		dir = parent
	}

	// Not found is fine
	return nil
}
