package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// RegionEnv names the environment variable that overrides the region.
const RegionEnv = "TENNIS_REGION"

// DefaultRegion is used when neither config nor environment set one.
const DefaultRegion = "UK"

type Config struct {
	Region   string   `yaml:"region"`
	Sources  Sources  `yaml:"sources"`
	Filters  Filters  `yaml:"filters"`
	Entities Entities `yaml:"entities"`
	Sections Sections `yaml:"sections"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type Sources struct {
	GDELT        GDELTConfig      `yaml:"gdelt"`
	GoogleNews   GoogleNewsConfig `yaml:"google_news"`
	Timeout      string           `yaml:"timeout"`
	RequestDelay string           `yaml:"request_delay"`
	UserAgent    string           `yaml:"user_agent"`
}

type GDELTConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

type GoogleNewsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	MaxEntries int    `yaml:"max_entries"`
}

type Filters struct {
	EnglishHints   []string `yaml:"english_hints"`
	AllowedDomains []string `yaml:"allowed_domains"`
	LowTierTerms   []string `yaml:"low_tier_terms"`
}

type Entities struct {
	Players     []string `yaml:"players"`
	Tournaments []string `yaml:"tournaments"`
	Tags        []string `yaml:"tags"`
	Cap         int      `yaml:"cap"`
}

type Sections struct {
	Stars       StarsSection `yaml:"stars"`
	Gear        ListSection  `yaml:"gear"`
	Improvement ListSection  `yaml:"improvement"`
}

// QueryConfig is one search request.
type QueryConfig struct {
	Query      string `yaml:"query"`
	MaxRecords int    `yaml:"max_records"`
	Hours      int    `yaml:"hours"`
}

type StarsSection struct {
	Strict           QueryConfig `yaml:"strict"`
	Fallback         QueryConfig `yaml:"fallback"`
	MaxItems         int         `yaml:"max_items"`
	FallbackMaxItems int         `yaml:"fallback_max_items"`
}

type ListSection struct {
	Queries     []QueryConfig `yaml:"queries"`
	Broad       QueryConfig   `yaml:"broad"`
	DedupeLimit int           `yaml:"dedupe_limit"`
	MinItems    int           `yaml:"min_items"`
	ShowItems   int           `yaml:"show_items"`
}

type Output struct {
	ReportsDir string `yaml:"reports_dir"`
	DataDir    string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for tennisdigest.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "tennisdigest")
}

// DataDir returns the XDG data directory for tennisdigest.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "tennisdigest")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/tennisdigest/config.yaml > ./config.yaml.
// An empty path with a nil error means no file exists and the built-in
// defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// LoadEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads and parses a config YAML file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	rules := curate.DefaultFilterRules()
	kw := curate.DefaultKeywords()

	cfg := &Config{
		Region: DefaultRegion,
		Sources: Sources{
			GDELT:        GDELTConfig{Enabled: true, BaseURL: "https://api.gdeltproject.org/api/v2/doc/doc"},
			GoogleNews:   GoogleNewsConfig{Enabled: true, BaseURL: "https://news.google.com/rss/search", MaxEntries: 20},
			Timeout:      "20s",
			RequestDelay: "1s",
			UserAgent:    "Mozilla/5.0 (TennisDigest/1.0)",
		},
		Filters: Filters{
			EnglishHints:   rules.EnglishHints,
			AllowedDomains: rules.AllowedDomains,
			LowTierTerms:   rules.LowTierTerms,
		},
		Entities: Entities{
			Players:     kw.Players,
			Tournaments: kw.Tournaments,
			Tags:        kw.Tags,
			Cap:         kw.Cap,
		},
		Sections: defaultSections(),
		Output:   Output{ReportsDir: "reports"},
		Server:   Server{Port: 8000},
		Logging:  Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func defaultSections() Sections {
	return Sections{
		Stars: StarsSection{
			Strict: QueryConfig{
				Query: `tennis AND ("ATP 500" OR "Masters 1000" OR "Grand Slam" OR "WTA 500" OR "WTA 1000" OR ` +
					`"Australian Open" OR Wimbledon OR "US Open" OR "Roland Garros")`,
				MaxRecords: 25,
				Hours:      48,
			},
			Fallback: QueryConfig{
				Query:      `tennis AND ("Grand Slam" OR "Masters 1000" OR ATP OR WTA)`,
				MaxRecords: 20,
				Hours:      72,
			},
			MaxItems:         6,
			FallbackMaxItems: 4,
		},
		Gear: ListSection{
			Queries: []QueryConfig{
				{Query: `("tennis overgrip" OR "overgrip") AND (best OR review OR recommended)`, MaxRecords: 6, Hours: 72},
				{Query: `("tennis string" OR "poly string") AND (best OR review OR tension)`, MaxRecords: 6, Hours: 72},
				{Query: `("tennis shoes") AND (best OR review OR "new model")`, MaxRecords: 6, Hours: 72},
				{Query: `("tennis bag") AND (best OR review OR "new")`, MaxRecords: 6, Hours: 72},
				{Query: `("tennis dampener" OR "vibration dampener") AND (best OR review)`, MaxRecords: 6, Hours: 72},
			},
			Broad:       QueryConfig{Query: `tennis (overgrip OR string OR shoes OR bag OR dampener) (review OR best)`, MaxRecords: 20, Hours: 168},
			DedupeLimit: 15,
			MinItems:    6,
			ShowItems:   10,
		},
		Improvement: ListSection{
			Queries: []QueryConfig{
				{Query: `tennis (serve OR "second serve") (tip OR drill OR coaching)`, MaxRecords: 6, Hours: 168},
				{Query: `tennis (return OR "return of serve") (positioning OR tactic OR tip)`, MaxRecords: 6, Hours: 168},
				{Query: `tennis footwork (drill OR coaching OR "movement")`, MaxRecords: 6, Hours: 168},
				{Query: `tennis tactics ("high percentage" OR pattern OR strategy)`, MaxRecords: 6, Hours: 168},
				{Query: `tennis conditioning ("injury prevention" OR mobility OR strength)`, MaxRecords: 6, Hours: 168},
			},
			Broad:       QueryConfig{Query: `tennis (coaching OR drill OR tactic OR footwork OR mobility OR strength)`, MaxRecords: 25, Hours: 336},
			DedupeLimit: 15,
			MinItems:    6,
			ShowItems:   10,
		},
	}
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// GetRegion returns the region code, letting TENNIS_REGION override the file.
func (c *Config) GetRegion() string {
	if v := strings.TrimSpace(os.Getenv(RegionEnv)); v != "" {
		return strings.ToUpper(v)
	}
	if c.Region != "" {
		return strings.ToUpper(c.Region)
	}
	return DefaultRegion
}

// Timeout returns the per-request network timeout.
func (c *Config) Timeout() time.Duration {
	return parseDuration(c.Sources.Timeout, 20*time.Second)
}

// RequestDelay returns the pause between consecutive search requests.
func (c *Config) RequestDelay() time.Duration {
	return parseDuration(c.Sources.RequestDelay, 0)
}

// FilterRules returns the configured filter lists.
func (c *Config) FilterRules() curate.FilterRules {
	return curate.FilterRules{
		EnglishHints:   c.Filters.EnglishHints,
		AllowedDomains: c.Filters.AllowedDomains,
		LowTierTerms:   c.Filters.LowTierTerms,
	}
}

// Keywords returns the configured entity keywords.
func (c *Config) Keywords() curate.Keywords {
	return curate.Keywords{
		Players:     c.Entities.Players,
		Tournaments: c.Entities.Tournaments,
		Tags:        c.Entities.Tags,
		Cap:         c.Entities.Cap,
	}
}

// ToQuery converts the config entry to a curate.Query.
func (q QueryConfig) ToQuery() curate.Query {
	return curate.Query{Expression: q.Query, MaxRecords: q.MaxRecords, Hours: q.Hours}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
