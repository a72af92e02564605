package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/mandl/internal/providers"
	"github.com/brogergvhs/mandl/internal/settings"

	"gopkg.in/yaml.v3"
)

const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
	EngineHTTP     = "http"
)

type Config struct {
	Output   string `yaml:"output"`
	Engine   string `yaml:"engine"`
	Headless bool   `yaml:"headless"`
	Debug    bool   `yaml:"debug"`
	Scope    string `yaml:"scope"`

	Include []string `yaml:"include"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`

	BrowserPath string `yaml:"browser_path"`
	UserDataDir string `yaml:"user_data_dir"`
	NoSandbox   bool   `yaml:"no_sandbox"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Output       string
	Engine       string
	Headless     *bool
	Scope        string
	Include      []string
	Cookie       string
	CookieFile   string
	UserAgent    string
	BrowserPath  string
}

func DefaultConfig() *Config {
	return &Config{
		Output:           ".",
		Engine:           EngineChromedp,
		Headless:         false,
		Debug:            false,
		Scope:            settings.DefaultScope,
		Include:          append([]string(nil), providers.DefaultInclude...),
		Cookie:           "",
		CookieFile:       "",
		UserAgent:        "",
		CloudflareBypass: true,
		BrowserPath:      "",
		UserDataDir:      "",
		NoSandbox:        false,
	}
}

func Path() string {
	return filepath.Join(settings.ConfigRoot(), "config.yaml")
}

func SaveYAML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged layers CLI options over the config file, or over the defaults
// when there is no file or it is ignored.
func LoadMerged(opts Options) (*Config, string, error) {
	return loadMergedFrom(Path(), opts)
}

func loadMergedFrom(path string, opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		return cfg, "(ignored config)", normalize(cfg)
	}

	cfg, err := loadYAML(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
		mergeConfig(cfg, opts)
		return cfg, "(default config in memory)\nRun `mandl config init` to create an actual config\n", normalize(cfg)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
	}

	mergeConfig(cfg, opts)

	return cfg, path, normalize(cfg)
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Engine != "" {
		c.Engine = o.Engine
	}
	if o.Headless != nil {
		c.Headless = *o.Headless
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Scope != "" {
		c.Scope = o.Scope
	}
	if len(o.Include) > 0 {
		c.Include = append(c.Include, o.Include...)
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.BrowserPath != "" {
		c.BrowserPath = o.BrowserPath
	}
}

func normalize(c *Config) error {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Scope == "" {
		c.Scope = settings.DefaultScope
	}

	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	switch c.Engine {
	case "":
		c.Engine = EngineChromedp
	case EngineChromedp, EngineRod, EngineHTTP:
	default:
		return fmt.Errorf("unknown engine %q (want %s, %s or %s)", c.Engine, EngineChromedp, EngineRod, EngineHTTP)
	}

	return nil
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -engine: %s\n", c.Engine)
	fmt.Printf(" -headless: %t\n", c.Headless)
	fmt.Printf(" -scope: %s\n", c.Scope)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if len(c.Include) > 0 {
		fmt.Printf(" -include: %s\n", strings.Join(c.Include, ", "))
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	fmt.Printf(" -cloudflare_bypass: %t\n", c.CloudflareBypass)
	if c.BrowserPath != "" {
		fmt.Printf(" -browser_path: %s\n", c.BrowserPath)
	}
	if c.UserDataDir != "" {
		fmt.Printf(" -user_data_dir: %s\n", c.UserDataDir)
	}
	if c.NoSandbox {
		fmt.Printf(" -no_sandbox: %t\n", c.NoSandbox)
	}
}
