package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	errs "sdsscraper/pkg/errors"
)

// Rendering engines understood by the render package
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
	EngineHTTP     = "http"
)

// Extraction modes understood by the extract package
const (
	ModeRegex = "regex"
	ModeDOM   = "dom"
)

const envPrefix = "SDSSCRAPER_"

// Config holds all configuration options for the scraper
type Config struct {
	// Listing pages to walk
	Site SiteConfig `yaml:"site" json:"site"`

	// Browser used to render listing pages
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Link extraction settings
	Extract ExtractConfig `yaml:"extract" json:"extract"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig describes the paginated literature library.
// Pages in [StartPage, EndPage) are fetched.
type SiteConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	StartPage int    `yaml:"start_page" json:"start_page"`
	EndPage   int    `yaml:"end_page" json:"end_page"`
}

// BrowserConfig holds rendering engine configuration
type BrowserConfig struct {
	Engine       string        `yaml:"engine" json:"engine"`
	Headless     bool          `yaml:"headless" json:"headless"`
	WindowWidth  int           `yaml:"window_width" json:"window_width"`
	WindowHeight int           `yaml:"window_height" json:"window_height"`
	SettleDelay  time.Duration `yaml:"settle_delay" json:"settle_delay"`
	PageTimeout  time.Duration `yaml:"page_timeout" json:"page_timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
}

// ExtractConfig holds link extraction configuration
type ExtractConfig struct {
	Mode string `yaml:"mode" json:"mode"`
}

// OutputConfig holds output file and directory configuration
type OutputConfig struct {
	HTMLFile          string `yaml:"html_file" json:"html_file"`
	PDFDirectory      string `yaml:"pdf_directory" json:"pdf_directory"`
	SanitizeFilenames bool   `yaml:"sanitize_filenames" json:"sanitize_filenames"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	UserAgent           string        `yaml:"user_agent" json:"user_agent"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the values the scraper has always used
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:   "https://www.bio-rad.com/en-us/literature-library?facets_query=&page=",
			StartPage: 0,
			EndPage:   10,
		},
		Browser: BrowserConfig{
			Engine:       EngineChromedp,
			Headless:     true,
			WindowWidth:  1920,
			WindowHeight: 1080,
			SettleDelay:  0,
			PageTimeout:  90 * time.Second,
		},
		Extract: ExtractConfig{
			Mode: ModeRegex,
		},
		Output: OutputConfig{
			HTMLFile:          "bio-rad-msds.html",
			PDFDirectory:      "PDFs",
			SanitizeFilenames: false,
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 20,
			DownloadTimeout:     2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var problems []error

	if baseURL := os.Getenv(envPrefix + "BASE_URL"); baseURL != "" {
		c.Site.BaseURL = baseURL
	}
	if v := os.Getenv(envPrefix + "START_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Errorf("%sSTART_PAGE: %w", envPrefix, err))
		} else {
			c.Site.StartPage = n
		}
	}
	if v := os.Getenv(envPrefix + "END_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Errorf("%sEND_PAGE: %w", envPrefix, err))
		} else {
			c.Site.EndPage = n
		}
	}

	if engine := os.Getenv(envPrefix + "ENGINE"); engine != "" {
		c.Browser.Engine = strings.ToLower(engine)
	}
	if headless := os.Getenv(envPrefix + "HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) != "false"
	}

	if mode := os.Getenv(envPrefix + "EXTRACT_MODE"); mode != "" {
		c.Extract.Mode = strings.ToLower(mode)
	}

	if htmlFile := os.Getenv(envPrefix + "HTML_FILE"); htmlFile != "" {
		c.Output.HTMLFile = htmlFile
	}
	if outputDir := os.Getenv(envPrefix + "OUTPUT_DIR"); outputDir != "" {
		c.Output.PDFDirectory = outputDir
	}

	if concurrent := os.Getenv(envPrefix + "CONCURRENT_DOWNLOADS"); concurrent != "" {
		n, err := strconv.Atoi(concurrent)
		if err != nil {
			problems = append(problems, fmt.Errorf("%sCONCURRENT_DOWNLOADS: %w", envPrefix, err))
		} else {
			c.Download.ConcurrentDownloads = n
		}
	}

	if logLevel := os.Getenv(envPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv(envPrefix + "LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(problems...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".sdsscraper.yaml",
		".sdsscraper.yml",
		filepath.Join(home, ".config", "sdsscraper", "config.yaml"),
		filepath.Join(home, ".config", "sdsscraper", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var problems []error

	if c.Site.BaseURL == "" {
		problems = append(problems, errors.New("base URL is required"))
	}
	if c.Site.StartPage < 0 {
		problems = append(problems, errors.New("start page cannot be negative"))
	}
	if c.Site.EndPage < c.Site.StartPage {
		problems = append(problems, errors.New("end page must not be before start page"))
	}

	validEngines := map[string]bool{
		EngineChromedp: true, EngineRod: true, EngineHTTP: true,
	}
	if !validEngines[strings.ToLower(c.Browser.Engine)] {
		problems = append(problems, fmt.Errorf("invalid browser engine %q", c.Browser.Engine))
	}
	if c.Browser.PageTimeout <= 0 {
		problems = append(problems, errors.New("page timeout must be positive"))
	}
	if c.Browser.SettleDelay < 0 {
		problems = append(problems, errors.New("settle delay cannot be negative"))
	}

	if m := strings.ToLower(c.Extract.Mode); m != ModeRegex && m != ModeDOM {
		problems = append(problems, fmt.Errorf("invalid extract mode %q", c.Extract.Mode))
	}

	if c.Output.HTMLFile == "" {
		problems = append(problems, errors.New("HTML accumulation file is required"))
	}
	if c.Output.PDFDirectory == "" {
		problems = append(problems, errors.New("PDF directory is required"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		problems = append(problems, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 200 {
		problems = append(problems, errors.New("concurrent downloads should not exceed 200"))
	}
	if c.Download.DownloadTimeout <= 0 {
		problems = append(problems, errors.New("download timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, errors.New("invalid log level"))
	}

	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Site.BaseURL = baseURL
	}
	if start, ok := flags["start-page"].(int); ok {
		c.Site.StartPage = start
	}
	if end, ok := flags["end-page"].(int); ok {
		c.Site.EndPage = end
	}
	if engine, ok := flags["engine"].(string); ok && engine != "" {
		c.Browser.Engine = strings.ToLower(engine)
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if mode, ok := flags["mode"].(string); ok && mode != "" {
		c.Extract.Mode = strings.ToLower(mode)
	}
	if htmlFile, ok := flags["html-file"].(string); ok && htmlFile != "" {
		c.Output.HTMLFile = htmlFile
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.PDFDirectory = outputDir
	}
	if sanitize, ok := flags["sanitize-filenames"].(bool); ok {
		c.Output.SanitizeFilenames = sanitize
	}
	if workers, ok := flags["workers"].(int); ok {
		c.Download.ConcurrentDownloads = workers
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".sdsscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, errs.New(errs.ErrorTypeConfig, "configuration validation failed", err)
	}

	return config, nil
}
