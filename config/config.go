package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Line codes, one per physical production line.
var Lines = []string{"bst1", "bst2", "fst1", "fst2"}

// BstLine is the config block for a board-system-test line: one host, one
// test-log database.
type BstLine struct {
	Hostname string `mapstructure:"hostname"`
	BstDB    string `mapstructure:"bst_db"`
}

// FstLine is the config block for a final-system-test line: one host,
// three per-station test-log databases.
type FstLine struct {
	Hostname string `mapstructure:"hostname"`
	LcdDB    string `mapstructure:"lcd_db"`
	DiagDB   string `mapstructure:"diag_db"`
	KeyDB    string `mapstructure:"key_db"`
}

// Config holds all process configuration. Built once at startup, read-only
// afterwards, and passed explicitly into every component.
type Config struct {
	Port            string `mapstructure:"port"`
	Timezone        string `mapstructure:"timezone"`
	OverfetchFactor int    `mapstructure:"overfetch_factor"`
	WorkerPoolSize  int    `mapstructure:"worker_pool_size"`

	Bst1 BstLine `mapstructure:"bst1"`
	Bst2 BstLine `mapstructure:"bst2"`
	Fst1 FstLine `mapstructure:"fst1"`
	Fst2 FstLine `mapstructure:"fst2"`

	// Resolved at load time.
	ConfigPath string
	DBDir      string
	Location   *time.Location
}

// StoreRef identifies one physical test-log database.
type StoreRef struct {
	Area     string // PCBDG for BST lines, PCBINT for FST lines
	Hostname string
	Path     string
}

// Load reads config.toml plus optional .env/environment overrides. The
// config file and the database directory must already exist; a missing
// one is a startup-fatal condition, never auto-created.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional, only warn
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	configPath := getEnv("CONFIG_PATH", "./config.toml")
	dbDir := getEnv("DB_DIR", "./db")

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s not found: %w", configPath, err)
	}
	if fi, err := os.Stat(dbDir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("database directory %s not found", dbDir)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetDefault("port", "7890")
	v.SetDefault("timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("overfetch_factor", 2)
	v.SetDefault("worker_pool_size", 4)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.OverfetchFactor = getEnvAsInt("OVERFETCH_FACTOR", cfg.OverfetchFactor)
	cfg.ConfigPath = configPath
	cfg.DBDir = dbDir

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.OverfetchFactor < 1 {
		return nil, fmt.Errorf("overfetch_factor must be >= 1, got %d", cfg.OverfetchFactor)
	}

	// Database filenames in the config are relative to db/<line>/.
	cfg.Bst1.BstDB = filepath.Join(dbDir, "bst1", cfg.Bst1.BstDB)
	cfg.Bst2.BstDB = filepath.Join(dbDir, "bst2", cfg.Bst2.BstDB)
	cfg.Fst1.LcdDB = filepath.Join(dbDir, "fst1", cfg.Fst1.LcdDB)
	cfg.Fst1.DiagDB = filepath.Join(dbDir, "fst1", cfg.Fst1.DiagDB)
	cfg.Fst1.KeyDB = filepath.Join(dbDir, "fst1", cfg.Fst1.KeyDB)
	cfg.Fst2.LcdDB = filepath.Join(dbDir, "fst2", cfg.Fst2.LcdDB)
	cfg.Fst2.DiagDB = filepath.Join(dbDir, "fst2", cfg.Fst2.DiagDB)
	cfg.Fst2.KeyDB = filepath.Join(dbDir, "fst2", cfg.Fst2.KeyDB)

	return cfg, nil
}

// Hostname returns the host serving a line.
func (c *Config) Hostname(line string) (string, bool) {
	switch line {
	case "bst1":
		return c.Bst1.Hostname, true
	case "bst2":
		return c.Bst2.Hostname, true
	case "fst1":
		return c.Fst1.Hostname, true
	case "fst2":
		return c.Fst2.Hostname, true
	}
	return "", false
}

// StorePath resolves the database file backing a (line, station) pair.
func (c *Config) StorePath(line, station string) (string, bool) {
	switch {
	case line == "bst1" && station == "BST":
		return c.Bst1.BstDB, true
	case line == "bst2" && station == "BST":
		return c.Bst2.BstDB, true
	case line == "fst1" && station == "LCDLED":
		return c.Fst1.LcdDB, true
	case line == "fst1" && station == "DIAG":
		return c.Fst1.DiagDB, true
	case line == "fst1" && station == "KEYPAD":
		return c.Fst1.KeyDB, true
	case line == "fst2" && station == "LCDLED":
		return c.Fst2.LcdDB, true
	case line == "fst2" && station == "DIAG":
		return c.Fst2.DiagDB, true
	case line == "fst2" && station == "KEYPAD":
		return c.Fst2.KeyDB, true
	}
	return "", false
}

// AllStores lists the 8 physical databases, in the fixed scan order used
// by the cross-store serial-number search.
func (c *Config) AllStores() []StoreRef {
	return []StoreRef{
		{"PCBDG", c.Bst1.Hostname, c.Bst1.BstDB},
		{"PCBDG", c.Bst2.Hostname, c.Bst2.BstDB},
		{"PCBINT", c.Fst1.Hostname, c.Fst1.LcdDB},
		{"PCBINT", c.Fst1.Hostname, c.Fst1.DiagDB},
		{"PCBINT", c.Fst1.Hostname, c.Fst1.KeyDB},
		{"PCBINT", c.Fst2.Hostname, c.Fst2.LcdDB},
		{"PCBINT", c.Fst2.Hostname, c.Fst2.DiagDB},
		{"PCBINT", c.Fst2.Hostname, c.Fst2.KeyDB},
	}
}

// ValidLine reports whether line is a known line code.
func ValidLine(line string) bool {
	for _, l := range Lines {
		if l == line {
			return true
		}
	}
	return false
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
