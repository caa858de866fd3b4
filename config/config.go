package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "https://brandonkz.github.io/beaconmarket"
	DefaultDialingCode = "27"
)

/**** MARK: Listing store backends ****/
const (
	STORE_GORM     = "gorm"
	STORE_SUPABASE = "supabase"
)

type Configuration struct {
	ApiPort string `json:"api_port" yaml:"api_port"`
	LogPath string `json:"log_path" yaml:"log_path"`

	Database string `json:"database" yaml:"database"` // "sqlite3" or "postgres"
	DbPath   string `json:"db_path" yaml:"db_path"`   // sqlite file
	DbHost   string `json:"db_host" yaml:"db_host"`
	DbPort   string `json:"db_port" yaml:"db_port"`
	DbUser   string `json:"db_user" yaml:"db_user"`
	DbName   string `json:"db_name" yaml:"db_name"`
	DbPass   string `json:"db_pass" yaml:"db_pass"`
	DbLog    bool   `json:"db_log" yaml:"db_log"`

	AutoMigrate bool `json:"automigrate" yaml:"automigrate"`

	// ListingStore selects where listings live: "gorm" (the database
	// above) or "supabase" (PostgREST over HTTP).
	ListingStore string `json:"listing_store" yaml:"listing_store"`
	Supabase     struct {
		URL     string `json:"url" yaml:"url"`
		AnonKey string `json:"anon_key" yaml:"anon_key"`
		Table   string `json:"table" yaml:"table"`
	} `json:"supabase" yaml:"supabase"`

	WhatsApp struct {
		VerifyToken   string `json:"verify_token" yaml:"verify_token"`
		AppSecret     string `json:"app_secret" yaml:"app_secret"`
		AccessToken   string `json:"access_token" yaml:"access_token"`
		PhoneNumberID string `json:"phone_number_id" yaml:"phone_number_id"`
		WabaID        string `json:"waba_id" yaml:"waba_id"`
		ApiVersion    string `json:"api_version" yaml:"api_version"`
		DryRun        bool   `json:"dry_run" yaml:"dry_run"` // do not send, only record replies
	} `json:"whatsapp" yaml:"whatsapp"`

	OpenAI struct {
		ApiKey string `json:"api_key" yaml:"api_key"`
		Model  string `json:"model" yaml:"model"`
	} `json:"openai" yaml:"openai"`

	Bot struct {
		BaseURL     string `json:"base_url" yaml:"base_url"`
		DialingCode string `json:"dialing_code" yaml:"dialing_code"`
		RateLimit   int    `json:"rate_limit" yaml:"rate_limit"`
		RateWindow  int    `json:"rate_window_seconds" yaml:"rate_window_seconds"`
	} `json:"bot" yaml:"bot"`

	AdminToken  string `json:"admin_token" yaml:"admin_token"`
	CORSOrigins string `json:"cors_origins" yaml:"cors_origins"`
}

// Get loads the configuration and stops the process when it cannot.
func Get(path string) Configuration {
	c, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

// Load reads path (JSON, or YAML for .yaml/.yml) when it exists, then a .env
// file, then environment overrides, and finally fills defaults. An empty
// path or a missing file is not an error.
func Load(path string) (Configuration, error) {
	var c Configuration

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, b, &c); err != nil {
				return c, err
			}
		case !os.IsNotExist(err):
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env is optional, real environment variables win over it
	_ = godotenv.Load()

	applyEnv(&c)
	applyDefaults(&c)
	return c, nil
}

func decode(path string, b []byte, c *Configuration) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(c *Configuration) {
	setString(&c.ApiPort, "PORT")
	setString(&c.LogPath, "LOG_PATH")
	setString(&c.Database, "DATABASE")
	setString(&c.DbPath, "DB_PATH")
	setString(&c.DbHost, "DB_HOST")
	setString(&c.DbPort, "DB_PORT")
	setString(&c.DbUser, "DB_USER")
	setString(&c.DbName, "DB_NAME")
	setString(&c.DbPass, "DB_PASS")
	setBool(&c.AutoMigrate, "AUTOMIGRATE")

	setString(&c.ListingStore, "LISTING_STORE")
	setString(&c.Supabase.URL, "SUPABASE_URL")
	setString(&c.Supabase.AnonKey, "SUPABASE_ANON_KEY")

	setString(&c.WhatsApp.VerifyToken, "WEBHOOK_VERIFY_TOKEN")
	setString(&c.WhatsApp.AppSecret, "WEBHOOK_APP_SECRET")
	setString(&c.WhatsApp.AccessToken, "WHATSAPP_ACCESS_TOKEN")
	setString(&c.WhatsApp.PhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID")
	setString(&c.WhatsApp.WabaID, "WHATSAPP_WABA_ID")
	setString(&c.WhatsApp.ApiVersion, "WHATSAPP_API_VERSION")
	setBool(&c.WhatsApp.DryRun, "POC_NO_WHATSAPP")

	setString(&c.OpenAI.ApiKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")

	setString(&c.Bot.BaseURL, "BASE_URL")
	setString(&c.Bot.DialingCode, "DIALING_CODE")

	setString(&c.AdminToken, "ADMIN_TOKEN")
	setString(&c.CORSOrigins, "CORS_ORIGINS")
}

func applyDefaults(c *Configuration) {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.DbPath == "" {
		c.DbPath = "db/database.db"
	}
	if c.ListingStore == "" {
		c.ListingStore = STORE_GORM
	}
	if c.Supabase.Table == "" {
		c.Supabase.Table = "listings"
	}
	if c.WhatsApp.ApiVersion == "" {
		c.WhatsApp.ApiVersion = "v24.0"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4.1-mini"
	}
	if c.Bot.BaseURL == "" {
		c.Bot.BaseURL = DefaultBaseURL
	}
	c.Bot.BaseURL = strings.TrimRight(c.Bot.BaseURL, "/")
	if c.Bot.DialingCode == "" {
		c.Bot.DialingCode = DefaultDialingCode
	}
	if c.Bot.RateLimit <= 0 {
		c.Bot.RateLimit = 5
	}
	if c.Bot.RateWindow <= 0 {
		c.Bot.RateWindow = 60
	}
	if c.CORSOrigins == "" {
		c.CORSOrigins = "*"
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
