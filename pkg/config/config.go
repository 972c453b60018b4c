// Package config loads service settings from an optional YAML file, then the
// environment (including a local .env file).
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string `yaml:"addr"`
	CalibrationFile string `yaml:"calibration_file"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`

	OCR      OCRConfig      `yaml:"ocr"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Relay    RelayConfig    `yaml:"relay"`
	Debug    DebugConfig    `yaml:"debug"`
	Watch    WatchConfig    `yaml:"watch"`
}

type OCRConfig struct {
	Language  string        `yaml:"language"`
	Tessdata  string        `yaml:"tessdata"`
	Padding   int           `yaml:"padding"`
	BlockSize int           `yaml:"block_size"`
	Offset    float64       `yaml:"offset"`
	Timeout   time.Duration `yaml:"timeout"`
	MinHeight int           `yaml:"min_height"`
}

type AuthConfig struct {
	// JWTSecret signs operator tokens.
	JWTSecret string `yaml:"jwt_secret"`
	// OperatorPasswordHash is a bcrypt hash; when empty calibration writes are open.
	OperatorPasswordHash string `yaml:"operator_password_hash"`
}

type DatabaseConfig struct {
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RelayConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Number  string        `yaml:"number"`
	Delay   time.Duration `yaml:"delay"`
	Timeout time.Duration `yaml:"timeout"`
}

type DebugConfig struct {
	Dir   string      `yaml:"dir"`
	MinIO MinIOConfig `yaml:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type WatchConfig struct {
	Dir             string `yaml:"dir"`
	ProcessedDir    string `yaml:"processed_dir"`
	Workers         int    `yaml:"workers"`
	MaxHashDistance int    `yaml:"max_hash_distance"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		Addr:            ":8000",
		CalibrationFile: "calibration.json",
		MaxUploadBytes:  10 << 20,
		OCR: OCRConfig{
			Language:  "eng",
			Padding:   5,
			BlockSize: 11,
			Offset:    2,
			Timeout:   10 * time.Second,
		},
		Auth:     AuthConfig{JWTSecret: "dev-insecure-secret-change"},
		Database: DatabaseConfig{AutoMigrate: true},
		Relay: RelayConfig{
			Delay:   6 * time.Second,
			Timeout: 15 * time.Second,
		},
		Debug: DebugConfig{MinIO: MinIOConfig{Bucket: "bingo-debug"}},
		Watch: WatchConfig{Dir: "screenshots", Workers: 1, MaxHashDistance: 2},
	}
}

// Load reads path (skipped when it does not exist), loads ./.env, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	LoadDotEnv(".env")
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.CalibrationFile, "CALIBRATION_FILE")
	setString(&cfg.OCR.Language, "OCR_LANGUAGE")
	setString(&cfg.OCR.Tessdata, "TESSDATA_PREFIX")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.OperatorPasswordHash, "OPERATOR_PASSWORD_HASH")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Relay.URL, "RELAY_URL")
	setString(&cfg.Relay.APIKey, "RELAY_API_KEY")
	setString(&cfg.Relay.Number, "RELAY_NUMBER")
	setString(&cfg.Debug.Dir, "DEBUG_DIR")
	setString(&cfg.Debug.MinIO.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Debug.MinIO.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Debug.MinIO.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Debug.MinIO.Bucket, "MINIO_BUCKET")
	setString(&cfg.Watch.Dir, "WATCH_DIR")
	setString(&cfg.Watch.ProcessedDir, "WATCH_PROCESSED_DIR")

	for _, f := range []func() error{
		func() error { return setInt(&cfg.OCR.Padding, "OCR_PADDING") },
		func() error { return setInt(&cfg.OCR.BlockSize, "OCR_BLOCK_SIZE") },
		func() error { return setInt(&cfg.OCR.MinHeight, "OCR_MIN_HEIGHT") },
		func() error { return setInt(&cfg.Watch.Workers, "WATCH_WORKERS") },
		func() error { return setInt(&cfg.Watch.MaxHashDistance, "WATCH_MAX_HASH_DISTANCE") },
		func() error { return setInt64(&cfg.MaxUploadBytes, "MAX_UPLOAD_BYTES") },
		func() error { return setFloat(&cfg.OCR.Offset, "OCR_OFFSET") },
		func() error { return setDuration(&cfg.OCR.Timeout, "OCR_TIMEOUT") },
		func() error { return setDuration(&cfg.Relay.Delay, "RELAY_DELAY") },
		func() error { return setDuration(&cfg.Relay.Timeout, "RELAY_TIMEOUT") },
		func() error { return setBool(&cfg.Debug.MinIO.UseSSL, "MINIO_USE_SSL") },
		func() error { return setBool(&cfg.Database.AutoMigrate, "DB_AUTO_MIGRATE") },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// setBool accepts true/1/yes and false/0/no, case-insensitively.
func setBool(dst *bool, key string) error {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return nil
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return nil
}

// LoadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func LoadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.Trim(strings.TrimSpace(line[eq+1:]), `"'`)
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
