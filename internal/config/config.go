package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends supported for papers, solution pages and avatars.
const (
	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
	StorageB2         = "b2"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseDriver         string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventChannel           string
	JWTSecret              string
	JWTTTL                 time.Duration
	StorageBackend         string
	StorageLocalPath       string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	B2KeyID                string
	B2AppKey               string
	B2Bucket               string
	UploadMaxSizeMB        int
	LoginRateLimit         int
	CORSAllowOrigins       []string
	AccessLog              bool
	SeedUsers              []SeedUser
}

// SeedUser describes an account created when the users table is empty.
type SeedUser struct {
	Username string
	Password string
	Role     string
	Name     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUCONNECT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduConnect API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "10000")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("events.channel", "educonnect")
	v.SetDefault("jwt.ttl", "12h")
	v.SetDefault("storage.backend", StorageLocal)
	v.SetDefault("storage.local_path", "./data/uploads")
	v.SetDefault("cloudinary.folder", "educonnect")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("http.access_log", false)
	v.SetDefault("seed.users", "admin:admin:teacher:Admin,student01:student01:student:Student One")

	ttl, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	seeds, err := ParseSeedUsers(v.GetString("seed.users"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseDriver:         strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventChannel:           v.GetString("events.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 ttl,
		StorageBackend:         strings.ToLower(v.GetString("storage.backend")),
		StorageLocalPath:       v.GetString("storage.local_path"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		B2KeyID:                v.GetString("b2.key_id"),
		B2AppKey:               v.GetString("b2.app_key"),
		B2Bucket:               v.GetString("b2.bucket"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		LoginRateLimit:         v.GetInt("auth.login_rate_limit"),
		CORSAllowOrigins:       splitList(v.GetString("cors.allow_origins")),
		AccessLog:              v.GetBool("http.access_log"),
		SeedUsers:              seeds,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageBackend {
	case StorageLocal, StorageCloudinary, StorageB2:
	default:
		return Config{}, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 10
	}

	return cfg, nil
}

// ParseSeedUsers decodes a comma separated list of username:password:role:name entries.
func ParseSeedUsers(raw string) ([]SeedUser, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	entries := strings.Split(raw, ",")
	users := make([]SeedUser, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid seed user entry %q", entry)
		}
		role := strings.ToLower(strings.TrimSpace(parts[2]))
		if role != "teacher" && role != "student" {
			return nil, fmt.Errorf("invalid seed user role %q", parts[2])
		}
		users = append(users, SeedUser{
			Username: strings.TrimSpace(parts[0]),
			Password: parts[1],
			Role:     role,
			Name:     strings.TrimSpace(parts[3]),
		})
	}

	return users, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
