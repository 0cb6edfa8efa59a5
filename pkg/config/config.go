package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "CARGODESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CARGODESK_DB_DSN"
	EnvDBHost = "CARGODESK_DB_HOST"
	EnvDBUser = "CARGODESK_DB_USER"
	EnvDBName = "CARGODESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	OpenAI       OpenAIConfig
	Attachments  AttachmentsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyFeatureFlags()
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyFeatureFlags resolves flags that override other sections.
// CARGODESK_USE_SQLITE wins over CARGODESK_DB_DRIVER so demo deployments
// only have to set the one variable.
func (c *Config) applyFeatureFlags() {
	if c.FeatureFlags.UseSQLite {
		c.DB.Driver = "sqlite"
		if strings.TrimSpace(c.DB.DSN) == "" {
			c.DB.DSN = "cargodesk.db"
		}
	}
}

type AppConfig struct {
	Env          string `envconfig:"CARGODESK_APP_ENV" required:"true"`
	Port         string `envconfig:"CARGODESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARGODESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARGODESK_LOG_WARN_STACK" default:"false"`
	BasePath     string `envconfig:"CARGODESK_API_BASE_PATH" default:"/api"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// NormalizedBasePath guarantees a leading slash and no trailing slash so the
// router can mount the value directly.
func (a AppConfig) NormalizedBasePath() string {
	p := strings.TrimSpace(a.BasePath)
	if p == "" || p == "/" {
		return "/api"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

type DBConfig struct {
	DSN    string `envconfig:"CARGODESK_DB_DSN"`
	Driver string `envconfig:"CARGODESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARGODESK_DB_HOST"`
	LegacyPort     int    `envconfig:"CARGODESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARGODESK_DB_USER"`
	LegacyPassword string `envconfig:"CARGODESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARGODESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARGODESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARGODESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARGODESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARGODESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARGODESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARGODESK_REDIS_URL"`
	PoolSize     int           `envconfig:"CARGODESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARGODESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARGODESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARGODESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARGODESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The
// idempotency layer degrades to pass-through when it is absent.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARGODESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARGODESK_AUTO_MIGRATE" default:"false"`
	ReadOnly    bool `envconfig:"CARGODESK_READ_ONLY" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CARGODESK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CARGODESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CARGODESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"CARGODESK_GCS_BUCKET_NAME"`
}

// Enabled reports whether blob storage was configured. Attachment uploads
// require it; everything else runs without.
func (g GCSConfig) Enabled() bool {
	return strings.TrimSpace(g.BucketName) != ""
}

type OpenAIConfig struct {
	APIKey string `envconfig:"CARGODESK_OPENAI_API_KEY"`
	Model  string `envconfig:"CARGODESK_OPENAI_MODEL" default:"gpt-4o-mini"`
}

func (o OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

type AttachmentsConfig struct {
	MaxUploadMB  int           `envconfig:"CARGODESK_MAX_UPLOAD_MB" default:"25"`
	FetchTimeout time.Duration `envconfig:"CARGODESK_ATTACHMENT_FETCH_TIMEOUT" default:"30s"`
}

func (a AttachmentsConfig) MaxUploadBytes() int64 {
	return int64(a.MaxUploadMB) * 1024 * 1024
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		// sqlite DSNs are plain file paths; nothing to assemble.
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
