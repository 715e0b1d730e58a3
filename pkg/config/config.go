package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable consumed by the service.
	EnvPrefix = "localspot"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LOCALSPOT_DB_DSN"
	EnvDBHost = "LOCALSPOT_DB_HOST"
	EnvDBUser = "LOCALSPOT_DB_USER"
	EnvDBName = "LOCALSPOT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Wallet        WalletConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Storage       StorageConfig
	Media         MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOCALSPOT_APP_ENV" required:"true"`
	Port         string `envconfig:"LOCALSPOT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCALSPOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOCALSPOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOCALSPOT_DB_DSN"`
	Driver string `envconfig:"LOCALSPOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOCALSPOT_DB_HOST"`
	LegacyPort     int    `envconfig:"LOCALSPOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOCALSPOT_DB_USER"`
	LegacyPassword string `envconfig:"LOCALSPOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOCALSPOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOCALSPOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOCALSPOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOCALSPOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOCALSPOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCALSPOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCALSPOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOCALSPOT_REDIS_ADDR"`
	Password     string        `envconfig:"LOCALSPOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOCALSPOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOCALSPOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCALSPOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCALSPOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCALSPOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCALSPOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LOCALSPOT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LOCALSPOT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LOCALSPOT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LOCALSPOT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// WalletConfig tunes the sign-in challenge flow.
type WalletConfig struct {
	ChallengeDomain string        `envconfig:"LOCALSPOT_WALLET_CHALLENGE_DOMAIN" default:"localspot.app"`
	ChallengeTTL    time.Duration `envconfig:"LOCALSPOT_WALLET_CHALLENGE_TTL" default:"5m"`
	HintTTL         time.Duration `envconfig:"LOCALSPOT_WALLET_HINT_TTL" default:"720h"`
}

type AuthRateLimitConfig struct {
	ChallengeWindow       time.Duration `envconfig:"LOCALSPOT_AUTH_RATE_LIMIT_CHALLENGE_WINDOW" default:"1m"`
	ChallengeAddressLimit int           `envconfig:"LOCALSPOT_AUTH_RATE_LIMIT_CHALLENGE_ADDRESS_LIMIT" default:"10"`
	ChallengeIPLimit      int           `envconfig:"LOCALSPOT_AUTH_RATE_LIMIT_CHALLENGE_IP_LIMIT" default:"30"`
	VerifyWindow          time.Duration `envconfig:"LOCALSPOT_AUTH_RATE_LIMIT_VERIFY_WINDOW" default:"1m"`
	VerifyAddressLimit    int           `envconfig:"LOCALSPOT_AUTH_RATE_LIMIT_VERIFY_ADDRESS_LIMIT" default:"5"`
	VerifyIPLimit         int           `envconfig:"LOCALSPOT_AUTH_RATE_LIMIT_VERIFY_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOCALSPOT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOCALSPOT_AUTO_MIGRATE" default:"false"`
}

type StorageConfig struct {
	BucketName        string        `envconfig:"LOCALSPOT_STORAGE_BUCKET_NAME"`
	CredentialsJSON   string        `envconfig:"LOCALSPOT_STORAGE_CREDENTIALS_JSON"`
	CredentialsFile   string        `envconfig:"LOCALSPOT_STORAGE_CREDENTIALS_FILE"`
	UploadURLExpiry   time.Duration `envconfig:"LOCALSPOT_STORAGE_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"LOCALSPOT_STORAGE_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type MediaConfig struct {
	MaxUploadMB       int `envconfig:"LOCALSPOT_MAX_UPLOAD_MB" default:"20"`
	MaxImagesPerPlace int `envconfig:"LOCALSPOT_MEDIA_MAX_IMAGES_PER_PLACE" default:"12"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
