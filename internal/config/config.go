package config

import (
	"log"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers understood by Load.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBDriver          string
	MySQLDSN          string
	SQLitePath        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	ResetDB           bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret      string
	AccessTokenTTL time.Duration

	OperatorUsername     string
	OperatorPassword     string
	OperatorPasswordHash string

	SwaggerHost string
}

// Load builds Config from the environment (and an optional .env file) with
// sensible defaults.
func Load() *Config {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "bank_management")
	v.SetDefault("SQLITE_PATH", "bank.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("RESET_DB", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("EMP_USERNAME", "emp_007")
	v.SetDefault("EMP_PASSWORD", "007")

	cfg := &Config{
		ServerPort:           v.GetString("SERVER_PORT"),
		DBDriver:             strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		MySQLDSN:             strings.TrimSpace(v.GetString("MYSQL_DSN")),
		SQLitePath:           v.GetString("SQLITE_PATH"),
		DBMaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime:    getDuration(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ResetDB:              v.GetBool("RESET_DB"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisDB:              v.GetInt("REDIS_DB"),
		RedisPass:            v.GetString("REDIS_PASSWORD"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		AccessTokenTTL:       getDuration(v, "ACCESS_TOKEN_TTL", 30*time.Minute),
		OperatorUsername:     v.GetString("EMP_USERNAME"),
		OperatorPassword:     v.GetString("EMP_PASSWORD"),
		OperatorPasswordHash: strings.TrimSpace(v.GetString("EMP_PASSWORD_HASH")),
		SwaggerHost:          v.GetString("SWAGGER_HOST"),
	}

	if cfg.DBDriver != DriverMySQL && cfg.DBDriver != DriverSQLite {
		log.Printf("Warning: unknown DB_DRIVER %q, defaulting to %s", cfg.DBDriver, DriverMySQL)
		cfg.DBDriver = DriverMySQL
	}

	if cfg.MySQLDSN == "" {
		cfg.MySQLDSN = buildMySQLDSN(
			v.GetString("DB_HOST"),
			v.GetString("DB_USER"),
			v.GetString("DB_PASSWORD"),
			v.GetString("DB_NAME"),
		)
	}

	if cfg.JWTSecret == "change-me" {
		log.Println("Warning: JWT_SECRET not set, using default insecure secret.")
	}

	return cfg
}

// buildMySQLDSN assembles a go-sql-driver DSN; host may carry its own port.
func buildMySQLDSN(host, user, password, dbName string) string {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, "3306")
	}

	mc := mysql.NewConfig()
	mc.User = user
	mc.Passwd = password
	mc.Net = "tcp"
	mc.Addr = addr
	mc.DBName = dbName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: invalid value for %s (%q), defaulting to %s", key, raw, def)
		}
		return def
	}
	return d
}
