package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName         string
		SchoolName      string
		Env             string
		Build           string
		Debug           bool
		TestMode        bool
		SecretKey       string
		DefaultPassword string
		Location        *time.Location

		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string
		SMSGatewayDomain string

		Store  StoreConfig
		Server ServerConfig
	}

	StoreConfig struct {
		Driver        string // memory | sqlite | postgres | redis
		DSN           string
		RedisAddr     string
		RedisPassword string
		RedisPrefix   string
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}
)

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased env name, eg. DEV_STORE_DRIVER.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "FeeDesk")
	conf.SetDefault("schoolName", "Sarvodaya School")
	conf.SetDefault("secretKey", "k2v#9q!m4x@dj8$w+0e&p3r)t7y(zb5n^c1l_u6h*ag-fos")
	conf.SetDefault("defaultPassword", "admin")
	conf.SetDefault("timezone", "Local")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("defaultFromEmail", "FeeDesk <noreply@localhost>")
	conf.SetDefault("sms.gatewayDomain", "")
	conf.SetDefault("store.driver", "sqlite")
	conf.SetDefault("store.dsn", "feedesk.db")
	conf.SetDefault("store.redisAddr", "127.0.0.1:6379")
	conf.SetDefault("store.redisPassword", "")
	conf.SetDefault("store.redisPrefix", "feedesk:")
	conf.SetDefault("server.host", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 12*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
		conf.SetDefault("store.driver", "memory")
	case "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	loc, err := time.LoadLocation(conf.GetString("timezone"))
	if err != nil {
		log.Fatalf("config.timezone(%s): %v", conf.GetString("timezone"), err)
	}

	return &Config{
		AppName:          conf.GetString("appName"),
		SchoolName:       conf.GetString("schoolName"),
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		SecretKey:        conf.GetString("secretKey"),
		DefaultPassword:  conf.GetString("defaultPassword"),
		Location:         loc,
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
		SMSGatewayDomain: conf.GetString("sms.gatewayDomain"),
		Store: StoreConfig{
			Driver:        strings.ToLower(conf.GetString("store.driver")),
			DSN:           conf.GetString("store.dsn"),
			RedisAddr:     conf.GetString("store.redisAddr"),
			RedisPassword: conf.GetString("store.redisPassword"),
			RedisPrefix:   conf.GetString("store.redisPrefix"),
		},
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			DebugHost:          conf.GetString("server.debugHost"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: in-memory store, UTC and no external services.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "FeeDesk",
		SchoolName:       "Sarvodaya School",
		Env:              "TEST",
		Build:            "test",
		Debug:            false,
		TestMode:         true,
		SecretKey:        "secret",
		DefaultPassword:  "admin",
		Location:         time.UTC,
		defaultFromEmail: "FeeDesk <noreply@localhost>",
		Store:            StoreConfig{Driver: "memory"},
		Server: ServerConfig{
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

// Getwd tries to find the project root: the closest parent directory holding a go.mod file.
// go-test changes the working directory to the test package being run during tests,
// falls back to the working directory when no go.mod is found (eg. deployed binaries).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
