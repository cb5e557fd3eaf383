package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultFallbackErrorMessage = "Something went wrong. Please try again."

type Config struct {
	AppName              string
	Env                  string
	Build                string
	Debug                bool
	TestMode             bool
	BackendURL           string
	TokenFile            string
	RequestTimeout       time.Duration
	RollbarToken         string
	FallbackErrorMessage string
	Hostname             string
}

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the upper-cased ENV (DEV by default): DEV_BACKENDURL, PROD_TOKENFILE...
// A `config/.env.<env>` file next to the working directory is loaded first when it exists.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("backendURL", "http://localhost:8000/api")
	v.SetDefault("tokenFile", defaultTokenFile())
	v.SetDefault("requestTimeout", 30*time.Second)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("fallbackErrorMessage", DefaultFallbackErrorMessage)
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	hostname, _ := os.Hostname()
	return &Config{
		AppName:              v.GetString("appName"),
		Env:                  env,
		Build:                v.GetString("build"),
		Debug:                v.GetBool("debug"),
		TestMode:             v.GetBool("testMode"),
		BackendURL:           strings.TrimRight(v.GetString("backendURL"), "/"),
		TokenFile:            v.GetString("tokenFile"),
		RequestTimeout:       v.GetDuration("requestTimeout"),
		RollbarToken:         v.GetString("rollbarToken"),
		FallbackErrorMessage: v.GetString("fallbackErrorMessage"),
		Hostname:             hostname,
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "masomo", "token")
}
