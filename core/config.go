package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		MaxUploadSize      int64 // bytes
	}

	dbConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	blobConfig struct {
		Backend string // memory | b2 | s3
		Bucket  string

		B2AccountID string
		B2AppKey    string

		S3Region          string
		S3Endpoint        string
		S3AccessKeyID     string
		S3SecretAccessKey string
	}

	classifierConfig struct {
		Backend string // http | sample
		URL     string
		APIKey  string
		Timeout time.Duration
	}

	mailConfig struct {
		SendgridAPIKey   string
		DefaultFromName  string
		DefaultFromEmail string
	}

	submissionConfig struct {
		Policy string // multiple | latest | single
	}

	Config struct {
		AppName         string
		Build           string
		Env             string // DEV (local; default), TEST, QA, PROD
		Debug           bool
		TestMode        bool
		SecretKey       string
		RollbarToken    string
		FrontendBaseURL string

		Server     serverConfig
		Database   dbConfig
		Blob       blobConfig
		Classifier classifierConfig
		Mail       mailConfig
		Submission submissionConfig
	}
)

func (c dbConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.Mail.DefaultFromName, Address: c.Mail.DefaultFromEmail}
}

// NewConfig loads the app configuration from the environment (and `config/.env.<env>` if present).
// Environment variables are prefixed by the current ENV, eg: DEV_DATABASE_HOST, PROD_SECRET_KEY.
func NewConfig() *Config {
	v := viper.New()

	v.SetDefault("debug", true)
	v.SetDefault("app_name", "ClarityAI")
	v.SetDefault("build", "develop")
	v.SetDefault("secret_key", "kq3#p8-l1z(x=0!w@h7^c$2m9v&e6r+t4y_u5i)o")
	v.SetDefault("frontend_base_url", "http://localhost:5173")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debug_host", ":4000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.jwt_expiration_delta", time.Hour)
	v.SetDefault("server.max_upload_size", int64(10<<20))

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "clarity")
	v.SetDefault("database.user", "clarity")
	v.SetDefault("database.disable_tls", true)

	v.SetDefault("blob.backend", "memory")
	v.SetDefault("blob.bucket", "clarity-uploads")
	v.SetDefault("blob.s3_region", "us-east-1")

	v.SetDefault("classifier.backend", "http")
	v.SetDefault("classifier.timeout", time.Minute)

	v.SetDefault("mail.default_from_name", "ClarityAI")
	v.SetDefault("mail.default_from_email", "noreply@localhost")

	v.SetDefault("submission.policy", "multiple")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("test_mode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		AppName:         v.GetString("app_name"),
		Build:           v.GetString("build"),
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("test_mode"),
		SecretKey:       v.GetString("secret_key"),
		RollbarToken:    v.GetString("rollbar_token"),
		FrontendBaseURL: v.GetString("frontend_base_url"),
	}

	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debug_host")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwt_expiration_delta")
	conf.Server.MaxUploadSize = v.GetInt64("server.max_upload_size")

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetString("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.admin_user")
	conf.Database.AdminPassword = v.GetString("database.admin_password")
	conf.Database.DisableTLS = v.GetBool("database.disable_tls")

	conf.Blob.Backend = v.GetString("blob.backend")
	conf.Blob.Bucket = v.GetString("blob.bucket")
	conf.Blob.B2AccountID = v.GetString("blob.b2_account_id")
	conf.Blob.B2AppKey = v.GetString("blob.b2_app_key")
	conf.Blob.S3Region = v.GetString("blob.s3_region")
	conf.Blob.S3Endpoint = v.GetString("blob.s3_endpoint")
	conf.Blob.S3AccessKeyID = v.GetString("blob.s3_access_key_id")
	conf.Blob.S3SecretAccessKey = v.GetString("blob.s3_secret_access_key")

	conf.Classifier.Backend = v.GetString("classifier.backend")
	conf.Classifier.URL = v.GetString("classifier.url")
	conf.Classifier.APIKey = v.GetString("classifier.api_key")
	conf.Classifier.Timeout = v.GetDuration("classifier.timeout")

	conf.Mail.SendgridAPIKey = v.GetString("mail.sendgrid_api_key")
	conf.Mail.DefaultFromName = v.GetString("mail.default_from_name")
	conf.Mail.DefaultFromEmail = v.GetString("mail.default_from_email")

	conf.Submission.Policy = v.GetString("submission.policy")

	return conf
}
