package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds everything read from the environment (or a .env file)
type Settings struct {
	Port    string `mapstructure:"PORT"`
	Env     string `mapstructure:"ENV"`
	LogMode string `mapstructure:"LOG_MODE"`
	LogDir  string `mapstructure:"LOG_DIR"`

	StoreBackend string `mapstructure:"STORE_BACKEND"`
	MongoURI     string `mapstructure:"MONGO_URI"`
	DBName       string `mapstructure:"DB_NAME"`

	FirebaseProjectID         string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsBase64 string `mapstructure:"FIREBASE_CREDENTIALS_BASE64"`
	FirebaseCredentialsFile   string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`

	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	ReportCacheTTL time.Duration `mapstructure:"REPORT_CACHE_TTL"`

	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTLifetime time.Duration `mapstructure:"JWT_LIFETIME"`

	SMSAPIURL   string `mapstructure:"SMS_API_URL"`
	SMSUsername string `mapstructure:"SMS_USERNAME"`
	SMSPassword string `mapstructure:"SMS_PASSWORD"`
	SMSSenderID string `mapstructure:"SMS_SENDER_ID"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	GenAIAPIKey string `mapstructure:"GENAI_API_KEY"`
	GenAIModel  string `mapstructure:"GENAI_MODEL"`

	CascadeStrict bool `mapstructure:"CASCADE_STRICT"`

	// comma separated, added to the local dev origins
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var settingKeys = map[string]interface{}{
	"PORT":                           "8080",
	"ENV":                            "development",
	"LOG_MODE":                       "release",
	"LOG_DIR":                        "logs",
	"STORE_BACKEND":                  "memory",
	"MONGO_URI":                      "",
	"DB_NAME":                        "lexora",
	"FIREBASE_PROJECT_ID":            "",
	"FIREBASE_CREDENTIALS_BASE64":    "",
	"GOOGLE_APPLICATION_CREDENTIALS": "",
	"REDIS_ADDR":                     "",
	"REDIS_PASSWORD":                 "",
	"REDIS_DB":                       0,
	"REPORT_CACHE_TTL":               "5m",
	"JWT_SECRET":                     "",
	"JWT_LIFETIME":                   "72h",
	"SMS_API_URL":                    "https://www.bestsmsbulk.com/bestsmsbulkapi/common/sendSmsWpAPI.php",
	"SMS_USERNAME":                   "",
	"SMS_PASSWORD":                   "",
	"SMS_SENDER_ID":                  "LEXORA",
	"SMTP_HOST":                      "",
	"SMTP_PORT":                      2525,
	"SMTP_USER":                      "",
	"SMTP_PASS":                      "",
	"SMTP_FROM":                      "no-reply@lexora.app",
	"GENAI_API_KEY":                  "",
	"GENAI_MODEL":                    "gemini-2.0-flash",
	"CASCADE_STRICT":                 false,
	"CORS_ALLOWED_ORIGINS":           "",
}

// Load reads .env (when present) and the process environment
func Load() (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, def := range settingKeys {
		v.SetDefault(key, def)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if v.GetString("MONGO_URI") == "" {
		v.Set("MONGO_URI", v.GetString("MONGODB_URI"))
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	s.StoreBackend = strings.ToLower(strings.TrimSpace(s.StoreBackend))
	return &s, nil
}

func (s *Settings) IsDevelopment() bool {
	return s.Env == "development" || s.Env == "dev"
}
