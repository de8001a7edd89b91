package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "lawyer-matcher"
)

type Config struct {
	Sources    *SourcesConfig    `mapstructure:"sources"`
	Engine     *EngineConfig     `mapstructure:"engine"`
	AI         *AIConfig         `mapstructure:"ai"`
	Embeddings *EmbeddingsConfig `mapstructure:"embeddings"`
}

// SourcesConfig names the two roster files. Biographies is the primary
// source; practice fields win when both files carry the same column.
type SourcesConfig struct {
	Biographies *SourceConfig `mapstructure:"biographies"`
	Practice    *SourceConfig `mapstructure:"practice"`
}

type SourceConfig struct {
	File      string `mapstructure:"file"`
	NameField string `mapstructure:"name-field"`
}

type EngineConfig struct {
	BatchBudget    int           `mapstructure:"batch-budget"`
	MaxRetries     int           `mapstructure:"max-retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry-base-delay"`
	MaxLogLength   int           `mapstructure:"max-log-length"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

// EmbeddingsConfig configures the optional semantic ranking backend. When
// disabled or unreachable the ranker falls back to lexical scoring.
type EmbeddingsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	BaseURL     string `mapstructure:"base-url"`
	APIKeyEnv   string `mapstructure:"api-key-env"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout-secs"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "lawyer-matcher matches free-text client requests against the law roster using a generative backend",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is lawyer-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	// Secrets may live in a .env next to the config. A missing file is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
