package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spigell/lawyer-matcher/internal/ai"
	"github.com/spigell/lawyer-matcher/internal/ai/gemini"
	"github.com/spigell/lawyer-matcher/internal/engine"
	"github.com/spigell/lawyer-matcher/internal/logger"
	"github.com/spigell/lawyer-matcher/internal/matches"
	"github.com/spigell/lawyer-matcher/internal/ranker"
	"github.com/spigell/lawyer-matcher/internal/retry"
	"github.com/spigell/lawyer-matcher/internal/roster"
	"github.com/spigell/lawyer-matcher/internal/secrets"
	"github.com/spigell/lawyer-matcher/internal/source"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptOwnQuery = "Describe what you are looking for"
	PromptYes      = "Yes"
	PromptNo       = "No"

	sourceTagBiographies = "biographies"
	sourceTagPractice    = "practice"

	defaultNameField = "Name"
)

// exampleQueries are offered when no --query flag is given.
var exampleQueries = []string{
	"I need a lawyer with trademark experience who can start work soon",
	"Looking for someone with employment law experience to help with HR policies and contracts",
	"Need a lawyer experienced with startups and financing",
	"Who would be best for drafting and negotiating SaaS agreements?",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lawyer-matcher main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("query", "q", "", "run a single query and exit instead of the interactive loop")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the lawyer-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Sources == nil || config.Sources.Biographies == nil || config.Sources.Practice == nil {
		logger.Fatal("both roster files are required under sources.biographies and sources.practice")
	}

	resolution, err := loadAndResolve(config.Sources, logger)
	if err != nil {
		logger.Fatal("loading rosters", zap.Error(err))
	}

	logger.Info("resolved rosters",
		zap.Int("profiles", len(resolution.Profiles)),
		zap.Int("unmatched_biographies", len(resolution.UnmatchedA)),
		zap.Int("unmatched_practice", len(resolution.UnmatchedB)),
	)

	if len(resolution.Profiles) == 0 {
		logger.Info("exiting", zap.String("reason", "no identities matched across the two rosters"))
		return
	}

	embedder := prepareEmbedder(config.Embeddings, logger)
	index := ranker.NewIndex(resolution.Profiles, embedder, logger)

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building the generative backend",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	eng := engine.New(generator, engineConfig(config.Engine), logger)

	profiles := make(map[string]*roster.Profile, len(resolution.Profiles))
	for _, p := range resolution.Profiles {
		profiles[p.Key] = p
	}

	diagnosticsBase := matches.Diagnostics{
		UnmatchedA: len(resolution.UnmatchedA),
		UnmatchedB: len(resolution.UnmatchedB),
	}

	if query := strings.TrimSpace(cmd.Flag("query").Value.String()); query != "" {
		if err := runQuery(ctx, eng, index, profiles, diagnosticsBase, query, logger); err != nil {
			logger.Fatal("query failed", zap.Error(err))
		}
		return
	}

	for {
		query, err := pickQuery()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := runQuery(ctx, eng, index, profiles, diagnosticsBase, query, logger); err != nil {
			logger.Fatal("query failed", zap.Error(err))
		}

		again := promptui.Select{
			Label: "Run another query?",
			Items: []string{PromptYes, PromptNo},
		}

		if _, answer, err := again.Run(); err != nil || answer == PromptNo {
			logger.Info("exiting", zap.String("reason", "done"))
			return
		}
	}
}

func loadAndResolve(cfg *SourcesConfig, logger *zap.Logger) (*roster.Resolution, error) {
	bios, err := source.LoadCSV(cfg.Biographies.File, sourceTagBiographies)
	if err != nil {
		return nil, err
	}

	practice, err := source.LoadCSV(cfg.Practice.File, sourceTagPractice)
	if err != nil {
		return nil, err
	}

	resolver := roster.NewResolver(
		nameField(cfg.Biographies),
		nameField(cfg.Practice),
		logger,
	)

	return resolver.Resolve(bios, practice), nil
}

func nameField(cfg *SourceConfig) string {
	if field := strings.TrimSpace(cfg.NameField); field != "" {
		return field
	}
	return defaultNameField
}

// prepareEmbedder builds the semantic ranking backend. Any problem here is a
// degraded mode, never fatal: the index ranks lexically without it.
func prepareEmbedder(cfg *EmbeddingsConfig, logger *zap.Logger) ranker.Embedder {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "embeddings api key",
		Env:  cfg.APIKeyEnv,
	})
	if err != nil {
		logger.Warn("skipping semantic ranking", zap.Error(err))
		return nil
	}

	client, err := ranker.NewOpenAIClient(ranker.OpenAIConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  apiKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Warn("skipping semantic ranking", zap.Error(err))
		return nil
	}

	return client
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required under ai.gemini")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithBackendFields(log, "gemini", cfg.Gemini.Model)

	return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, genLogger)
}

func engineConfig(cfg *EngineConfig) engine.Config {
	if cfg == nil {
		return engine.Config{Retry: retry.Default()}
	}

	return engine.Config{
		BatchBudget: cfg.BatchBudget,
		Retry: retry.Policy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
		},
		MaxLogLength: cfg.MaxLogLength,
	}
}

// pickQuery offers the canned example queries plus a free-text prompt.
func pickQuery() (string, error) {
	queryPrompt := promptui.Select{
		Label: "How can we help you find the right lawyer?",
		Items: append(exampleQueries, PromptOwnQuery),
	}

	_, selected, err := queryPrompt.Run()
	if err != nil {
		return "", err
	}

	if selected != PromptOwnQuery {
		return selected, nil
	}

	freeText := promptui.Prompt{
		Label: "Describe your needs",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("query must not be empty")
			}
			return nil
		},
	}

	return freeText.Run()
}

func runQuery(ctx context.Context, eng *engine.Engine, index *ranker.Index, profiles map[string]*roster.Profile, base matches.Diagnostics, query string, logger *zap.Logger) error {
	logger.Info("running the query", zap.String("query", query))

	result, err := eng.Run(ctx, index, query)
	if err != nil {
		return err
	}

	printResult(result, profiles, base)
	return nil
}

// profileDetails pulls the optional display columns out of a profile's loose
// field map.
type profileDetails struct {
	Availability string `mapstructure:"availability"`
	Education    string `mapstructure:"education"`
}

func printResult(result *engine.Result, profiles map[string]*roster.Profile, base matches.Diagnostics) {
	if len(result.Recommendations) == 0 {
		fmt.Println("No matching lawyers found. Try rephrasing your request.")
	}

	for _, rec := range result.Recommendations {
		fmt.Printf("%d. %s\n", rec.Rank, rec.Name)
		fmt.Printf("   Expertise: %s\n", rec.Expertise)
		fmt.Printf("   Why: %s\n", rec.Reason)

		availability := rec.Availability
		education := rec.Education
		if profile, ok := profiles[rec.Key]; ok && (availability == "" || education == "") {
			var details profileDetails
			if err := profile.Decode(&details); err == nil {
				if availability == "" {
					availability = details.Availability
				}
				if education == "" {
					education = details.Education
				}
			}
		}

		if availability != "" {
			fmt.Printf("   Availability: %s\n", availability)
		}
		if education != "" {
			fmt.Printf("   Education: %s\n", education)
		}
		fmt.Println()
	}

	diag := result.Diagnostics
	diag.UnmatchedA = base.UnmatchedA
	diag.UnmatchedB = base.UnmatchedB

	fmt.Printf("diagnostics: failed_batches=%d dropped_malformed=%d dropped_hallucinated=%d unmatched=%d/%d\n",
		diag.FailedBatches, diag.DroppedMalformed, diag.DroppedHallucinated, diag.UnmatchedA, diag.UnmatchedB)
}
