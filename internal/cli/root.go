// Package cli provides the Quill command-line interface
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quilldocs/quill/internal/config"
	"github.com/quilldocs/quill/internal/install"
	"github.com/quilldocs/quill/internal/logger"
	"github.com/quilldocs/quill/internal/model"
	"github.com/quilldocs/quill/internal/model/providers/azure"
	"github.com/quilldocs/quill/internal/model/providers/llamacpp"
	"github.com/quilldocs/quill/internal/model/providers/ollama"
	"github.com/quilldocs/quill/internal/model/providers/openai"
)

var (
	// Global flags
	verboseFlag bool
	configFile  string

	// Backend selector flags
	hostedModelFlag     string
	localModelFlag      string
	azureDeploymentFlag string
	ollamaBaseURLFlag   string
	ollamaModelFlag     string

	// Generation flags
	inlineFlag            bool
	commentWithSourceFlag bool
	lineThresholdFlag     int
	regenerateFlag        bool

	// Root command
	rootCmd = &cobra.Command{
		Use:   "quill [path]",
		Short: "Generate doc comments for source code using LLMs",
		Long: `Quill generates natural-language documentation comments for source-code
functions by delegating the language-understanding work to an LLM backend.

It supports hosted chat models, Azure-hosted enterprise deployments, locally
run quantized model files through llama.cpp, and Ollama servers on the local
network. The backend is selected once at startup; files under the given path
are then documented one at a time.`,
		Version: "0.1.0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0])
		},
	}
)

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: .quill/config.yml)")

	rootCmd.Flags().StringVar(&hostedModelFlag, "model", "", "Hosted chat model family (default: gpt-3.5-turbo)")
	rootCmd.Flags().StringVar(&localModelFlag, "local-model", "", "Path to a local model weight file")
	rootCmd.Flags().StringVar(&azureDeploymentFlag, "azure-deployment", "", "Azure deployment name")
	rootCmd.Flags().StringVar(&ollamaBaseURLFlag, "ollama-base-url", "", "Ollama server base URL")
	rootCmd.Flags().StringVar(&ollamaModelFlag, "ollama-model", "", "Ollama model name")

	rootCmd.Flags().BoolVar(&inlineFlag, "inline", false, "Weave inline comments through the method body")
	rootCmd.Flags().BoolVar(&commentWithSourceFlag, "comment-with-source", false, "Return the full method with a header doc comment")
	rootCmd.Flags().IntVar(&lineThresholdFlag, "line-threshold", 0, "Skip functions shorter than this many lines (default: 3)")
	rootCmd.Flags().BoolVar(&regenerateFlag, "regenerate-docstring", false, "Regenerate docstrings that already exist")
}

// loadConfig loads configuration and layers flag overrides on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader().Load(configFile)
	if err != nil {
		return nil, err
	}

	if hostedModelFlag != "" {
		cfg.Model = hostedModelFlag
	}
	if localModelFlag != "" {
		cfg.LocalModel = localModelFlag
	}
	if azureDeploymentFlag != "" {
		cfg.AzureDeployment = azureDeploymentFlag
	}
	if ollamaModelFlag != "" {
		if cfg.Ollama == nil {
			cfg.Ollama = &config.OllamaConfig{}
		}
		cfg.Ollama.Model = ollamaModelFlag
	}
	if ollamaBaseURLFlag != "" {
		if cfg.Ollama == nil {
			cfg.Ollama = &config.OllamaConfig{}
		}
		cfg.Ollama.BaseURL = ollamaBaseURLFlag
	}
	if lineThresholdFlag > 0 {
		cfg.LineThreshold = lineThresholdFlag
	}
	if verboseFlag {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// initBackendProviders registers one provider per backend kind. The local
// provider carries the interactive installer for the native interface.
func initBackendProviders() {
	providers := map[model.BackendKind]model.Factory{
		model.BackendHosted:    openai.NewProvider(),
		model.BackendAzure:     azure.NewProvider(),
		model.BackendOllama:    ollama.NewProvider(),
		model.BackendLocalFile: llamacpp.NewProvider(install.New()),
	}

	for kind, provider := range providers {
		if err := model.RegisterProvider(kind, provider); err != nil {
			if verboseFlag {
				fmt.Fprintf(os.Stderr, "Warning: failed to register provider %s: %v\n", kind, err)
			}
		}
	}
}

// initLogging configures the logger from the loaded configuration
func initLogging(cfg *config.Config) {
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)
}
