package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-chat-agent/internal/agent"
	"github.com/jonathan/resume-chat-agent/internal/config"
	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/observability"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze",
	Short: "Run the first alignment analysis over every resume section",
	Long: `Scores each resume section against the job description summary in parallel and prints an alignment overview.

With --output the analyzed state is written back as an initial state document, ready for 'resume_chat chat --state'.`,
	RunE: runAnalyzeCmd,
}

// analyzeConcurrency bounds parallel model calls.
const analyzeConcurrency = 4

var (
	analyzeConfigPath string
	analyzeStatePath  string
	analyzeAPIKey     string
	analyzeReplayDir  string
	analyzeOutput     string
	analyzeVerbose    bool
)

func init() {
	analyzeCommand.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	analyzeCommand.Flags().StringVarP(&analyzeStatePath, "state", "s", "", "Path to the initial conversation state JSON (required)")
	analyzeCommand.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	analyzeCommand.Flags().StringVar(&analyzeReplayDir, "replay", "", "Directory of recorded responses; runs without credentials")
	analyzeCommand.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the analyzed state document to this path")
	analyzeCommand.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if analyzeConfigPath != "" {
		loaded, err := config.LoadConfig(analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	if cmd.Flags().Changed("state") {
		cfg.InitialState = analyzeStatePath
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = analyzeAPIKey
	}
	if cmd.Flags().Changed("replay") {
		cfg.ReplayDir = analyzeReplayDir
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = analyzeVerbose
	}
	cfg.ApplyEnv()
	cfg = cfg.MergeWithDefaults(config.Config{MaxMessages: config.DefaultMaxMessages})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.InitialState == "" {
		return fmt.Errorf("--state is required (via flag or config)")
	}

	log, err := buildLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	state, err := config.LoadInitialState(cfg.InitialState)
	if err != nil {
		return err
	}

	client, err := buildClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("analyze requires an API key or --replay directory")
	}
	defer func() { _ = client.Close() }()

	gateway := decision.NewGateway(client, log)
	ag := agent.New(gateway, log, agent.Options{Verbose: cfg.Verbose})

	// Analyze every section that has content, in parallel.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyzeConcurrency)
	for _, section := range types.AllSections {
		if _, ok := state.ResumeSections[section]; !ok {
			continue
		}
		g.Go(func() error {
			analysis, err := ag.AnalyzeSection(gctx, state, section)
			if err != nil {
				log.Error("section analysis failed",
					zap.String("section", string(section)), zap.Error(err))
				return fmt.Errorf("analysis of %s failed: %w", section, err)
			}
			mu.Lock()
			state.SectionObjects[section] = analysis
			state.RecommendedAnswers[section] = make([]string, len(analysis.RecommendedQuestions))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSectionScores(state.SectionObjects)
	if cfg.Verbose {
		for _, section := range types.AllSections {
			if analysis := state.SectionObjects[section]; analysis != nil {
				printer.PrintSectionAnalysis(section, analysis)
			}
		}
	}

	if analyzeOutput != "" {
		if err := writeStateDoc(analyzeOutput, state); err != nil {
			return err
		}
		fmt.Printf("Analyzed state written to %s\n", analyzeOutput)
	}
	return nil
}

// writeStateDoc serializes the analyzed state in the initial-state document
// layout so it can seed a chat session.
func writeStateDoc(path string, state *types.ConversationState) error {
	doc := struct {
		JDSummary      string                                   `json:"jd_summary"`
		ResumeSections map[types.Section]json.RawMessage        `json:"resume_sections"`
		ResumeSchema   map[types.Section]json.RawMessage        `json:"resume_schema,omitempty"`
		SectionObjects map[types.Section]*types.SectionAnalysis `json:"section_objects,omitempty"`
	}{state.JDSummary, state.ResumeSections, state.ResumeSchema, state.SectionObjects}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state document: %w", err)
	}
	return nil
}
