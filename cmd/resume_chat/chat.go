package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/agent"
	"github.com/jonathan/resume-chat-agent/internal/config"
	"github.com/jonathan/resume-chat-agent/internal/decision"
	"github.com/jonathan/resume-chat-agent/internal/observability"
	"github.com/jonathan/resume-chat-agent/internal/store"
	"github.com/jonathan/resume-chat-agent/internal/types"
)

var chatCommand = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive resume editing session",
	Long: `Runs the conversational loop: general questions and routing in chat mode, section-scoped editing with targeted questions once a section is selected.

Type '/exit' inside a section to return to general chat, and 'quit' to end the session.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runChatCmd,
}

var (
	chatConfigPath  string
	chatStatePath   string
	chatAPIKey      string
	chatDatabaseURL string
	chatReplayDir   string
	chatMaxMessages int
	chatResumeID    string
	chatVerbose     bool
)

func init() {
	chatCommand.Flags().StringVar(&chatConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	chatCommand.Flags().StringVarP(&chatStatePath, "state", "s", "", "Path to the initial conversation state JSON (required)")
	chatCommand.Flags().StringVar(&chatAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	chatCommand.Flags().StringVar(&chatDatabaseURL, "db-url", "", "PostgreSQL connection URL for transcripts (optional, defaults to DATABASE_URL env var)")
	chatCommand.Flags().StringVar(&chatReplayDir, "replay", "", "Directory of recorded responses; runs without credentials")
	chatCommand.Flags().IntVar(&chatMaxMessages, "max-messages", 0, "History bound before old messages are dropped")
	chatCommand.Flags().StringVar(&chatResumeID, "resume", "", "Conversation ID to resume from its stored snapshot (requires --db-url)")
	chatCommand.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(chatCommand)
}

func runChatCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.InitialState == "" && chatResumeID == "" {
		return fmt.Errorf("--state is required (via flag or config), unless resuming with --resume")
	}

	log, err := buildLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client, err := buildClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	gateway := decision.NewGateway(client, log)
	printer := observability.NewPrinter(os.Stdout)
	ag := agent.New(gateway, log, agent.Options{Printer: printer, Verbose: cfg.Verbose})
	dispatcher := agent.NewDispatcher(ag, log)

	st := openStore(ctx, cfg.DatabaseURL, log)
	if st != nil {
		defer st.Close()
	}

	state, conversationID, err := startSession(ctx, cfg, st, log)
	if err != nil {
		return err
	}
	if st != nil && conversationID == uuid.Nil {
		conversationID, err = st.CreateConversation(ctx, state.JDSummary)
		if err != nil {
			log.Warn("failed to create conversation record, continuing without storage", zap.Error(err))
			st = nil
		}
	}
	if st != nil {
		defer func() {
			if err := st.EndConversation(ctx, conversationID); err != nil {
				log.Warn("failed to mark conversation ended", zap.Error(err))
			}
		}()
	}

	// Opening turn: no user message yet, the router greets with a gap summary.
	// A resumed session already has history and skips the greeting.
	if len(state.Context) == 0 {
		if err := runTurn(ctx, dispatcher, state, "", cfg.MaxMessages, st, conversationID, log); err != nil {
			return err
		}
	} else {
		printReply(state)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "/quit" {
			fmt.Println("Goodbye!")
			break
		}

		if err := runTurn(ctx, dispatcher, state, line, cfg.MaxMessages, st, conversationID, log); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// runTurn drives one turn through the dispatcher, prints the reply, bounds
// the history, and persists the transcript when storage is available.
func runTurn(ctx context.Context, dispatcher *agent.Dispatcher, state *types.ConversationState, userText string, maxMessages int, st *store.Store, conversationID uuid.UUID, log *zap.Logger) error {
	before := len(state.Context)
	if err := dispatcher.Turn(ctx, state, userText); err != nil {
		return err
	}

	printReply(state)

	if state.TrimContext(maxMessages) {
		log.Debug("history trimmed", zap.Int("max_messages", maxMessages))
	}

	if st != nil {
		persistTurn(ctx, st, conversationID, state, before, log)
	}
	return nil
}

func printReply(state *types.ConversationState) {
	reply := state.LastAssistantText()
	if reply == "" {
		return
	}
	if state.InSection() {
		fmt.Printf("\nCurrent section: %s\n%s\n", *state.CurrentSection, reply)
		return
	}
	fmt.Printf("\n%s\n", reply)
}

// persistTurn saves the messages this turn appended plus a fresh snapshot.
// Storage errors are logged and otherwise ignored.
func persistTurn(ctx context.Context, st *store.Store, conversationID uuid.UUID, state *types.ConversationState, before int, log *zap.Logger) {
	start := before
	if start > len(state.Context) {
		// History was trimmed past the turn boundary; save everything stored.
		start = 0
	}
	for _, msg := range state.Context[start:] {
		if err := st.SaveMessage(ctx, conversationID, msg); err != nil {
			log.Warn("failed to save message", zap.Error(err))
		}
	}
	if err := st.SaveSnapshot(ctx, conversationID, state); err != nil {
		log.Warn("failed to save state snapshot", zap.Error(err))
	}
}

// startSession produces the conversation state: either a stored snapshot
// when resuming, or a freshly loaded initial state document.
func startSession(ctx context.Context, cfg config.Config, st *store.Store, log *zap.Logger) (*types.ConversationState, uuid.UUID, error) {
	if chatResumeID != "" {
		if st == nil {
			return nil, uuid.Nil, fmt.Errorf("--resume requires a reachable database (--db-url or DATABASE_URL)")
		}
		id, err := uuid.Parse(chatResumeID)
		if err != nil {
			return nil, uuid.Nil, fmt.Errorf("invalid conversation id: %w", err)
		}
		snap, err := st.LoadSnapshot(ctx, id)
		if err != nil {
			return nil, uuid.Nil, err
		}
		if snap == nil {
			return nil, uuid.Nil, fmt.Errorf("no snapshot stored for conversation %s", id)
		}
		log.Info("resumed conversation", zap.String("id", id.String()))
		return snap, id, nil
	}

	state, err := config.LoadInitialState(cfg.InitialState)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return state, uuid.Nil, nil
}

// resolveConfig merges config file, CLI flags, environment, and defaults in
// that priority order.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if chatConfigPath != "" {
		loaded, err := config.LoadConfig(chatConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("state") {
		cfg.InitialState = chatStatePath
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = chatAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = chatDatabaseURL
	}
	if cmd.Flags().Changed("replay") {
		cfg.ReplayDir = chatReplayDir
	}
	if cmd.Flags().Changed("max-messages") {
		cfg.MaxMessages = chatMaxMessages
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = chatVerbose
	}

	cfg.ApplyEnv()
	cfg = cfg.MergeWithDefaults(config.Config{MaxMessages: config.DefaultMaxMessages})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
