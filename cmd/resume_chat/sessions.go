package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat-agent/internal/config"
	"github.com/jonathan/resume-chat-agent/internal/store"
)

var sessionsCommand = &cobra.Command{
	Use:   "sessions",
	Short: "List stored chat sessions or print one transcript",
	Long: `Lists recent conversations from the transcript database. With --id the full transcript of one conversation is printed instead.

Session IDs can be passed to 'resume_chat chat --resume' to continue from the stored snapshot.`,
	RunE: runSessionsCmd,
}

var (
	sessionsDatabaseURL string
	sessionsID          string
	sessionsLimit       int
)

func init() {
	sessionsCommand.Flags().StringVar(&sessionsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	sessionsCommand.Flags().StringVar(&sessionsID, "id", "", "Conversation ID to print as a transcript")
	sessionsCommand.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum sessions to list")

	rootCmd.AddCommand(sessionsCommand)
}

func runSessionsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.Config{DatabaseURL: sessionsDatabaseURL}
	cfg.ApplyEnv()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if sessionsID != "" {
		return printTranscript(ctx, st, sessionsID)
	}
	return printSessionList(ctx, st, sessionsLimit)
}

func printSessionList(ctx context.Context, st *store.Store, limit int) error {
	conversations, err := st.ListConversations(ctx, limit)
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Println("No stored sessions.")
		return nil
	}

	for _, c := range conversations {
		summary := c.JDSummary
		if len(summary) > 60 {
			summary = summary[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%s  %-7s %s  %s\n",
			c.ID, c.Status, c.CreatedAt.Format("2006-01-02 15:04"), summary)
	}
	return nil
}

func printTranscript(ctx context.Context, st *store.Store, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid conversation id: %w", err)
	}

	messages, err := st.GetMessages(ctx, id)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Println("No messages stored for this conversation.")
		return nil
	}

	for _, msg := range messages {
		fmt.Fprintf(os.Stdout, "[%s] %s\n%s\n\n",
			msg.Timestamp.Format("15:04:05"), strings.ToUpper(string(msg.Role)), msg.Content)
	}
	return nil
}
