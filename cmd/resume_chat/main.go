// Package main provides the entry point for the conversational resume editor CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_chat",
	Short: "Conversational resume editing assistant",
	Long:  "Resume Chat Agent walks a resume section by section against a target job description: it analyzes alignment, asks targeted questions, and applies schema-validated rewrites through a chat interface.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
