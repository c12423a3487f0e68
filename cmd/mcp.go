package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docsmith-ai/docsmith/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for Claude Code integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets Claude Code generate and browse documentation natively.
Configure in Claude Code with:

  {
    "mcpServers": {
      "docsmith": { "command": "docsmith", "args": ["mcp"] }
    }
  }

Available tools: docsmith_generate, docsmith_history,
docsmith_get_documentation, docsmith_status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun() error {
	s, err := getHistoryStore()
	if err != nil {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}
	up, err := newUploader()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := mcp.NewServer(s, client, up)
	return srv.ServeStdio(ctx)
}
