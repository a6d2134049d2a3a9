package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpang/roomedit/internal/cli"
	"github.com/fpang/roomedit/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the planning tool over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpserver.Run(cmd.Context(), version)
	},
}

var checkKeyCmd = &cobra.Command{
	Use:   "check-key",
	Short: "Validate the Gemini API key",
	Run: func(cmd *cobra.Command, args []string) {
		cli.InitGeminiClient(cmd.Context(), modelFlag)
		fmt.Println("API key is valid")
	},
}
