package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:         "mcp",
	Short:       "MCP server commands",
	Long:        `Commands for the Model Context Protocol (MCP) server integration.`,
	Annotations: map[string]string{needsApp: "true"},
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Every tool call acts for the owner given by --owner, or the local owner.

Examples:
  # Stdio mode (default, for Claude Desktop)
  quest mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  quest mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "quest": {
        "command": "/path/to/quest",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Duration("read-header-timeout", mcp.DefaultReadHeaderTimeout, "HTTP mode: header read timeout")
	mcpServeCmd.Flags().Duration("shutdown-timeout", mcp.DefaultShutdownTimeout, "HTTP mode: drain time for in-flight tool calls")
	mcpServeCmd.Flags().Bool("stateless", false, "HTTP mode: serve without MCP sessions")
	mcpServeCmd.Flags().Bool("json-response", false, "HTTP mode: reply with JSON instead of SSE streams")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Documents:  documentService,
		Similar:    similarService,
		Refinement: refinementService,
		Questions:  questionService,
		OwnerID:    owner,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		opts, err := mcpHTTPOptions(cmd)
		if err != nil {
			return err
		}
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr, opts)
	}

	return server.Run(cmd.Context())
}

// mcpHTTPOptions reads the HTTP transport flags.
func mcpHTTPOptions(cmd *cobra.Command) (mcp.HTTPOptions, error) {
	var opts mcp.HTTPOptions
	var err error
	flags := cmd.Flags()
	if opts.ReadHeaderTimeout, err = flags.GetDuration("read-header-timeout"); err != nil {
		return opts, fmt.Errorf("getting read-header-timeout flag: %w", err)
	}
	if opts.ShutdownTimeout, err = flags.GetDuration("shutdown-timeout"); err != nil {
		return opts, fmt.Errorf("getting shutdown-timeout flag: %w", err)
	}
	if opts.Stateless, err = flags.GetBool("stateless"); err != nil {
		return opts, fmt.Errorf("getting stateless flag: %w", err)
	}
	if opts.JSONResponse, err = flags.GetBool("json-response"); err != nil {
		return opts, fmt.Errorf("getting json-response flag: %w", err)
	}
	return opts, nil
}
