package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driving/api"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the JSON API used by the web frontend.

Every /api request must carry the caller's owner ID in the X-Owner-ID header.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{needsApp: "true"},
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr, "+domain.DefaultServerAddr+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if documentService == nil || similarService == nil || refinementService == nil || questionService == nil {
		return errors.New("generation services not configured")
	}

	addr, frontend := domain.DefaultServerAddr, domain.DefaultFrontendURL
	if appSettings != nil {
		addr, frontend = appSettings.Server.Addr, appSettings.Server.FrontendURL
	}
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := api.NewServer(addr, frontend, &api.Services{
		Documents:  documentService,
		Similar:    similarService,
		Refinement: refinementService,
		Questions:  questionService,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("API listening on %s\n", addr)
	return server.Run(ctx)
}
