package cmd

import (
	"github.com/spf13/cobra"

	"yousearch/internal/logger"
	"yousearch/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve searches over HTTP",
	Long: `Serve searches over HTTP.

  GET  /api/search?q=...&format=json|text
  POST /api/search {"query": "...", "format": "json"}
  GET  /api/health`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	srv := server.NewServer(newBackend(appConfig, log), serveAddr,
		server.WithDemo(appConfig.Demo),
		server.WithLogger(log.WithName("server")),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down HTTP server")
		return srv.Stop()
	}
}
