package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/james-see/codecomposer/pkg/api"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (default from PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort == "" {
		servePort = cfg.Port
	}

	enabled, err := api.InitSentry(cfg, version)
	if err != nil {
		logger.Warn("failed to initialize Sentry", "error", err)
	}
	if enabled {
		defer api.Flush()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := newComposer()
	if err != nil {
		return err
	}
	opts := []api.Option{api.WithComposer(c), api.WithLogger(logger)}
	if enabled {
		opts = append(opts, api.WithSentry())
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, api.WithHistory(store))
	}

	logger.Info("starting server", "port", servePort, "swagger", "http://localhost:"+servePort+"/swagger/index.html")
	return api.NewServer(opts...).Run(servePort)
}
