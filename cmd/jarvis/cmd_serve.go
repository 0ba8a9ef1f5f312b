package main

import (
	"context"
	"errors"

	"github.com/DominicRaj03/Gen-AI---QA/internal/export"
	"github.com/DominicRaj03/Gen-AI---QA/internal/webapi"
	"github.com/DominicRaj03/Gen-AI---QA/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		port      int
		noBrowser bool
		logPath   string
		saveDir   string
		blob      bool
		origins   []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over HTTP",
		Long: `Start a local HTTP server exposing one session as a JSON API, with a
small form at /. The server binds to 127.0.0.1 only.

Endpoints:
  GET  /api/health              GET  /api/stages
  GET  /api/requirement         PUT  /api/requirement
  POST /api/requirement/fetch   POST /api/stages/{kind}
  GET  /api/artifacts           GET  /api/artifacts/{kind}
  POST /api/data                POST /api/export/pdf
  GET  /api/export/csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.Server.Port
			}

			runner, err := newRunner(cfg, logPath)
			if err != nil {
				return err
			}

			var sink export.Sink
			if blob || saveDir != "" {
				if sink, err = newSink(cfg, blob, saveDir); err != nil {
					closeRunner(runner)
					return err
				}
			}

			sess := webapi.NewSession(runner)
			srv, err := webserver.New(webserver.Config{
				Port:           port,
				Session:        sess,
				Sink:           sink,
				AllowedOrigins: origins,
				NoBrowser:      noBrowser,
			})
			if err != nil {
				closeRunner(runner)
				return err
			}

			// The session is closed only after the server has drained, and
			// under the session lock, so a stage still running finishes and is
			// logged before session_complete.
			serveErr := srv.ListenAndServe(cmd.Context())
			return errors.Join(serveErr, sess.Close(context.Background()))
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from .jarvis.yaml, 8080)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open a browser")
	cmd.Flags().StringVar(&logPath, "log", "", "Write an NDJSON session log to this file")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "Also save exported PDFs to this directory")
	cmd.Flags().BoolVar(&blob, "blob", false, "Also upload exported PDFs to Azure Blob Storage")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "Origins allowed to call the API cross-origin")

	return cmd
}
