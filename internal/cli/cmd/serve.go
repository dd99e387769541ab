package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"facequiz/internal/api"
	"facequiz/internal/classifier"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the quiz over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runServe,
	}
	cmd.Flags().Int("port", 8080, "Listen port")
	cmd.Flags().StringSlice("origins", nil, "Allowed CORS origins (default any)")
	cmd.Flags().Duration("request-timeout", 60*time.Second, "Per-request timeout")
	_ = viper.BindPFlag("serve.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("serve.origins", cmd.Flags().Lookup("origins"))
	_ = viper.BindPFlag("serve.request_timeout", cmd.Flags().Lookup("request-timeout"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	opts := optionsFrom(cmd)
	ctx := cmd.Context()

	m, err := classifier.Load(ctx, opts)
	if err != nil {
		return exitFor(err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			slog.Warn("close model", "error", cerr)
		}
	}()

	svc := api.NewService(m, preferenceStore(), opts)
	server := api.NewServer(svc, api.ServerOptions{
		Port:           viper.GetInt("serve.port"),
		AllowedOrigins: viper.GetStringSlice("serve.origins"),
		RequestTimeout: viper.GetDuration("serve.request_timeout"),
	})

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")

		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("api server listening", "addr", server.Addr, "classes", m.TotalClasses())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	slog.Info("server stopped")
	return nil
}
