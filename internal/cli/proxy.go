package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/sitevoice/internal/devproxy"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

func newProxyCmd() *cobra.Command {
	var target, listen string

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run the local development proxy",
		Long: `Run a local proxy that forwards /api requests to the backend. Requests
outside /api are answered with 404.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				target = viper.GetString("proxy.target")
			}
			if listen == "" {
				listen = viper.GetString("proxy.listen")
			}

			log := logger.New(logger.Config{Level: "info", Format: "console"})
			p, err := devproxy.New(target, log)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           p,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithFields(map[string]interface{}{
					"listen": listen,
					"target": p.Target(),
				}).Info("Dev proxy listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("proxy server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "backend URL (default "+devproxy.DefaultTarget+")")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default localhost:8080)")

	return cmd
}
