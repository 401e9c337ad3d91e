package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbooth01/cli2ansible/internal/app"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/httpapi"
)

func newServeCommand(container *app.Container) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := addr
			if listenAddr == "" {
				listenAddr = container.Config.Server.Addr
			}

			server := httpapi.NewServer(container.IngestService, container.CompileService, container.CleanService, container.Logger)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-stop
				container.Logger.Info("shutting down", nil)
				_ = server.Shutdown()
			}()

			container.Logger.Info("serving HTTP API", map[string]interface{}{
				"addr": listenAddr,
			})
			return server.Listen(listenAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
