package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/awantoch/visitorcount/constants"
	counterhttp "github.com/awantoch/visitorcount/http"
	"github.com/spf13/cobra"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   constants.CmdServe,
		Short: constants.DescServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.HTTP.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port = port
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return counterhttp.StartServer(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&host, "host", constants.DefaultHTTPHost, "listen host")
	cmd.Flags().IntVarP(&port, "port", "p", constants.DefaultHTTPPort, "listen port")
	return cmd
}
