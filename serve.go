package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/career-mentor-ai/agent/transport/httpapi"
	configx "github.com/tanpawarit/career-mentor-ai/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long:  `Serves sessions over REST, server-sent events and websockets, plus /metrics for Prometheus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpCfg, err := configx.New[httpapi.Config]("HTTP")
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			httpCfg.Addr = addr
		}

		a, err := newApp(cmd, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := httpapi.NewHandler(a.orchestrator, *httpCfg, promhttp.Handler())
		return httpapi.ListenAndServe(ctx, *httpCfg, handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address, overrides HTTP_ADDR")
}
