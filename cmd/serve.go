package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/framereview/config"
	"github.com/user/framereview/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review API over HTTP",
	Long: `Serve the local comment store over the review JSON API so other
reviewers can use it with --backend remote.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := localStore()
		if err != nil {
			return err
		}
		defer store.Close()

		srv := server.New(server.Config{
			Addr:    config.GetString("server.addr"),
			Service: store,
			Logger:  logger,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()
		fmt.Printf("Serving review API on http://%s\n", srv.Addr())

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			return err
		case <-quit:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
