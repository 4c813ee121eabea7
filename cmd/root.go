package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/framereview/api"
	"github.com/user/framereview/config"
	"github.com/user/framereview/db"
	"github.com/user/framereview/deps"
	"github.com/user/framereview/logging"
	"github.com/user/framereview/review"
)

var Version = "0.1.0"

var (
	configDir string
	logger    = zerolog.Nop()
	closeLog  = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "framereview",
	Short: "Frame-accurate video review with drawn annotations",
	Long: `framereview plays a video in mpv and lets reviewers leave timestamped
comments on it, optionally with a marked-up still of the current frame.

Features:
  - Draw pen strokes, rectangles and circles over a paused frame
  - Save the drawing merged with the frame as a comment attachment
  - Browse, resolve and delete comments on a seek-bar timeline
  - Share one comment store through the built-in HTTP API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configDir); err != nil {
			return err
		}
		l, closer, err := logging.Setup(viper.GetString("logsDir"), viper.GetString("logLevel"), "framereview")
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		logger, closeLog = l, closer
		logger.Debug().Str("command", cmd.CommandPath()).Msg("starting")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("framereview version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the external programs framereview drives (mpv) are installed and runnable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true
		for _, st := range deps.CheckAll(cmd.Context()) {
			if st.Err != nil {
				fmt.Printf("✗ %s: %v\n", st.Tool.Name, st.Err)
				allGood = false
				continue
			}
			fmt.Printf("✓ %s: %s\n", st.Tool.Name, st.Version)
			fmt.Printf("  %s\n", st.Path)
		}

		fmt.Println()
		if !allGood {
			return fmt.Errorf("some dependencies are missing")
		}
		fmt.Println("All dependencies are installed!")
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config", config.DefaultDir(), "directory containing framereview.yaml")
	pf.String("backend", "", "comment store: local or remote")
	pf.String("api", "", "review API base URL for the remote backend")
	pf.String("db", "", "SQLite database path for the local backend")
	pf.String("socket", "", "mpv IPC socket path")
	pf.String("user", "", "author name for new comments")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	viper.BindPFlag("backend", pf.Lookup("backend"))
	viper.BindPFlag("api.baseUrl", pf.Lookup("api"))
	viper.BindPFlag("store.path", pf.Lookup("db"))
	viper.BindPFlag("mpv.socket", pf.Lookup("socket"))
	viper.BindPFlag("user.name", pf.Lookup("user"))
	viper.BindPFlag("logLevel", pf.Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

// backend is the comment store selected by configuration.
type backend interface {
	review.Service
	ListVideos(ctx context.Context) ([]review.Video, error)
}

// openBackend returns the configured store and a function releasing it.
func openBackend() (backend, func(), error) {
	if config.GetString("backend") == config.BackendRemote {
		c, err := api.NewHTTPClient(config.GetString("api.baseUrl"), logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}
	store, err := localStore()
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

// localStore opens the SQLite store regardless of the backend setting. An
// empty store.path means db.DefaultPath.
func localStore() (*db.Store, error) {
	store, err := db.OpenStore(config.GetString("store.path"), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
