package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Manage the videos under review",
}

var videoAddCmd = &cobra.Command{
	Use:   "add <video-file|url>",
	Short: "Register a video in the local store",
	Long: `Register a local file or an http(s) URL in the SQLite store. Adding the
same source twice returns the existing entry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		source, err := videoSource(args[0])
		if err != nil {
			return err
		}

		store, err := localStore()
		if err != nil {
			return err
		}
		defer store.Close()

		v, err := store.AddVideo(cmd.Context(), source, name)
		if err != nil {
			return fmt.Errorf("failed to add video: %w", err)
		}
		fmt.Printf("Video %d: %s\n", v.ID, v.Title())
		return nil
	},
}

var videoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		videos, err := svc.ListVideos(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list videos: %w", err)
		}
		if len(videos) == 0 {
			fmt.Println("No videos found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tADDED\tSOURCE")
		for _, v := range videos {
			added := "-"
			if !v.CreatedAt.IsZero() {
				added = humanize.Time(v.CreatedAt)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", v.ID, v.Title(), v.Type, added, v.URL)
		}
		return w.Flush()
	},
}

// videoSource returns URLs unchanged and local paths made absolute after
// checking they name a file.
func videoSource(arg string) (string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg, nil
	}
	absPath, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("video file not found: %s", absPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a video file: %s", absPath)
	}
	return absPath, nil
}

func init() {
	videoAddCmd.Flags().String("name", "", "display name (defaults to the file name)")

	videoCmd.AddCommand(videoAddCmd)
	videoCmd.AddCommand(videoListCmd)
	rootCmd.AddCommand(videoCmd)
}
