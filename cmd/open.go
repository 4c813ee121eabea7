package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/framereview/config"
	"github.com/user/framereview/mpv"
	"github.com/user/framereview/pkg/timeutil"
	"github.com/user/framereview/review"
	"github.com/user/framereview/session"
	"github.com/user/framereview/tui"
)

const connectTimeout = 5 * time.Second

var openCmd = &cobra.Command{
	Use:   "open [video-file|url]",
	Short: "Open a video for review",
	Long: `Open a video in mpv and start the review interface. A file or URL is
registered in the local store first; --video opens an already registered
video from either backend.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, _ := cmd.Flags().GetInt64("video")
		start, _ := cmd.Flags().GetString("start")
		if len(args) == 0 && videoID == 0 {
			return errors.New("give a video file or --video")
		}

		startAt, err := timeutil.ParseTimeToSeconds(start)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}

		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		ctx := cmd.Context()
		video, err := resolveVideo(ctx, svc, args, videoID)
		if err != nil {
			return err
		}
		videos, err := svc.ListVideos(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("video list unavailable")
			videos = []review.Video{video}
		}

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		socket := config.GetString("mpv.socket")
		fmt.Printf("Opening video: %s\n", video.Title())
		process, err := mpv.Launch(runCtx, video.URL, mpv.LaunchOptions{
			SocketPath: socket,
			Title:      "framereview: " + video.Title(),
			Start:      startAt,
		})
		if err != nil {
			return fmt.Errorf("failed to launch mpv: %w", err)
		}
		defer process.Wait()

		client := mpv.NewClient(socket, logger)
		connCtx, connCancel := context.WithTimeout(runCtx, connectTimeout)
		err = client.ConnectRetry(connCtx, 100*time.Millisecond)
		connCancel()
		if err != nil {
			cancel()
			return fmt.Errorf("failed to connect to mpv: %w", err)
		}
		defer client.Close()

		sess := session.New(session.Options{
			VideoID: video.ID,
			Author:  config.GetString("user.name"),
			Service: svc,
			Player:  client,
			Frames:  client,
			Logger:  logger,
		})

		logger.Info().Int64("video", video.ID).Str("source", video.URL).Msg("review session started")
		err = tui.Run(tui.Options{
			Session: sess,
			Client:  client,
			Videos:  videos,
			Logger:  logger,
		})
		if quitErr := quitMpv(client); quitErr != nil {
			logger.Debug().Err(quitErr).Msg("mpv quit")
			cancel()
		}
		return err
	},
}

// resolveVideo picks the video to open: a registered ID, or a file/URL
// added to the local store.
func resolveVideo(ctx context.Context, svc backend, args []string, videoID int64) (review.Video, error) {
	if videoID != 0 {
		b, err := svc.FetchVideoBundle(ctx, videoID)
		if err != nil {
			return review.Video{}, fmt.Errorf("failed to load video %d: %w", videoID, err)
		}
		if b.Video.URL == "" {
			return review.Video{}, fmt.Errorf("video %d has no source", videoID)
		}
		return b.Video, nil
	}

	if config.GetString("backend") == config.BackendRemote {
		return review.Video{}, errors.New("the remote backend opens registered videos only; use --video")
	}
	source, err := videoSource(args[0])
	if err != nil {
		return review.Video{}, err
	}
	store, ok := svc.(interface {
		AddVideo(ctx context.Context, url, name string) (review.Video, error)
	})
	if !ok {
		return review.Video{}, errors.New("backend cannot register videos")
	}
	return store.AddVideo(ctx, source, "")
}

// quitMpv asks mpv to exit; the caller kills it if that fails.
func quitMpv(client *mpv.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), mpv.DefaultTimeout)
	defer cancel()
	_, err := client.Command(ctx, "quit")
	return err
}

func init() {
	openCmd.Flags().Int64("video", 0, "ID of a registered video")
	openCmd.Flags().String("start", "0", "start position (H:MM:SS, M:SS or seconds)")
	rootCmd.AddCommand(openCmd)
}
