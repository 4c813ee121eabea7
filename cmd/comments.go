package cmd

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/framereview/capture"
	"github.com/user/framereview/config"
	"github.com/user/framereview/pkg/export"
	"github.com/user/framereview/pkg/timeutil"
	"github.com/user/framereview/review"
	"github.com/user/framereview/timeline"
)

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Manage review comments",
	Long:    `Add, list, resolve and delete timestamped comments on a video.`,
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comments on a video",
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, _ := cmd.Flags().GetInt64("video")
		filterName, _ := cmd.Flags().GetString("filter")
		filter, err := timeline.ParseFilter(filterName)
		if err != nil {
			return err
		}

		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		b, err := svc.FetchVideoBundle(cmd.Context(), videoID)
		if err != nil {
			return fmt.Errorf("failed to load video %d: %w", videoID, err)
		}

		comments := timeline.Visible(b.Comments, filter)
		fmt.Printf("%s: %d open, %d resolved\n\n", b.Video.Title(), b.Status.Open, b.Status.Resolved)
		if len(comments) == 0 {
			fmt.Println("No comments found.")
			return nil
		}
		printComments(cmd.OutOrStdout(), comments, time.Now())
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a comment at a timestamp",
	Long: `Add a comment to a video at a timestamp given as H:MM:SS, M:SS or seconds.
An image file may be attached; it is re-encoded as PNG.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, _ := cmd.Flags().GetInt64("video")
		at, _ := cmd.Flags().GetString("at")
		text, _ := cmd.Flags().GetString("text")
		attach, _ := cmd.Flags().GetString("attach")

		seconds, err := timeutil.ParseTimeToSeconds(at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}

		draft := review.Draft{
			Author:           config.GetString("user.name"),
			TimestampSeconds: seconds,
			Text:             strings.TrimSpace(text),
		}
		if attach != "" {
			res, err := imageAttachment(attach)
			if err != nil {
				return err
			}
			if draft.Attachment, err = res.DataURL(); err != nil {
				return err
			}
			draft.AttachmentFilename = filepath.Base(attach)
		}
		if err := draft.Validate(); err != nil {
			return fmt.Errorf("nothing to add (use --text or --attach): %w", err)
		}

		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		c, err := svc.SubmitComment(cmd.Context(), videoID, draft)
		if err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}
		fmt.Printf("Comment added: ID %d at %s\n", c.ID, timeutil.FormatTime(c.TimestampSeconds))
		return nil
	},
}

var commentsResolveCmd = &cobra.Command{
	Use:   "resolve <comment-id>",
	Short: "Mark a comment resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  setResolvedRunE(true),
}

var commentsUnresolveCmd = &cobra.Command{
	Use:   "unresolve <comment-id>",
	Short: "Reopen a resolved comment",
	Args:  cobra.ExactArgs(1),
	RunE:  setResolvedRunE(false),
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		if err := svc.DeleteComment(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete comment %d: %w", id, err)
		}
		fmt.Printf("Comment %d deleted\n", id)
		return nil
	},
}

var commentsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write annotation images to disk",
	Long: `Write every embedded comment attachment of a video to a folder, named
{hhmmss}-{author}-{id}.png. Attachments that are links are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, _ := cmd.Flags().GetInt64("video")
		outDir, _ := cmd.Flags().GetString("out")

		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		b, err := svc.FetchVideoBundle(cmd.Context(), videoID)
		if err != nil {
			return fmt.Errorf("failed to load video %d: %w", videoID, err)
		}
		if outDir == "" {
			outDir = export.OutputDir(b.Video)
		}

		res, err := export.Attachments(outDir, timeline.Visible(b.Comments, timeline.FilterAll))
		for _, path := range res.Written {
			fmt.Printf("✓ %s\n", path)
		}
		if err != nil {
			return err
		}
		if len(res.Skipped) > 0 {
			fmt.Printf("Skipped %d linked attachment(s)\n", len(res.Skipped))
		}
		fmt.Printf("Exported %d image(s)\n", len(res.Written))
		return nil
	},
}

func setResolvedRunE(resolved bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		if err := svc.SetCommentResolved(cmd.Context(), id, resolved); err != nil {
			return fmt.Errorf("failed to update comment %d: %w", id, err)
		}
		state := "reopened"
		if resolved {
			state = "resolved"
		}
		fmt.Printf("Comment %d %s\n", id, state)
		return nil
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}

// printComments writes one tab-aligned row per comment.
func printComments(out io.Writer, comments []review.Comment, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTATUS\tAUTHOR\tADDED\tTEXT")
	for _, c := range comments {
		status := "open"
		if c.Resolved {
			status = "resolved"
		}
		text := c.Text
		if c.HasAttachment() {
			text = "[image] " + text
		}
		added := "-"
		if !c.CreatedAt.IsZero() {
			added = humanize.RelTime(c.CreatedAt, now, "ago", "from now")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, timeutil.FormatTime(c.TimestampSeconds), status, c.Author, added, oneLine(text, 60))
	}
	w.Flush()
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}

// imageAttachment decodes a PNG or JPEG file into a capture result so it
// is encoded the same way as a drawn annotation.
func imageAttachment(path string) (capture.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return capture.Result{}, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return capture.Result{}, fmt.Errorf("failed to decode attachment %s: %w", filepath.Base(path), err)
	}
	img := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return capture.Result{Image: img, FrameCaptured: true, CapturedAt: time.Now()}, nil
}

func init() {
	commentsListCmd.Flags().Int64("video", 0, "video ID (required)")
	commentsListCmd.Flags().String("filter", "all", "all, open or resolved")
	commentsListCmd.MarkFlagRequired("video")

	commentsAddCmd.Flags().Int64("video", 0, "video ID (required)")
	commentsAddCmd.Flags().String("at", "0", "timestamp (H:MM:SS, M:SS or seconds)")
	commentsAddCmd.Flags().String("text", "", "comment text")
	commentsAddCmd.Flags().String("attach", "", "PNG or JPEG image to attach")
	commentsAddCmd.MarkFlagRequired("video")

	commentsExportCmd.Flags().Int64("video", 0, "video ID (required)")
	commentsExportCmd.Flags().String("out", "", "output folder (default: next to the video)")
	commentsExportCmd.MarkFlagRequired("video")

	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)
	commentsCmd.AddCommand(commentsResolveCmd)
	commentsCmd.AddCommand(commentsUnresolveCmd)
	commentsCmd.AddCommand(commentsDeleteCmd)
	commentsCmd.AddCommand(commentsExportCmd)
	rootCmd.AddCommand(commentsCmd)
}
