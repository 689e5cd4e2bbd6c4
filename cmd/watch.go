package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/featmodel/internal/log"
	"github.com/zjrosen/featmodel/internal/pubsub"
	"github.com/zjrosen/featmodel/internal/watcher"
)

var verboseFlag bool

var watchCmd = &cobra.Command{
	Use:   "watch <file>...",
	Short: "Revalidate model files whenever they change",
	Long: `Validate the given model files, then watch them and validate again after
every change. Bursts of writes are coalesced using watch.debounce.

With --verbose the log is streamed to stderr as well.

Press Ctrl+C to stop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd, args)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "model format (default: by file extension)")
	watchCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "stream log lines to stderr")
	rootCmd.AddCommand(watchCmd)
}

// runWatch validates paths once and then on every debounced change until
// ctx is done.
func runWatch(ctx context.Context, cmd *cobra.Command, paths []string) error {
	wcfg := watcher.DefaultConfig(paths...)
	if cfg.Watch.Debounce > 0 {
		wcfg.DebounceDur = cfg.Watch.Debounce
	}
	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	if verboseFlag {
		streamLog(ctx, cmd.ErrOrStderr())
	}

	out := cmd.OutOrStdout()
	_ = validateFiles(cmd, paths)
	fmt.Fprintln(out, "watching for changes, press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-changes:
			log.Debug(log.CatWatcher, "files changed", "files", changed)
			_ = validateFiles(cmd, changed)
		}
	}
}

// streamLog copies log lines to w until ctx is done, installing a discarding
// logger first when --debug did not open a log file.
func streamLog(ctx context.Context, w io.Writer) {
	ch := log.Subscribe(ctx)
	if ch == nil {
		log.InitWriter(io.Discard)
		ch = log.Subscribe(ctx)
	}
	go pubsub.Forward(ctx, ch, func(e log.LogEvent) {
		_, _ = io.WriteString(w, e.Payload)
	})
}
