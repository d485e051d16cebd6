package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"vr-dimension/src/config"
	"vr-dimension/src/singleinstance"
)

type stressOptions struct {
	n        int
	command  string
	deadline time.Duration
}

type counts struct {
	ok, rejected, absent, failed int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-ctl",
		Short:         "Stress test the resident control server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := singleinstance.ParseCommand(opts.command)
			if err != nil {
				return err
			}
			_, _ = config.Load()
			return runWithOptions(cmd.OutOrStdout(), singleinstance.NewClient(), c, *opts)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of concurrent clients")
	cmd.Flags().StringVar(&opts.command, "command", "status", "start|stop|toggle|status")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func runWithOptions(w io.Writer, client singleinstance.Client, c singleinstance.Command, opts stressOptions) error {
	var wg sync.WaitGroup
	var n counts

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := client.Send(ctx, c)
			switch {
			case err != nil && delegated:
				atomic.AddInt32(&n.rejected, 1)
			case err != nil:
				atomic.AddInt32(&n.failed, 1)
			case !delegated:
				atomic.AddInt32(&n.absent, 1)
			default:
				atomic.AddInt32(&n.ok, 1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	_, err := fmt.Fprintf(w, "command=%s launched=%d ok=%d rejected=%d absent=%d err=%d elapsed=%s\n",
		c, opts.n, n.ok, n.rejected, n.absent, n.failed, elapsed)
	return err
}
