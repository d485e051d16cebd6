package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"vr-dimension/src/appstate"
	"vr-dimension/src/config"
	"vr-dimension/src/eventloop"
	"vr-dimension/src/gui"
	"vr-dimension/src/hotkey"
	"vr-dimension/src/logutil"
	"vr-dimension/src/runtimeinit"
	"vr-dimension/src/settings"
	"vr-dimension/src/singleinstance"
	"vr-dimension/src/window"
	"vr-dimension/src/winutil"
)

const appID = "com.survivewithsixx.vrdimension"

var (
	errAlreadyRunning = errors.New("VR Dimension is already running")
	errNoResident     = errors.New("no running VR Dimension instance found")
)

type mainOptions struct {
	settingsPath string
	window       string
	hotkey       string
	start        bool
	noHotkey     bool
}

// commandClient is the part of singleinstance.Client used by ctl.
type commandClient interface {
	Send(ctx context.Context, cmd singleinstance.Command) (bool, string, error)
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	winutil.EnableDPIAwareness()

	// fyne requires the main goroutine to stay on the main OS thread
	runtime.LockOSThread()

	if err := runWithArgs(normalizeLegacyArgs(os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"vr-dimension"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts, singleinstance.NewClient())
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions, client commandClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vr-dimension",
		Short:         "Mirror one eye of a stereo VR window into a preview window",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResident(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.settingsPath, "settings", "", "Path to the settings file (.json or .yaml)")
	cmd.Flags().StringVar(&opts.window, "window", "", "Exact title of the window to capture")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Global hotkey that toggles capture (e.g. Ctrl+Alt+V)")
	cmd.Flags().BoolVar(&opts.start, "start", false, "Start capturing as soon as the app is up")
	cmd.Flags().BoolVar(&opts.noHotkey, "no-hotkey", false, "Do not register the global hotkey")

	cmd.AddCommand(newCtlCmd(client))
	return cmd
}

func newCtlCmd(client commandClient) *cobra.Command {
	return &cobra.Command{
		Use:       "ctl start|stop|toggle|status",
		Short:     "Send a command to the running instance",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"start", "stop", "toggle", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := singleinstance.ParseCommand(args[0])
			if err != nil {
				return err
			}
			// Load .env so VR_DIMENSION_PORT_* apply before the port scan
			_, _ = config.Load()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			reply, err := delegate(ctx, client, c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func delegate(ctx context.Context, client commandClient, c singleinstance.Command) (string, error) {
	delegated, reply, err := client.Send(ctx, c)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", strings.ToLower(string(c)), err)
	}
	if !delegated {
		return "", errNoResident
	}
	return reply, nil
}

func runResident(opts mainOptions) error {
	// Load .env early so VR_DIMENSION_PORT_* are available for pre-flight
	_, _ = config.Load()
	preflight, cancelPreflight := context.WithTimeout(context.Background(), 2*time.Second)
	port, running := singleinstance.DetectResidentPort(preflight)
	cancelPreflight()
	if running {
		fmt.Printf("VR Dimension is already running on port %d\n", port)
		return errAlreadyRunning
	}

	cfg, s, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			SettingsPathOverride: opts.settingsPath,
			WindowOverride:       opts.window,
			HotkeyOverride:       opts.hotkey,
		},
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		return err
	}
	winutil.MinimizeConsole()
	winutil.LogMonitorConfiguration()

	log.Printf("VR Dimension initialized")
	log.Printf("Settings file: %s", cfg.SettingsPath)
	log.Printf("Hotkey: %s", cfg.Hotkey)
	portStart, portEnd := singleinstance.PortRange()
	log.Printf("Control port range: %d-%d", portStart, portEnd)

	state := appstate.New(s)
	if cfg.InitialWindow != "" {
		state.SelectWindow(cfg.InitialWindow)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := app.NewWithID(appID)
	finder := window.NewFinder()
	preview := gui.NewPreview(a)
	loop := eventloop.New(eventloop.Options{
		State:      state,
		Finder:     finder,
		Display:    preview,
		Server:     singleinstance.NewServer(),
		IdleDelay:  cfg.IdleDelay,
		ErrorDelay: cfg.ErrorDelay,
	})
	ui := gui.New(a, gui.Options{
		State:        state,
		Controller:   loop,
		Finder:       finder,
		Preview:      preview,
		SettingsPath: cfg.SettingsPath,
		TargetHint:   cfg.TargetHint,
		OnQuit:       cancel,
	})

	go func() {
		err := settings.Watch(ctx, cfg.SettingsPath, func(ns *settings.Settings) {
			log.Printf("Settings reloaded from %s", cfg.SettingsPath)
			state.ReplaceSettings(*ns)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Settings watcher stopped: %v", err)
		}
	}()

	if !opts.noHotkey {
		if err := hotkey.Listen(ctx, cfg.Hotkey, loop.Toggle); err != nil {
			log.Printf("Hotkey disabled: %v", err)
		}
	}
	if opts.start {
		a.Lifecycle().SetOnStarted(loop.Start)
	}

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
			fyne.Do(a.Quit)
		}
		loopErr <- err
	}()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			log.Printf("Signal received, exiting")
			cancel()
			fyne.Do(a.Quit)
		case <-ctx.Done():
		}
	}()

	ui.ShowAndRun()
	cancel()

	select {
	case err := <-loopErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-time.After(2 * time.Second):
		log.Printf("event loop did not stop in time")
	}
	log.Printf("VR Dimension exited")
	return nil
}

// normalizeLegacyArgs maps single-dash long flags (-start) to the
// double-dash form cobra expects (--start).
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(arg[1:], "=")
		switch name {
		case "settings", "window", "hotkey", "start", "no-hotkey":
			normalized[i] = "-" + arg
		}
	}
	return normalized
}
