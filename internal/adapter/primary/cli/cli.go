package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"sound-scheduler/internal/adapter/primary/web"
	"sound-scheduler/internal/adapter/secondary/audio"
	"sound-scheduler/internal/adapter/secondary/notify"
	"sound-scheduler/internal/adapter/secondary/probe"
	"sound-scheduler/internal/adapter/secondary/repository"
	"sound-scheduler/internal/domain"
	"sound-scheduler/internal/eventlog"
	"sound-scheduler/internal/logging"
	"sound-scheduler/internal/usecase"
)

var (
	cfgPath   string
	verbosity int
	logFile   string
	dryRun    bool
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sound-scheduler",
		Short:        "Play an audio file on loop inside a daily time window",
		Long:         "Plays a chosen MP3 (or WAV/OGG/FLAC) in an endless loop while the wall clock is inside a daily window, restarting it if it ends and stopping it at the end of the window.",
		SilenceUsage: true,
	}

	defaultCfg := repository.DefaultPath()
	cmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "settings file path")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log detail (-v, -vv, ... up to 4 times)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "simulate playback without opening the audio device")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if logFile != "" {
			logging.SetOutput(os.Stderr, logFile)
		}
		logging.SetVerbosity(verbosity)
	}

	cmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newSettingsCmd(),
		newProbeCmd(),
		newCheckCmd(),
		newShellCmd(),
	)

	return cmd
}

// app bundles the wired use case with the repository it was built from.
type app struct {
	repo *repository.FileRepository
	uc   usecase.SchedulerUseCase
}

// newApp wires secondary adapters into the scheduler use case.
func newApp() (*app, error) {
	repo, err := repository.NewFileRepository(cfgPath)
	if err != nil {
		return nil, err
	}
	settings, err := repo.Load()
	if err != nil {
		return nil, err
	}
	if logFile == "" && settings.LogFile != "" {
		logging.SetOutput(os.Stderr, settings.LogFile)
	}

	engine, connectivity, notifier := wireAdapters(dryRun)
	uc, err := usecase.NewSchedulerUseCase(repo, engine, connectivity, notifier)
	if err != nil {
		return nil, err
	}
	return &app{repo: repo, uc: uc}, nil
}

// wireAdapters picks the secondary adapters. A dry run stays off the audio
// device and the network.
func wireAdapters(dry bool) (domain.AudioEngine, domain.ConnectivityProbe, domain.Notifier) {
	if dry {
		return audio.NewSimulatedEngine(nil), probe.NewNoopProbe(), notify.NewLogNotifier()
	}
	if !audio.Available {
		logging.Warnf("this build has no audio output; use --dry-run to simulate playback")
	}
	return audio.NewBeepEngine(), probe.NewPingProbe(0), notify.NewDesktopNotifier("Sound Scheduler")
}

func newRunCmd() *cobra.Command {
	var req usecase.ScheduleRequest
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule playback and stream the event log until interrupted",
		Example: `  sound-scheduler run --file ~/Music/chime.mp3 --start 09:00 --end 17:30
  sound-scheduler run --dry-run -v --file alarm.wav --start 06:45 --end 07:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			bus := a.uc.Events()
			sub := bus.Subscribe(64)
			printed := make(chan struct{})
			go func() {
				defer close(printed)
				printEvents(out, sub)
			}()
			defer func() {
				bus.Unsubscribe(sub)
				<-printed
			}()

			if err := a.uc.StartScheduling(req); err != nil {
				return err
			}
			fmt.Fprintln(out, "Scheduling is running. Press Ctrl+C to stop.")

			if err := a.uc.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return a.uc.StopScheduling()
		},
	}
	addScheduleFlags(cmd, &req)
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		addr string
		req  usecase.ScheduleRequest
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Web UI and REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = a.uc.Snapshot().Settings.WebAddr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Optionally schedule right away
			if req.FilePath != "" {
				if err := a.uc.StartScheduling(req); err != nil {
					return err
				}
			}
			defer func() {
				if err := a.uc.StopScheduling(); err != nil {
					logging.Errorf("stop scheduling: %v", err)
				}
			}()

			srv := web.NewServer(a.uc, addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Sound Scheduler UI running at http://%s\n", addr)
			logging.Infof("Sound Scheduler UI: http://%s", addr)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", domain.DefaultWebAddr, "HTTP listen address host:port")
	addScheduleFlags(cmd, &req)
	return cmd
}

func addScheduleFlags(cmd *cobra.Command, req *usecase.ScheduleRequest) {
	cmd.Flags().StringVarP(&req.FilePath, "file", "f", "", "audio file to play (mp3, wav, ogg, flac)")
	cmd.Flags().StringVar(&req.Start, "start", "", "window start, HH:MM (24h)")
	cmd.Flags().StringVar(&req.End, "end", "", "window end, HH:MM (24h), after start")
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change persisted settings",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.NewFileRepository(cfgPath)
			if err != nil {
				return err
			}
			settings, err := repo.Load()
			if err != nil {
				return err
			}

			out, _ := json.MarshalIndent(web.NewSettingsView(settings), "", "  ")
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", repo.Path())
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		pollFlag         time.Duration
		probeFlag        bool
		probeTargetFlag  string
		probeTimeoutFlag time.Duration
		notifyFlag       bool
		addrFlag         string
		logPathFlag      string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update settings; they apply to the next scheduling session",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.NewFileRepository(cfgPath)
			if err != nil {
				return err
			}
			settings, err := repo.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("poll") {
				settings.PollInterval = pollFlag
			}
			if flags.Changed("probe") {
				settings.ProbeEnabled = probeFlag
			}
			if flags.Changed("probe-target") {
				settings.ProbeTarget = probeTargetFlag
			}
			if flags.Changed("probe-timeout") {
				settings.ProbeTimeout = probeTimeoutFlag
			}
			if flags.Changed("notify") {
				settings.Notifications = notifyFlag
			}
			if flags.Changed("addr") {
				settings.WebAddr = addrFlag
			}
			if flags.Changed("log-path") {
				settings.LogFile = logPathFlag
			}

			if err := settings.Validate(); err != nil {
				return err
			}
			if err := repo.Save(settings); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved to %s: poll=%s probe=%t target=%s timeout=%s notify=%t addr=%s\n",
				repo.Path(), settings.PollInterval, settings.ProbeEnabled, settings.ProbeTarget,
				settings.ProbeTimeout, settings.Notifications, settings.WebAddr)
			return nil
		},
	}
	cmd.Flags().DurationVar(&pollFlag, "poll", domain.DefaultPollInterval, "scheduling loop interval, e.g. 1s, 500ms")
	cmd.Flags().BoolVar(&probeFlag, "probe", true, "ping the probe target on every start/stop")
	cmd.Flags().StringVar(&probeTargetFlag, "probe-target", domain.DefaultProbeTarget, "host pinged by the connectivity probe")
	cmd.Flags().DurationVar(&probeTimeoutFlag, "probe-timeout", domain.DefaultProbeTimeout, "probe timeout (1s-10s)")
	cmd.Flags().BoolVar(&notifyFlag, "notify", true, "show desktop notifications")
	cmd.Flags().StringVar(&addrFlag, "addr", domain.DefaultWebAddr, "default Web UI address")
	cmd.Flags().StringVar(&logPathFlag, "log-path", "", "log file used when --log-file is not given")
	return cmd
}

func newProbeCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run the connectivity probe once",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.NewFileRepository(cfgPath)
			if err != nil {
				return err
			}
			settings, err := repo.Load()
			if err != nil {
				return err
			}
			if target == "" {
				target = settings.ProbeTarget
			}

			ctx, cancel := context.WithTimeout(context.Background(), settings.ProbeTimeout)
			defer cancel()

			started := time.Now()
			if err := probe.NewPingProbe(settings.ProbeTimeout).Probe(ctx, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reachable (%s)\n", target, time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "host to ping (default from settings)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Decode an audio file and print its format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) > 0 {
				file = args[0]
			}
			if file == "" {
				return errors.New("--file is required")
			}
			track, err := audio.Decode(file)
			if err != nil {
				return err
			}
			defer track.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d Hz, %d channel(s), %s\n",
				filepath.Base(file), strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), "."),
				track.Format.SampleRate, track.Format.NumChannels, track.Duration().Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "audio file to check")
	return cmd
}

// printEvents writes each event as a status line until sub is closed.
func printEvents(w io.Writer, sub eventlog.Subscriber) {
	for ev := range sub {
		fmt.Fprintln(w, ev.String())
	}
}

// formatStatus renders a snapshot for humans.
func formatStatus(snap domain.SessionSnapshot) string {
	if !snap.Running {
		return "scheduling: stopped"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "scheduling: running (session %s since %s)\n",
		snap.SessionID, snap.StartedAt.Format("15:04:05"))
	fmt.Fprintf(&b, "file:       %s\n", snap.Config.FilePath)
	fmt.Fprintf(&b, "window:     %s\n", snap.Config.Window)
	switch {
	case snap.Playback.Playing && snap.Playback.EngineBusy:
		fmt.Fprintf(&b, "playback:   playing since %s", snap.Playback.Since.Format("15:04:05"))
	case snap.Playback.Playing:
		b.WriteString("playback:   track ended, restart pending")
	default:
		b.WriteString("playback:   idle")
	}
	if snap.Playback.Restarts > 0 {
		fmt.Fprintf(&b, " (%d restarts)", snap.Playback.Restarts)
	}
	return b.String()
}
