package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sound-scheduler/internal/adapter/secondary/audio"
	"sound-scheduler/internal/eventlog"
	"sound-scheduler/internal/logging"
	"sound-scheduler/internal/usecase"
)

func newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell holding one scheduling session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "sound> ", "shell prompt")
	return cmd
}

func runInteractiveShell(prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "sound-scheduler-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	a, err := newApp()
	if err != nil {
		return err
	}
	sh := newShell(rl.Stdout(), a.uc)
	defer sh.close()

	fmt.Fprintln(sh.out, "Interactive shell. Type 'help' for commands, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(sh.out)
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(sh.out)
			return nil
		}
		if sh.handle(line) {
			return nil
		}
	}
}

// shell dispatches one line at a time against a long-lived use case.
type shell struct {
	out       io.Writer
	uc        usecase.SchedulerUseCase
	verbosity int
	sub       eventlog.Subscriber
	printed   chan struct{}
}

func newShell(out io.Writer, uc usecase.SchedulerUseCase) *shell {
	sh := &shell{
		out:       out,
		uc:        uc,
		verbosity: verbosity,
		sub:       uc.Events().Subscribe(64),
		printed:   make(chan struct{}),
	}
	go func() {
		defer close(sh.printed)
		printEvents(out, sh.sub)
	}()
	return sh
}

// close stops any running session and flushes pending event lines.
func (sh *shell) close() {
	if err := sh.uc.StopScheduling(); err != nil {
		fmt.Fprintf(sh.out, "stop: %v\n", err)
	}
	sh.uc.Events().Unsubscribe(sh.sub)
	<-sh.printed
}

// handle runs one input line and reports whether the shell should exit.
func (sh *shell) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	switch line {
	case "exit", "quit":
		fmt.Fprintln(sh.out, "Bye!")
		return true
	case "help":
		printShellHelp(sh.out)
		return false
	}
	tokens, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(sh.out, "Parse error: %v\n", err)
		return false
	}
	if len(tokens) == 0 {
		return false
	}

	switch tokens[0] {
	case "log":
		if err := sh.logCommand(tokens[1:]); err != nil {
			fmt.Fprintf(sh.out, "log: %v\n", err)
		}
	case "shell":
		fmt.Fprintln(sh.out, "Already inside the shell. Enter another command or 'exit'.")
	case "start":
		sh.start(tokens[1:])
	case "stop":
		if !sh.uc.Snapshot().Running {
			fmt.Fprintln(sh.out, "scheduling is not running")
			return false
		}
		if err := sh.uc.StopScheduling(); err != nil {
			fmt.Fprintf(sh.out, "stop: %v\n", err)
		}
	case "status":
		fmt.Fprintln(sh.out, formatStatus(sh.uc.Snapshot()))
	case "events":
		sh.events(tokens[1:])
	default:
		if err := sh.executeArgs(tokens); err != nil {
			fmt.Fprintf(sh.out, "command error: %v\n", err)
		}
	}
	return false
}

// start accepts either flags or "start FILE HH:MM HH:MM".
func (sh *shell) start(args []string) {
	req, err := parseStartArgs(args)
	if err != nil {
		fmt.Fprintf(sh.out, "start: %v\n", err)
		return
	}
	if err := sh.uc.StartScheduling(req); err != nil {
		fmt.Fprintf(sh.out, "start: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(sh.out, "hint: %s\n", hint)
		}
	}
}

func parseStartArgs(args []string) (usecase.ScheduleRequest, error) {
	var req usecase.ScheduleRequest
	fs := pflag.NewFlagSet("start", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&req.FilePath, "file", "f", "", "audio file")
	fs.StringVar(&req.Start, "start", "", "HH:MM")
	fs.StringVar(&req.End, "end", "", "HH:MM")
	if err := fs.Parse(args); err != nil {
		return req, err
	}

	rest := fs.Args()
	for _, dst := range []*string{&req.FilePath, &req.Start, &req.End} {
		if *dst == "" && len(rest) > 0 {
			*dst, rest = rest[0], rest[1:]
		}
	}
	if len(rest) > 0 {
		return req, errors.Newf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	return req, nil
}

func (sh *shell) events(args []string) {
	fs := pflag.NewFlagSet("events", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.IntP("limit", "n", 20, "number of events")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(sh.out, "events: %v\n", err)
		return
	}
	history := sh.uc.Events().History(*n)
	if len(history) == 0 {
		fmt.Fprintln(sh.out, "no events yet")
		return
	}
	for _, ev := range history {
		fmt.Fprintln(sh.out, ev.String())
	}
}

// executeArgs runs a regular subcommand, carrying over the shell's global flags.
func (sh *shell) executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	args = append(args, "--config="+cfgPath, "--verbose="+strconv.Itoa(sh.verbosity))
	if dryRun {
		args = append(args, "--dry-run")
	}
	if logFile != "" {
		args = append(args, "--log-file="+logFile)
	}

	root := NewRootCmd()
	root.SetOut(sh.out)
	root.SetErr(sh.out)
	root.SetArgs(args)
	return root.Execute()
}

// logCommand shows or changes the log level and log file used by the shell and
// by every command it runs.
func (sh *shell) logCommand(args []string) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	more := fs.CountP("verbose", "v", "raise verbosity, up to -vvvv")
	level := fs.String("level", "", "error|warn|info|debug|trace")
	file := fs.String("file", "", "also write JSON logs to this file, empty to stop")
	fs.BoolP("show", "s", false, "print the current settings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	next := -1
	switch {
	case *level != "":
		_, n, err := logging.ParseLevel(*level)
		if err != nil {
			return err
		}
		next = n
	case *more > 0:
		next = *more
	}
	if fs.Changed("file") {
		logFile = *file
		logging.SetOutput(os.Stderr, logFile)
	}
	if next >= 0 {
		sh.verbosity = next
		verbosity = next
		logging.SetVerbosity(next)
	}

	target := logFile
	if target == "" {
		target = "none"
	}
	fmt.Fprintf(sh.out, "log: %s (-v x%d), file: %s\n", logging.LevelName(), logging.Verbosity(), target)
	return nil
}

func printShellHelp(out io.Writer) {
	fmt.Fprintf(out, `Commands:
  start FILE HH:MM HH:MM          # start scheduling (or --file/--start/--end)
  stop                            # stop scheduling and playback
  status                          # show session and playback state
  events [-n 20]                  # show recent event lines
  settings get                    # show settings
  settings set --poll 500ms       # change settings (next session)
  check FILE                      # decode a file and print its format
  probe                           # ping the probe target once
  log -vv | log --level debug     # more detailed logging
  log --file /tmp/sound.log       # also log to a file
  log                             # show the current log settings
  exit / quit                     # leave the shell (stops scheduling)
Supported formats: %s. Times are 24h local wall clock.
`, strings.Join(audio.SupportedExtensions, " "))
}
