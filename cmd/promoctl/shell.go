package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"promotion-console/internal/controller"
	"promotion-console/internal/metrics"
	"promotion-console/internal/models"
	"promotion-console/internal/view"

	"github.com/spf13/cobra"
)

const shellHelp = `commands:
  set <field>=<value> ...   edit form fields (e.g. set promotion_name=Sale promotion_value=10.5)
  create|retrieve|update|delete|search|clear
                            run an action and wait for it
  go <action>               run an action in the background
  wait                      wait for background actions
  show                      print the form, status and results
  stats                     print request counters
  help                      print this help
  quit                      leave the shell
`

func newShellCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive console with a form that lives for the whole session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			app, err := buildApplication(cmd.Context(), opts.session)
			if err != nil {
				return err
			}
			defer app.Close()

			sh := &shell{
				app:    app,
				format: opts.format,
				out:    &lockedWriter{w: cmd.OutOrStdout()},
			}
			return sh.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// lockedWriter сериализует вывод основного цикла и фоновых действий.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type shell struct {
	app     *application
	format  string
	out     *lockedWriter
	pending sync.WaitGroup
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	defer s.pending.Wait()

	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line != "" {
			s.exec(ctx, line)
		}
		if ctx.Err() != nil {
			return nil
		}
		s.prompt()
	}
	return scanner.Err()
}

func (s *shell) prompt() {
	fmt.Fprint(s.out, "promo> ")
}

func (s *shell) exec(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		fmt.Fprint(s.out, shellHelp)
	case "set":
		s.set(ctx, args)
	case "show":
		s.show()
	case "stats":
		s.stats()
	case "wait":
		s.pending.Wait()
	case "go":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: go <action>")
			return
		}
		s.submit(ctx, args[0])
	default:
		action, ok := models.ParseAction(cmd)
		if !ok {
			fmt.Fprintf(s.out, "unknown command %q, type help\n", cmd)
			return
		}
		s.app.ctrl.Do(ctx, action)
		s.show()
	}
}

func (s *shell) set(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "usage: set <field>=<value> ...")
		return
	}
	values := url.Values{}
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(s.out, "expected <field>=<value>, got %q\n", arg)
			return
		}
		values.Set(field, value)
	}
	if err := s.app.ctrl.SetFields(ctx, values); err != nil {
		fmt.Fprintln(s.out, err)
	}
}

func (s *shell) submit(ctx context.Context, name string) {
	action, ok := models.ParseAction(name)
	if !ok {
		fmt.Fprintf(s.out, "unknown action %q\n", name)
		return
	}
	done := s.app.ctrl.Submit(ctx, action)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		report(s.out, <-done)
	}()
}

func report(w io.Writer, out controller.Outcome) {
	fmt.Fprintf(w, "[%s] %s\n", out.Action, out.Status)
}

func (s *shell) show() {
	if err := view.State(s.out, s.app.ctrl.State(), s.format); err != nil {
		fmt.Fprintln(s.out, err)
	}
}

func (s *shell) stats() {
	samples, err := metrics.Counters(s.app.registry)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	if len(samples) == 0 {
		fmt.Fprintln(s.out, "no requests yet")
		return
	}
	for _, sample := range samples {
		fmt.Fprintf(s.out, "%s%s %g\n", sample.Name, sample.Labels, sample.Value)
	}
}
