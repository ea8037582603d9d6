package evalctl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/peereval/pkg/logger"
)

// ShowHelp prints usage information for evalctl.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `evalctl
=======

Command-line client for the peer evaluation service.

Usage:
  evalctl [options] <command> [command options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -timeout duration
        HTTP request timeout (default 30s)
  -json
        Print raw JSON instead of tables
  -verbose
        Log each request
  -help
        Show this help message

Commands:
  members                                   List the roster
  next -week W -evaluator NAME              Show who NAME must score in week W
  submit -week W -evaluator NAME -score S   Score NAME's next target
         [-id SUBMISSION_ID]                Idempotency key (generated when omitted)
  rotate -week W -evaluator NAME            Score every pending target, reading one
                                            score per line from stdin
  averages [NAME]                           Show averages for everyone, or one member;
                                            words after the command form a single name
  snapshot                                  Show snapshot state
  refresh                                   Force a reload from the store

Examples:
  evalctl next -week 3 -evaluator Ana
  evalctl submit -week 3 -evaluator Ana -score 12,5
  printf '15\n17,5\n' | evalctl rotate -week 3 -evaluator Ana
  evalctl averages Ana Clara
  evalctl -json averages
`)
}

// Run executes one subcommand. args starts with the command name.
func Run(ctx context.Context, cfg *Config, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return usagef("missing command")
	}
	c := &cli{
		cfg:    cfg,
		client: NewHTTPClient(cfg, logger.Named("evalctl")),
		in:     in,
		out:    out,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "members":
		return c.members(ctx)
	case "next":
		return c.next(ctx, rest)
	case "submit":
		return c.submit(ctx, rest)
	case "rotate":
		return c.rotate(ctx, rest)
	case "averages":
		return c.averages(ctx, rest)
	case "snapshot":
		return c.snapshot(ctx, false)
	case "refresh":
		return c.snapshot(ctx, true)
	case "help":
		ShowHelp(out)
		return nil
	default:
		return usagef("unknown command %q", cmd)
	}
}

type cli struct {
	cfg    *Config
	client *HTTPClient
	in     io.Reader
	out    io.Writer
}

// selection parses the -week and -evaluator flags shared by several commands.
type selection struct {
	week      int
	evaluator string
}

func (s *selection) bind(fs *flag.FlagSet) {
	fs.IntVar(&s.week, "week", 0, "week number")
	fs.StringVar(&s.evaluator, "evaluator", "", "evaluator name")
}

func (s *selection) check() error {
	if s.week < 1 {
		return usagef("-week is required")
	}
	if strings.TrimSpace(s.evaluator) == "" {
		return usagef("-evaluator is required")
	}
	return nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func (c *cli) members(ctx context.Context) error {
	members, err := c.client.Members(ctx)
	if err != nil {
		return err
	}
	if c.cfg.JSON {
		return c.json(members)
	}
	printMembers(c.out, members)
	return nil
}

func (c *cli) next(ctx context.Context, args []string) error {
	var sel selection
	fs := newFlagSet("next", c.out)
	sel.bind(fs)
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if err := sel.check(); err != nil {
		return err
	}
	a, err := c.client.Next(ctx, sel.week, sel.evaluator)
	if err != nil {
		return err
	}
	if c.cfg.JSON {
		return c.json(a)
	}
	printAssignment(c.out, a)
	return nil
}

func (c *cli) submit(ctx context.Context, args []string) error {
	var (
		sel   selection
		score string
		id    string
	)
	fs := newFlagSet("submit", c.out)
	sel.bind(fs)
	fs.StringVar(&score, "score", "", "score in [0, 20]; a decimal comma is accepted")
	fs.StringVar(&id, "id", "", "submission id; generated when empty")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if err := sel.check(); err != nil {
		return err
	}
	if strings.TrimSpace(score) == "" {
		return usagef("-score is required")
	}
	if id == "" {
		id = uuid.NewString()
	}
	ack, err := c.client.Submit(ctx, Evaluation{Week: sel.week, Evaluator: sel.evaluator, Score: score, SubmissionID: id})
	if err != nil {
		return err
	}
	if c.cfg.JSON {
		return c.json(ack)
	}
	printAck(c.out, ack)
	return nil
}

// rotate walks the evaluator's queue for a week, one score per input line.
// Blank lines are skipped; input ends the loop early.
func (c *cli) rotate(ctx context.Context, args []string) error {
	var sel selection
	fs := newFlagSet("rotate", c.out)
	sel.bind(fs)
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if err := sel.check(); err != nil {
		return err
	}

	a, err := c.client.Next(ctx, sel.week, sel.evaluator)
	if err != nil {
		return err
	}
	next := a.Next
	scanner := bufio.NewScanner(c.in)
	for next != nil {
		fmt.Fprintf(c.out, "score for %s (%s): ", next.Name, next.Track)
		line, ok := nextLine(scanner)
		if !ok {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		ack, err := c.client.Submit(ctx, Evaluation{
			Week:         sel.week,
			Evaluator:    sel.evaluator,
			Score:        line,
			SubmissionID: uuid.NewString(),
		})
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Code == "invalid_score" {
				fmt.Fprintf(c.out, "invalid score %q, try again\n", line)
				continue
			}
			return err
		}
		printAck(c.out, ack)
		next = ack.Next
		if ack.Stale {
			// A stale ack carries no next target.
			if _, err := c.client.Refresh(ctx); err != nil {
				return err
			}
			a, err := c.client.Next(ctx, sel.week, sel.evaluator)
			if err != nil {
				return err
			}
			next = a.Next
		}
	}
	fmt.Fprintf(c.out, "%s has no one left to evaluate in week %d\n", sel.evaluator, sel.week)
	return nil
}

func nextLine(s *bufio.Scanner) (string, bool) {
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			return line, true
		}
	}
	return "", false
}

func (c *cli) averages(ctx context.Context, args []string) error {
	if len(args) > 0 {
		name := strings.Join(args, " ")
		avg, err := c.client.Average(ctx, name)
		if err != nil {
			return err
		}
		if c.cfg.JSON {
			return c.json(avg)
		}
		printAverages(c.out, []Average{avg})
		return nil
	}
	rows, err := c.client.Averages(ctx)
	if err != nil {
		return err
	}
	if c.cfg.JSON {
		return c.json(rows)
	}
	printAverages(c.out, rows)
	return nil
}

func (c *cli) snapshot(ctx context.Context, refresh bool) error {
	var (
		info SnapshotInfo
		err  error
	)
	if refresh {
		info, err = c.client.Refresh(ctx)
	} else {
		info, err = c.client.Snapshot(ctx)
	}
	if err != nil {
		return err
	}
	if c.cfg.JSON {
		return c.json(info)
	}
	printSnapshot(c.out, info)
	return nil
}

func (c *cli) json(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
