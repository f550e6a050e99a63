// Package shell is the terminal input surface of the ledger: one command per
// line, answered with the same notices the web page shows.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"expns/internal/core"
	"expns/internal/log"
	"expns/internal/services"
)

// Ledger is what the shell needs from the ledger service.
type Ledger interface {
	Add(ctx context.Context, title, category, amountText string) (services.AddResult, error)
	Aggregate(ctx context.Context) (core.ChartSeries, error)
	Transactions(ctx context.Context) ([]core.Transaction, error)
	Len(ctx context.Context) (int, error)
}

const prompt = "> "

const helpText = `Commands:
  add <title> | <category> | <amount>   record a transaction (amount in whole units)
  list                                  show recorded transactions
  chart                                 show totals per category
  status                                show the transaction count
  help                                  show this help
  quit                                  leave
`

// ErrUsage marks a command that could not be parsed.
var ErrUsage = errors.New("usage")

type Shell struct {
	ledger   Ledger
	out      io.Writer
	logger   *log.Logger
	barWidth int
}

// Option configures a Shell.
type Option func(*Shell)

func WithLogger(l *log.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithBarWidth sets the length of the largest chart bar.
func WithBarWidth(n int) Option {
	return func(s *Shell) { s.barWidth = n }
}

func New(ledger Ledger, out io.Writer, opts ...Option) *Shell {
	s := &Shell{ledger: ledger, out: out, barWidth: DefaultBarWidth}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.Config{Output: io.Discard})
	}
	s.logger = s.logger.WithComponent(log.ComponentShell)
	return s
}

// Run reads commands from in until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	n, err := s.ledger.Len(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	fmt.Fprintln(s.out, core.WindowTitle(n))
	fmt.Fprintln(s.out, `Type "help" for commands.`)

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		quit, err := s.Execute(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one command line. It returns quit=true for quit and an error
// only when the ledger itself fails; user mistakes are answered with notices.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool, err error) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "add":
		return false, s.add(ctx, rest)
	case "list", "ls":
		return false, s.list(ctx)
	case "chart", "graph":
		return false, s.chart(ctx)
	case "status":
		return false, s.status(ctx)
	case "help", "?":
		fmt.Fprint(s.out, helpText)
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type \"help\" for commands.\n", cmd)
		return false, nil
	}
}

// parseAdd splits "title | category | amount". Spaces around the separators
// belong to the syntax; missing parts are left empty for validation.
func parseAdd(args string) (title, category, amount string, err error) {
	parts := strings.Split(args, "|")
	if len(parts) > 3 {
		return "", "", "", fmt.Errorf("%w: add <title> | <category> | <amount>", ErrUsage)
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), nil
}

func (s *Shell) add(ctx context.Context, args string) error {
	title, category, amount, err := parseAdd(args)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return nil
	}

	res, err := s.ledger.Add(ctx, title, category, amount)
	if err != nil && !isUserError(err) {
		s.logger.ErrorContext(ctx, "Add failed", log.FieldOperation, log.OpAdd, log.FieldError, err.Error())
		return err
	}

	s.printNotice(core.NoticeFor(err))
	if err != nil {
		return nil
	}
	fmt.Fprintln(s.out, res.ListItem)
	fmt.Fprintln(s.out, res.StatusMessage)
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	txs, err := s.ledger.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	fmt.Fprintln(s.out, core.WindowTitle(len(txs)))
	for i, t := range txs {
		fmt.Fprintln(s.out, core.FormatListItem(i+1, t))
	}
	return nil
}

func (s *Shell) chart(ctx context.Context) error {
	series, err := s.ledger.Aggregate(ctx)
	if errors.Is(err, core.ErrNoData) {
		s.printNotice(core.NoticeFor(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	return RenderChart(s.out, series, s.barWidth)
}

func (s *Shell) status(ctx context.Context) error {
	n, err := s.ledger.Len(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	fmt.Fprintln(s.out, core.WindowTitle(n))
	fmt.Fprintln(s.out, core.StatusMessage(n))
	return nil
}

func (s *Shell) printNotice(n core.Notice) {
	fmt.Fprintf(s.out, "%s: %s\n", n.Title, n.Message)
}

func isUserError(err error) bool {
	if _, ok := core.MissingField(err); ok {
		return true
	}
	return errors.Is(err, core.ErrInvalidAmount)
}
