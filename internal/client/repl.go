// Package client implements the interactive shell used to create, manage and
// open shared secrets.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/atinyakov/GophShare/internal/models"
	"github.com/atinyakov/GophShare/internal/service"
	"github.com/atinyakov/GophShare/internal/viewer"
	"go.uber.org/zap"
)

// Prompt is printed before every command.
const Prompt = "gophshare> "

const helpText = `Available commands:
  create              create a secret and print its share link
  list                list your secrets
  link <id>           print the share link of a secret
  copy-link <id>      copy the share link to the clipboard
  reveal <id>         decrypt and print a secret
  copy <id>           decrypt a secret into the clipboard
  delete <id>         delete a secret after confirmation
  watch <id>          live countdown until the secret self-destructs (Enter stops)
  open <link>         open a share link as its recipient would
  help                show this help
  exit                leave the shell`

// SecretAPI is the part of service.SecretService the shell drives.
type SecretAPI interface {
	Create(ctx context.Context, req service.CreateRequest) (service.Created, error)
	List(ctx context.Context) ([]models.Secret, error)
	Get(ctx context.Context, id string) (models.Secret, error)
	Delete(ctx context.Context, id string) error
	Link(ctx context.Context, id string) (string, error)
	Reveal(ctx context.Context, id string) (string, error)
}

// Shell is the interactive command loop.
type Shell struct {
	svc  SecretAPI
	in   io.Reader
	out  io.Writer
	clip Clipboard
	log  *zap.Logger

	// Now is the clock used for countdowns.
	Now func() time.Time
	// WatchInterval is the refresh rate of the watch command.
	WatchInterval time.Duration

	lines <-chan string
}

// NewShell wires a shell reading commands from in and writing to out.
// A nil clip disables the copy commands; a nil log disables logging.
func NewShell(svc SecretAPI, in io.Reader, out io.Writer, clip Clipboard, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		svc:           svc,
		in:            in,
		out:           out,
		clip:          clip,
		log:           log,
		Now:           time.Now,
		WatchInterval: time.Second,
	}
}

// Run reads and executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.lines = scanLines(ctx, s.in)

	for {
		fmt.Fprint(s.out, Prompt)
		line, ok := s.readLine(ctx)
		if !ok {
			fmt.Fprintln(s.out)
			return ctx.Err()
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Fprintln(s.out, "Bye")
			return nil
		}
		s.dispatch(ctx, args)
	}
}

// scanLines feeds lines of in into the returned channel, closing it at EOF.
func scanLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func (s *Shell) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return strings.TrimRight(line, "\r"), ok
	}
}

func (s *Shell) dispatch(ctx context.Context, args []string) {
	cmd := args[0]
	needsArg := map[string]string{
		"link":      "link <id>",
		"copy-link": "copy-link <id>",
		"reveal":    "reveal <id>",
		"copy":      "copy <id>",
		"delete":    "delete <id>",
		"watch":     "watch <id>",
		"open":      "open <link>",
	}
	if usage, ok := needsArg[cmd]; ok && len(args) < 2 {
		fmt.Fprintf(s.out, "Usage: %s\n", usage)
		return
	}

	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "create":
		s.create(ctx)
	case "list":
		s.list(ctx)
	case "link":
		if link, err := s.svc.Link(ctx, args[1]); err != nil {
			s.fail(err)
		} else {
			fmt.Fprintln(s.out, link)
		}
	case "copy-link":
		if link, err := s.svc.Link(ctx, args[1]); err != nil {
			s.fail(err)
		} else {
			s.copy(link, "Link copied to clipboard")
		}
	case "reveal":
		s.reveal(ctx, args[1])
	case "copy":
		if plaintext, err := s.svc.Reveal(ctx, args[1]); err != nil {
			s.fail(err)
		} else {
			s.copy(plaintext, "Secret copied to clipboard")
		}
	case "delete":
		s.deleteSecret(ctx, args[1])
	case "watch":
		s.watch(ctx, args[1])
	case "open":
		s.open(strings.Join(args[1:], ""))
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
}

func (s *Shell) create(ctx context.Context) {
	req, ok := s.promptForSecret(ctx)
	if !ok {
		return
	}
	created, err := s.svc.Create(ctx, req)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, Success.Sprintf("Secret created (%s)", created.Secret.ID))
	fmt.Fprintln(s.out, created.Link)
	fmt.Fprintln(s.out, Muted.Sprint("Anyone with this link can read the secret. The key after '#' never reaches the server."))
}

func (s *Shell) deleteSecret(ctx context.Context, id string) {
	sec, err := s.svc.Get(ctx, id)
	if err != nil {
		s.fail(err)
		return
	}
	label := fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", sec.Title)
	confirmed, ok := s.askBool(ctx, label, false)
	if !ok {
		return
	}
	if !confirmed {
		fmt.Fprintln(s.out, Muted.Sprint("Delete cancelled"))
		return
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, Success.Sprint("Secret deleted"))
}

func (s *Shell) list(ctx context.Context) {
	secrets, err := s.svc.List(ctx)
	if err != nil {
		s.fail(err)
		return
	}
	if len(secrets) == 0 {
		fmt.Fprintln(s.out, "No secrets yet. Type 'create' to add one.")
		return
	}
	now := s.Now()
	for _, sec := range secrets {
		fmt.Fprintf(s.out, "%s  %s  views: %d  created %s",
			Muted.Sprint(sec.ID), sec.Title, sec.ViewCount,
			sec.CreatedAt.Local().Format(time.DateTime))
		if sec.BurnAfterView {
			fmt.Fprint(s.out, "  ", Badge.Sprint("burn after view"))
		}
		fmt.Fprintln(s.out, "  ", countdown(sec.Policy(), now))
	}
}

// countdown describes the time left before a secret self-destructs.
func countdown(p lifecycle.Policy, now time.Time) string {
	remaining, ok := p.Remaining(now)
	if !ok {
		return "never expires"
	}
	text := "expires in " + lifecycle.FormatRemaining(remaining)
	if lifecycle.InDangerZone(remaining) {
		return Danger.Sprint(text)
	}
	return text
}

func (s *Shell) reveal(ctx context.Context, id string) {
	plaintext, err := s.svc.Reveal(ctx, id)
	if err != nil {
		s.fail(err)
		return
	}
	sec, err := s.svc.Get(ctx, id)
	if err == nil {
		fmt.Fprintln(s.out, Info.Sprint(sec.Title))
		if sec.BurnAfterView {
			fmt.Fprintln(s.out, Badge.Sprint(viewer.OneTimeNotice))
		}
	}
	fmt.Fprintln(s.out, plaintext)
}

func (s *Shell) copy(text, done string) {
	if s.clip == nil {
		s.fail(ErrClipboardUnavailable)
		return
	}
	if err := s.clip.WriteAll(text); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, Success.Sprint(done))
}

// watch shows a live countdown until the secret expires or a line is entered.
func (s *Shell) watch(ctx context.Context, id string) {
	sec, err := s.svc.Get(ctx, id)
	if err != nil {
		s.fail(err)
		return
	}
	policy := sec.Policy()
	if _, ok := policy.ExpiresAt(); !ok {
		fmt.Fprintln(s.out, "Secret never expires")
		return
	}

	fmt.Fprintln(s.out, Muted.Sprint("Press Enter to stop watching."))
	expired := make(chan struct{}, 1)
	stop := lifecycle.Watch(ctx, lifecycle.WatchOptions{
		Policy:   policy,
		Interval: s.WatchInterval,
		Now:      s.Now,
		OnTick: func(remaining time.Duration, progress float64) {
			text := fmt.Sprintf("%s %s", progressBar(progress), lifecycle.FormatRemaining(remaining))
			if lifecycle.InDangerZone(remaining) {
				text = Danger.Sprint(text)
			}
			fmt.Fprintf(s.out, "\r%s: %s   ", sec.Title, text)
		},
		OnExpire: func() { expired <- struct{}{} },
	})
	defer stop()

	lines := s.lines
	for {
		select {
		case <-expired:
			stop()
			fmt.Fprintln(s.out)
			if err := s.svc.Delete(ctx, id); err != nil {
				s.log.Warn("failed to delete expired secret", zap.String("id", id), zap.Error(err))
			}
			fmt.Fprintln(s.out, Warning.Sprint("Secret expired and was destroyed"))
			return
		case _, ok := <-lines:
			if !ok {
				// input ended; keep watching until expiry
				lines = nil
				continue
			}
			stop()
			fmt.Fprintln(s.out)
			return
		case <-ctx.Done():
			stop()
			fmt.Fprintln(s.out)
			return
		}
	}
}

// open plays the recipient's side of a share link.
func (s *Shell) open(link string) {
	res := viewer.New(s.log).OpenURL(link)
	if res.State != viewer.Displayed {
		fmt.Fprintln(s.out, Error.Sprint(viewer.Message(res.Err)))
		return
	}
	fmt.Fprintln(s.out, Info.Sprint(res.Title))
	if res.BurnAfterView {
		fmt.Fprintln(s.out, Badge.Sprint(viewer.OneTimeNotice))
	}
	fmt.Fprintln(s.out, res.Plaintext)
}

func (s *Shell) fail(err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(s.out, Error.Sprint("Secret not found"))
	case errors.Is(err, service.ErrValidation):
		fmt.Fprintln(s.out, Error.Sprint(strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")))
	default:
		s.log.Error("command failed", zap.Error(err))
		fmt.Fprintln(s.out, Error.Sprintf("Error: %v", err))
	}
}
