package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/atinyakov/GophShare/internal/service"
)

// ask prints label and reads one line. ok is false when input ended.
func (s *Shell) ask(ctx context.Context, label string) (string, bool) {
	fmt.Fprint(s.out, label)
	return s.readLine(ctx)
}

// askBool reads a yes/no answer; an empty answer selects def.
func (s *Shell) askBool(ctx context.Context, label string, def bool) (bool, bool) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, ok := s.ask(ctx, fmt.Sprintf("%s [%s]: ", label, hint))
		if !ok {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, true
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		}
		fmt.Fprintln(s.out, Warning.Sprint("Please answer yes or no."))
	}
}

// askAutoDestroy reads one of the supported lifetimes. It accepts seconds
// ("30") or the labels shown ("1m"); an empty answer means never.
func (s *Shell) askAutoDestroy(ctx context.Context) (int, bool) {
	labels := make([]string, 0, len(lifecycle.Options))
	for _, opt := range lifecycle.Options {
		labels = append(labels, opt.String())
	}
	for {
		answer, ok := s.ask(ctx, fmt.Sprintf("Auto-destroy after (%s) [never]: ", strings.Join(labels, "/")))
		if !ok {
			return 0, false
		}
		if ad, found := parseAutoDestroy(strings.TrimSpace(answer)); found {
			return int(ad), true
		}
		fmt.Fprintln(s.out, Warning.Sprintf("Choose one of: %s", strings.Join(labels, ", ")))
	}
}

func parseAutoDestroy(answer string) (lifecycle.AutoDestroy, bool) {
	if answer == "" {
		return lifecycle.Never, true
	}
	for _, opt := range lifecycle.Options {
		if strings.EqualFold(answer, opt.String()) {
			return opt, true
		}
	}
	secs, err := strconv.Atoi(answer)
	if err != nil {
		return 0, false
	}
	ad, err := lifecycle.ParseAutoDestroy(secs)
	return ad, err == nil
}

// promptForSecret walks through the creation form. Content may span several
// lines and ends at the first empty line.
func (s *Shell) promptForSecret(ctx context.Context) (service.CreateRequest, bool) {
	var req service.CreateRequest

	title, ok := s.ask(ctx, "Title: ")
	if !ok {
		return req, false
	}
	req.Title = strings.TrimSpace(title)

	fmt.Fprintln(s.out, "Content (finish with an empty line):")
	var lines []string
	for {
		line, ok := s.readLine(ctx)
		if !ok {
			return req, false
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	req.Content = strings.Join(lines, "\n")

	if req.BurnAfterView, ok = s.askBool(ctx, "Burn after view?", true); !ok {
		return req, false
	}
	if req.AutoDestroy, ok = s.askAutoDestroy(ctx); !ok {
		return req, false
	}
	return req, true
}
