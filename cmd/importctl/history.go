package main

import (
	"context"
	"fmt"
)

func (a *app) history(ctx context.Context, args []string) error {
	fs := newFlagSet("history")
	limit := fs.Int("limit", 20, "Number of sessions to show")
	asJSON := fs.Bool("json", false, "Print JSON")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	history, closeHistory := a.openHistory()
	defer closeHistory()
	if history == nil {
		return fmt.Errorf("history database %s is not available", a.cfg.Storage.DBPath)
	}

	sessions, err := history.ListRecent(ctx, *limit)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(a.stdout, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(a.stdout, "No imports recorded yet")
		return nil
	}
	return writeSessions(a.stdout, sessions)
}
