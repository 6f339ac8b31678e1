package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"prodimport/internal/ingestion"
	"prodimport/internal/models"
	"prodimport/internal/progress"
	"prodimport/internal/storage"
	"prodimport/internal/tracker"
)

func (a *app) upload(ctx context.Context, args []string) error {
	fs := newFlagSet("upload")
	noWait := fs.Bool("no-wait", false, "Print the job id and exit without tracking")
	format := fs.String("format", "text", "Output format: text, json")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("upload needs exactly one FILE")
	}
	outFormat, err := progress.ParseFormat(*format)
	if err != nil {
		return err
	}

	file, err := ingestion.Prepare(positional[0])
	if err != nil {
		return err
	}
	if file.Converted && outFormat == progress.FormatText {
		fmt.Fprintf(a.stderr, "Converted %s to CSV (%d bytes)\n", positional[0], file.Size())
	}

	history, closeHistory := a.openHistory()
	defer closeHistory()

	session := &models.ImportSession{FileName: file.Name, Rows: file.Rows}
	if history != nil {
		if err := history.Create(ctx, session); err != nil {
			log.Printf("history: %v", err)
			history = nil
		}
	}

	resp, err := a.client.Upload(ctx, file.Name, file.Reader())
	if err != nil {
		if history != nil {
			_ = history.Fail(context.WithoutCancel(ctx), session.ID, err.Error())
		}
		return fmt.Errorf("upload failed: %w", err)
	}
	jobID := resp.JobID.String()
	if history != nil {
		_ = history.AttachJob(ctx, session.ID, jobID)
	}

	if outFormat == progress.FormatJSON {
		_ = json.NewEncoder(a.stdout).Encode(map[string]any{
			"event":     "uploaded",
			"job_id":    jobID,
			"file_name": file.Name,
			"rows":      file.Rows,
			"columns":   file.Header,
			"converted": file.Converted,
			"message":   resp.Message,
		})
	} else {
		fmt.Fprintf(a.stderr, "Uploaded %s (%d rows) as job %s\n", file.Name, file.Rows, jobID)
	}

	if *noWait {
		if outFormat == progress.FormatText {
			fmt.Fprintln(a.stdout, jobID)
		}
		return nil
	}

	return a.track(ctx, jobID, progress.NewPrinter(a.stdout, outFormat), history)
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := newFlagSet("status")
	watch := fs.Bool("watch", false, "Keep polling until the job completes")
	format := fs.String("format", "text", "Output format: text, json")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("status needs exactly one JOB_ID")
	}
	outFormat, err := progress.ParseFormat(*format)
	if err != nil {
		return err
	}
	jobID := positional[0]
	printer := progress.NewPrinter(a.stdout, outFormat)

	history, closeHistory := a.openHistory()
	defer closeHistory()

	if *watch {
		return a.track(ctx, jobID, printer, history)
	}

	status, err := a.client.ImportStatus(ctx, jobID)
	if err != nil {
		return err
	}
	p := tracker.Evaluate(jobID, status)
	if p.Completed {
		printer.OnComplete(p)
	} else {
		printer.OnProgress(p)
		if outFormat == progress.FormatText {
			fmt.Fprintln(a.stdout)
		}
	}

	if history != nil && outFormat == progress.FormatText {
		session, err := history.GetByJobID(ctx, jobID)
		if err != nil {
			log.Printf("history: %v", err)
		} else if session != nil {
			fmt.Fprintf(a.stderr, "Uploaded %s (%d rows) on %s, last recorded as %s\n",
				session.FileName, session.Rows, session.CreatedAt.Local().Format("2006-01-02 15:04"), session.Status)
		}
	}
	return nil
}

// track polls jobID until it completes, fails or ctx is cancelled.
func (a *app) track(ctx context.Context, jobID string, printer *progress.Printer, history *storage.ImportRepository) error {
	done := make(chan error, 1)
	observers := tracker.Observers{
		printer,
		tracker.ObserverFuncs{
			Complete: func(tracker.Progress) { done <- nil },
			Failed:   func(_ string, err error) { done <- err },
		},
	}
	if history != nil {
		observers = append(tracker.Observers{progress.NewRecorder(history)}, observers...)
	}

	tr := tracker.New(a.client, observers, &tracker.Options{
		Interval:               a.cfg.Poll.Interval,
		MaxConsecutiveFailures: a.cfg.Poll.MaxFailures,
	})
	if err := tr.Start(ctx, jobID); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		tr.Stop()
		if history != nil {
			_ = history.Cancel(context.WithoutCancel(ctx), jobID)
		}
		fmt.Fprintf(a.stderr, "\nStopped tracking job %s; the import continues on the server\n", jobID)
		return errInterrupted
	}
}

// openHistory opens the local history database. History is optional for
// the CLI, so failures only disable it.
func (a *app) openHistory() (*storage.ImportRepository, func()) {
	db, err := storage.Open(a.cfg.Storage.DBPath)
	if err != nil {
		log.Printf("history disabled: %v", err)
		return nil, func() {}
	}
	return storage.NewImportRepository(db), func() { db.Close() }
}
