package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"prodimport/internal/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeProducts(w io.Writer, page *models.ProductPage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSKU\tNAME\tACTIVE\tDESCRIPTION")
	for _, p := range page.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.SKU, p.Name, yesNo(p.Active), p.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nPage %d of %d (%d products)\n", page.Page, page.TotalPages, page.Count)
	return err
}

func writeWebhooks(w io.Writer, hooks []models.Webhook) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tENABLED\tURL")
	for _, h := range hooks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", strconv.FormatInt(h.ID, 10), h.Event, yesNo(h.Enabled), h.URL)
	}
	return tw.Flush()
}

func writeSessions(w io.Writer, sessions []models.ImportSession) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tFILE\tROWS\tJOB\tSTATUS\tPERCENT\tDETAIL")
	for _, s := range sessions {
		detail := s.Message
		if s.Error != "" {
			detail = s.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%.0f%%\t%s\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"), s.FileName, s.Rows, s.JobID, s.Status, s.Percent, detail)
	}
	return tw.Flush()
}
