package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"prodimport/internal/models"
)

func (a *app) webhooks(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("webhooks needs a subcommand: list, get, create, update, delete, test")
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "list":
		fs := newFlagSet("webhooks list")
		asJSON := fs.Bool("json", false, "Print JSON")
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		hooks, err := a.client.ListWebhooks(ctx)
		if err != nil {
			return err
		}
		if *asJSON {
			return writeJSON(a.stdout, hooks)
		}
		return writeWebhooks(a.stdout, hooks)

	case "get":
		id, err := webhookID("webhooks get", args)
		if err != nil {
			return err
		}
		hook, err := a.client.GetWebhook(ctx, id)
		if err != nil {
			return err
		}
		return writeJSON(a.stdout, hook)

	case "create":
		fs := newFlagSet("webhooks create")
		in := webhookFlags(fs)
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		hook, err := a.client.CreateWebhook(ctx, *in)
		if err != nil {
			return err
		}
		return writeJSON(a.stdout, hook)

	case "update":
		fs := newFlagSet("webhooks update")
		in := webhookFlags(fs)
		positional, err := parseArgs(fs, args)
		if err != nil {
			return err
		}
		if len(positional) != 1 {
			return fmt.Errorf("webhooks update needs exactly one ID")
		}
		id, err := parseWebhookID(positional[0])
		if err != nil {
			return err
		}
		current, err := a.client.GetWebhook(ctx, id)
		if err != nil {
			return err
		}

		set := visited(fs)
		merged := models.WebhookInput{URL: current.URL, Event: current.Event, Enabled: current.Enabled}
		if set["url"] {
			merged.URL = in.URL
		}
		if set["event"] {
			merged.Event = in.Event
		}
		if set["enabled"] {
			merged.Enabled = in.Enabled
		}

		hook, err := a.client.UpdateWebhook(ctx, id, merged)
		if err != nil {
			return err
		}
		return writeJSON(a.stdout, hook)

	case "delete":
		id, err := webhookID("webhooks delete", args)
		if err != nil {
			return err
		}
		if err := a.client.DeleteWebhook(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted webhook %d\n", id)
		return nil

	case "test":
		id, err := webhookID("webhooks test", args)
		if err != nil {
			return err
		}
		result, err := a.client.TestWebhook(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case result.Error != "":
			return fmt.Errorf("webhook test failed: %s", result.Error)
		case !result.Passed():
			return fmt.Errorf("webhook test failed: receiver answered %d", result.Status)
		}
		fmt.Fprintf(a.stdout, "Webhook test passed: %d\n", result.Status)
		return nil

	default:
		return fmt.Errorf("unknown webhooks subcommand %q", sub)
	}
}

func webhookFlags(fs *flag.FlagSet) *models.WebhookInput {
	in := &models.WebhookInput{}
	fs.StringVar(&in.URL, "url", "", "Receiver URL")
	fs.StringVar(&in.Event, "event", models.EventProductCreated, "Event: product.created, product.updated, product.deleted, product.import.completed")
	fs.BoolVar(&in.Enabled, "enabled", true, "Whether the webhook is enabled")
	return in
}

func webhookID(cmd string, args []string) (int64, error) {
	raw, err := singleID(cmd, args)
	if err != nil {
		return 0, err
	}
	return parseWebhookID(raw)
}

func parseWebhookID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid webhook id %q", raw)
	}
	return id, nil
}
