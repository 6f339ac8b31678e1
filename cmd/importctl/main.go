package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"prodimport/internal/apiclient"
	"prodimport/internal/config"
	"prodimport/internal/version"
)

type app struct {
	cfg    *config.Config
	client *apiclient.Client
	stdout io.Writer
	stderr io.Writer
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [arguments]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  upload FILE [-no-wait] [-format text|json]   Upload a .csv/.xlsx file and track the import\n")
	fmt.Fprintf(os.Stderr, "  status JOB_ID [-watch] [-format text|json]  Show (or follow) an import job\n")
	fmt.Fprintf(os.Stderr, "  products list|get|create|update|delete|purge\n")
	fmt.Fprintf(os.Stderr, "  webhooks list|get|create|update|delete|test\n")
	fmt.Fprintf(os.Stderr, "  history [-limit N]                          Show local import history\n")
	fmt.Fprintf(os.Stderr, "  ping                                        Check that the API is reachable\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s upload products.csv\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -api https://importer.example.com/api upload catalog.xlsx -format json\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s products list -sku A- -active true\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s webhooks create -url https://hooks.example.com/in -event product.import.completed\n", os.Args[0])
}

func main() {
	var (
		apiBase     = flag.String("api", "", "API base URL (default: $API_BASE or http://localhost:8000/api)")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: command is required\n\n")
		usage()
		os.Exit(1)
	}

	cfg := config.Load()
	if *apiBase != "" {
		cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(*apiBase), "/")
	}

	client, err := apiclient.NewClient(&apiclient.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: "importctl/" + version.Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, client: client, stdout: os.Stdout, stderr: os.Stderr}
	err = a.run(ctx, args)
	stop()

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errInterrupted):
		os.Exit(130)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var errInterrupted = errors.New("interrupted")

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "upload":
		return a.upload(ctx, rest)
	case "status":
		return a.status(ctx, rest)
	case "products":
		return a.products(ctx, rest)
	case "webhooks":
		return a.webhooks(ctx, rest)
	case "history":
		return a.history(ctx, rest)
	case "ping":
		if err := a.client.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "API at %s is reachable\n", a.client.BaseURL())
		return nil
	case "help":
		usage()
		return nil
	default:
		return fmt.Errorf("unknown command %q (run with -h for usage)", cmd)
	}
}

// parseArgs parses fs from args and returns the positional arguments.
// Flags may appear before or after positionals.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// visited reports which flags were set explicitly.
func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
