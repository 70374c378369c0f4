package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/akeren/welcome-form/config"
	"github.com/akeren/welcome-form/domain/welcome"
	"github.com/akeren/welcome-form/internal/log"
)

const cachePingTimeout = 10 * time.Second

func main() {
	logger := log.NewLogger(os.Stderr)

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, logger))
}

func run(args []string, stdout, stderr io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "render":
		return renderCommand(args[1:], stdout, stderr)

	case "cache-ping":
		return cachePingCommand(logger)

	case "help", "-h", "--help":
		printUsage(stdout)
		return 0

	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

// renderCommand prints the welcome page. A flag that is not given is treated
// as an absent form field, which differs from an explicit empty value only in
// the logs.
func renderCommand(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("name", "", "value of the name field")
	email := fs.String("email", "", "value of the email field")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var submission welcome.Submission
	if set["name"] {
		submission.Name = name
	}
	if set["email"] {
		submission.Email = email
	}

	fmt.Fprint(stdout, welcome.RenderSubmission(welcome.NewRenderer(), &submission))
	return 0
}

func cachePingCommand(logger *log.Logger) int {
	cache, err := config.NewCacheConfig().NewCache(logger)
	if err != nil {
		logger.Error("Failed to connect to cache", "error", err.Error())
		return 1
	}
	defer func() {
		_ = config.CloseCache(cache, logger)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cachePingTimeout)
	defer cancel()

	if err := cache.Ping(ctx); err != nil {
		logger.Error("Cache ping failed", "error", err.Error())
		return 1
	}

	logger.Info("Cache is reachable")
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cli <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render [--name NAME] [--email EMAIL]  Print the welcome page for the given form values")
	fmt.Fprintln(w, "  cache-ping                           Check that the configured Redis cache is reachable")
}
