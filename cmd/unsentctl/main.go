// Command unsentctl reads and writes the archive from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"unsent/internal/auth"
	"unsent/internal/client"
	"unsent/internal/logging"
	"unsent/internal/message"
	"unsent/internal/query"

	"github.com/joho/godotenv"
)

const usage = `usage: unsentctl <command> [flags]

commands:
  list   [-q text] [-emotion name]   show the archive, newest first
  send   -text msg [-to name] [-emotion name]
  flag   <id>                        report a message
  random                             show one message at random
  token  [-role anon|service_role] [-ttl 0]

env: UNSENT_URL, UNSENT_KEY, JWT_SECRET
`

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "unsentctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	if cmd == "token" {
		return runToken(rest, stdout)
	}

	baseURL := os.Getenv("UNSENT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/archive"
	}
	ctl := client.NewController(
		client.NewHTTPAPI(baseURL, os.Getenv("UNSENT_KEY")),
		logging.New(os.Getenv("LOG_LEVEL"), "text", stderr),
	)

	switch cmd {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(stderr)
		q := fs.String("q", "", "search text")
		emotion := fs.String("emotion", query.All, "emotion filter")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if ctl.Refresh(ctx) == client.StateDegraded {
			fmt.Fprintln(stderr, "archive unavailable, showing sample messages")
		}
		for _, m := range ctl.View(query.Query{SearchText: *q, Emotion: *emotion}) {
			printMessage(stdout, m)
		}
		return nil

	case "send":
		fs := flag.NewFlagSet("send", flag.ContinueOnError)
		fs.SetOutput(stderr)
		text := fs.String("text", "", "message text")
		to := fs.String("to", "", "recipient")
		emotion := fs.String("emotion", "", "one of "+emotionNames())
		if err := fs.Parse(rest); err != nil {
			return err
		}
		d := message.Draft{Text: *text}
		if *to != "" {
			d.Recipient = to
		}
		if *emotion != "" {
			d.Emotion = emotion
		}
		m, err := ctl.Submit(ctx, d)
		if err != nil {
			return err
		}
		printMessage(stdout, m)
		return nil

	case "flag":
		if len(rest) != 1 {
			return errors.New("flag: want exactly one message id")
		}
		if err := ctl.Flag(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "reported", rest[0])
		return nil

	case "random":
		ctl.Refresh(ctx)
		m, ok := ctl.Random(nil)
		if !ok {
			return errors.New("archive is empty")
		}
		printMessage(stdout, m)
		return nil

	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	role := fs.String("role", auth.RoleAnon, "anon or service_role")
	ttl := fs.Duration("ttl", 0, "lifetime, 0 for none")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("missing env: JWT_SECRET")
	}
	tok, err := auth.NewJWT(secret).Sign(*role, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, tok)
	return nil
}

func printMessage(w io.Writer, m message.Message) {
	fmt.Fprintf(w, "[%s] %s  to %s  (%s)\n  %s\n",
		m.ID, m.CreatedAt.Local().Format(time.DateTime), m.Recipient, m.Emotion, m.Text)
}

func emotionNames() string {
	names := make([]string, len(message.Emotions))
	for i, e := range message.Emotions {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}
