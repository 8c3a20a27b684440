package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtls/dnsquery/query"
)

func newRaceCommand() *command {
	fs := flag.NewFlagSet("race", flag.ExitOnError)
	name := fs.String("name", "", "question name, e.g. example.com.")
	qtype := fs.String("type", "A", "question type mnemonic")
	server := fs.String("server", "", "server address or hostname")
	transports := fs.String("transports", "udp,tcp,tls", "comma-separated transports to race")
	timeout := fs.Duration("timeout", 5*time.Second, "per-transport timeout")

	return &command{
		name:  "race",
		short: "send one query over several transports, print the first reply",
		flag:  fs,
		run: func(args []string) error {
			return doRace(*name, *qtype, *server, *transports, *timeout)
		},
	}
}

// doRace fans a single query out across several transports concurrently and
// prints whichever reply lands first, cancelling the rest. This is an
// explicit CLI-level opt-in, not a library primitive: query's transports
// stay single-call/single-transport per call, exactly as specified.
func doRace(name, qtypeName, server, transportList string, timeout time.Duration) error {
	if name == "" || server == "" {
		return fmt.Errorf("-name and -server are required")
	}
	qtype, err := parseType(qtypeName)
	if err != nil {
		return err
	}
	q := buildQuestion(name, qtype)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan string, 1)

	for _, t := range strings.Split(transportList, ",") {
		t := strings.TrimSpace(t)
		if t == "" {
			continue
		}
		g.Go(func() error {
			opts := []query.Option{query.WithTimeout(timeout)}
			msg, err := runTransport(gctx, t, q, server, opts)
			if err != nil {
				return nil // a losing transport's error does not fail the race
			}
			select {
			case results <- t + ":\n" + msg.ToText():
				cancel()
			default:
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case text := <-results:
		fmt.Println(text)
		return nil
	case err := <-done:
		if err != nil {
			return err
		}
		select {
		case text := <-results:
			fmt.Println(text)
			return nil
		default:
			return fmt.Errorf("no transport succeeded")
		}
	}
}
