package main

import (
	"flag"
	"fmt"
	"os"
)

// command mirrors the small cmd/go-style dispatch the teacher uses for its
// own subcommands (main/commands/base.Command): a name, a flag set owned by
// that subcommand, and a Run entry point. No third-party CLI framework is
// pulled in for this — the teacher's own binary doesn't use one either.
type command struct {
	name  string
	short string
	flag  *flag.FlagSet
	run   func(args []string) error
}

var commands []*command

func register(c *command) { commands = append(commands, c) }

func dispatchMain() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	for _, c := range commands {
		if c.name == name {
			if err := c.flag.Parse(os.Args[2:]); err != nil {
				os.Exit(2)
			}
			if err := c.run(c.flag.Args()); err != nil {
				fmt.Fprintln(os.Stderr, "dnsquery "+name+": "+err.Error())
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintf(os.Stderr, "dnsquery: unknown command %q\n", name)
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dnsquery <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.short)
	}
}
