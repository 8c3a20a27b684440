package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/xtls/dnsquery/wire"
	"github.com/xtls/dnsquery/xfr"
)

func newXfrCommand() *command {
	fs := flag.NewFlagSet("xfr", flag.ExitOnError)
	zone := fs.String("zone", "", "zone origin, e.g. example.com.")
	server := fs.String("server", "", "server address")
	port := fs.Uint("port", 53, "server port")
	kind := fs.String("kind", "axfr", "axfr|ixfr")
	serial := fs.Uint("serial", 0, "base SOA serial for ixfr")
	timeout := fs.Duration("timeout", 10*time.Second, "per-message timeout")
	lifetime := fs.Duration("lifetime", 2*time.Minute, "overall transfer lifetime")

	return &command{
		name:  "xfr",
		short: "run AXFR/IXFR against a server and print every RR received",
		flag:  fs,
		run: func(args []string) error {
			return doXfr(*zone, *server, uint16(*port), *kind, uint32(*serial), *timeout, *lifetime)
		},
	}
}

// cliManager and cliInbound are the CLI's own tiny TransactionManager/
// Inbound: printing received messages instead of committing them to a real
// zone, which is exactly the role spec.md's "opaque TransactionManager"
// leaves for a caller.
type cliManager struct {
	origin wire.Name
	class  uint16
}

func (m cliManager) Origin() wire.Name { return m.origin }
func (m cliManager) Class() uint16     { return m.class }

type cliInbound struct {
	sawSOA int
}

func (c *cliInbound) Put(msg *wire.Message) (bool, error) {
	for _, rr := range msg.Answer {
		fmt.Println(rr.Text())
		if rr.Type == wire.TypeSOA {
			c.sawSOA++
		}
	}
	// a single-message AXFR/IXFR response framed between two SOA records at
	// its start and end marks the end of the transfer.
	return c.sawSOA >= 2, nil
}

func doXfr(zone, server string, port uint16, kindName string, serial uint32, timeout, lifetime time.Duration) error {
	if zone == "" || server == "" {
		return fmt.Errorf("-zone and -server are required")
	}

	kind := xfr.KindAXFR
	qtype := wire.TypeAXFR
	if kindName == "ixfr" {
		kind = xfr.KindIXFR
		qtype = wire.TypeIXFR
	}

	q := buildQuestion(zone, uint16(qtype))
	cfg := xfr.Config{
		Port:     port,
		Query:    q,
		Serial:   serial,
		Timeout:  timeout,
		Lifetime: lifetime,
		UDPMode:  xfr.UDPModeNever,
	}

	manager := cliManager{origin: wire.Name(zone), class: classIN}
	inbound := &cliInbound{}

	return xfr.Drain(context.Background(), server, manager, inbound, kind, cfg)
}
