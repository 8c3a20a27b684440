package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/xtls/dnsquery/query"
	"github.com/xtls/dnsquery/wire"
)

func newQueryCommand() *command {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	name := fs.String("name", "", "question name, e.g. example.com.")
	qtype := fs.String("type", "A", "question type mnemonic (A, AAAA, NS, CNAME, SOA, PTR, AXFR, IXFR)")
	server := fs.String("server", "", "server address or hostname")
	transport := fs.String("transport", "udp", "udp|udp-fallback|tcp|tls|https|quic")
	port := fs.Uint("port", 0, "server port (0 = transport default)")
	timeout := fs.Duration("timeout", 5*time.Second, "per-query timeout")

	return &command{
		name:  "query",
		short: "send one query over a single transport",
		flag:  fs,
		run: func(args []string) error {
			return doQuery(*name, *qtype, *server, *transport, uint16(*port), *timeout)
		},
	}
}

func doQuery(name, qtypeName, server, transport string, port uint16, timeout time.Duration) error {
	if name == "" || server == "" {
		return fmt.Errorf("-name and -server are required")
	}
	qtype, err := parseType(qtypeName)
	if err != nil {
		return err
	}

	q := buildQuestion(name, qtype)
	opts := []query.Option{query.WithTimeout(timeout)}
	if port != 0 {
		opts = append(opts, query.WithPort(port))
	}

	ctx := context.Background()
	resp, err := runTransport(ctx, transport, q, server, opts)
	if err != nil {
		return err
	}
	fmt.Println(resp.ToText())
	return nil
}

// runTransport is the single dispatch point shared by the query and race
// subcommands: one switch over the transport name, one query package call.
func runTransport(ctx context.Context, transport string, q []byte, server string, opts []query.Option) (*wire.Message, error) {
	switch transport {
	case "udp":
		resp, err := query.UDP(ctx, q, server, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Message, nil
	case "udp-fallback":
		resp, _, err := query.UDPWithFallback(ctx, q, server, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Message, nil
	case "tcp":
		resp, err := query.TCP(ctx, q, server, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Message, nil
	case "tls":
		resp, err := query.TLS(ctx, q, server, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Message, nil
	case "https":
		resp, err := query.HTTPS(ctx, q, server, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Message, nil
	case "quic":
		resp, err := query.QUIC(ctx, q, server, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Message, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func parseType(name string) (uint16, error) {
	switch name {
	case "A":
		return wire.TypeA, nil
	case "NS":
		return wire.TypeNS, nil
	case "CNAME":
		return wire.TypeCNAME, nil
	case "SOA":
		return wire.TypeSOA, nil
	case "PTR":
		return wire.TypePTR, nil
	case "AAAA":
		return wire.TypeAAAA, nil
	case "AXFR":
		return wire.TypeAXFR, nil
	case "IXFR":
		return wire.TypeIXFR, nil
	default:
		return 0, fmt.Errorf("unsupported type mnemonic %q", name)
	}
}
