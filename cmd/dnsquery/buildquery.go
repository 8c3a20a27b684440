package main

import (
	"math/rand"
	"strings"
)

const classIN = 1

// buildQuestion wire-encodes a single-question query message. Neither
// wire nor query build messages — both only consume pre-built wire bytes —
// so the one place in this module that needs to construct a query from a
// name/type pair is this CLI, and it stays deliberately minimal: one
// question, no EDNS, random id.
func buildQuestion(name string, qtype uint16) []byte {
	b := make([]byte, 0, 32+len(name))

	id := uint16(rand.Intn(1 << 16))
	b = append(b, byte(id>>8), byte(id))
	b = append(b, 0, 0) // flags: standard query
	b = append(b, 0, 1) // qdcount=1
	b = append(b, 0, 0) // ancount
	b = append(b, 0, 0) // nscount
	b = append(b, 0, 0) // arcount

	b = appendName(b, name)
	b = append(b, byte(qtype>>8), byte(qtype))
	b = append(b, byte(classIN>>8), byte(classIN))
	return b
}

func appendName(b []byte, name string) []byte {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return append(b, 0)
	}
	for _, label := range strings.Split(name, ".") {
		b = append(b, byte(len(label)))
		b = append(b, label...)
	}
	return append(b, 0)
}
