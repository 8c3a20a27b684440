// Command dnsquery exercises the query/xfr/wire packages from a terminal:
// a query subcommand that uses any one transport, a race subcommand that
// tries several at once, and a zone-transfer drain.
package main

import (
	"fmt"
	"os"

	"github.com/xtls/dnsquery/common/log"
)

type stderrHandler struct{}

func (stderrHandler) Handle(msg log.Message) {
	fmt.Fprintln(os.Stderr, msg.String())
}

func main() {
	log.RegisterHandler(stderrHandler{})

	register(newQueryCommand())
	register(newRaceCommand())
	register(newXfrCommand())

	dispatchMain()
}
