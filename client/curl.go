package client

import (
	"strings"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// CurlCommand returns a shell command line that repeats a request, for pasting into a terminal
// when investigating a failure.
func CurlCommand(method, target string, body []byte) string {
	var b commandBuilder
	b.add("curl", "-sS", "-X", method, "-H", "Content-Type: "+jsonContentType)
	if len(body) > 0 {
		b.add("--data", string(body))
	}
	b.add(target)
	return b.String()
}
