package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForRequest asks for an edit request on in. Returns "" if the user
// enters nothing.
func PromptForRequest(in io.Reader, out io.Writer) string {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "What should change in the room?")
	fmt.Fprintln(out, "Examples: 'make the sofa dark green velvet'")
	fmt.Fprintln(out, "          'replace the floor lamp with a brass arc lamp'")
	fmt.Fprint(out, "Request: ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		log.Warn().Err(err).Msg("Failed to read request input")
		return ""
	}
	return strings.TrimSpace(input)
}

// PromptForChoice lists options and reads a 1-based choice. Returns -1 when
// the input is empty or not one of the options.
func PromptForChoice(in io.Reader, out io.Writer, question string, options []string) int {
	fmt.Fprintln(out, question)
	for i, o := range options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, o)
	}
	fmt.Fprint(out, "Choice: ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(options) {
		return -1
	}
	return n - 1
}
