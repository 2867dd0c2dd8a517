package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForRequest asks for a styling request on in, writing the prompt to
// out. It returns the trimmed answer, which may be empty.
func PromptForRequest(in io.Reader, out io.Writer) string {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "What would you like to wear? Examples:")
	fmt.Fprintln(out, "  'Show me outfits for a summer wedding'")
	fmt.Fprintln(out, "  'Make this look more professional for an interview'")
	fmt.Fprint(out, "Request: ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		log.Warn().Err(err).Msg("Failed to read request input")
		return ""
	}
	return strings.TrimSpace(input)
}
