package command

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompt reads one line from in. A terminal gets the prompt text and has its
// echo turned off.
func prompt(in io.Reader, out io.Writer, text string) ([]byte, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if _, err := io.WriteString(out, text); err != nil {
			return nil, err
		}
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = io.WriteString(out, "\n")
		return b, err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
