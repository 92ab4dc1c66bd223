package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readPasswordNoEcho reads one line from the terminal with echo switched off.
func readPasswordNoEcho(stdin *os.File) ([]byte, error) {
	if stdin == nil {
		return nil, errors.New("stdin unavailable")
	}
	restore, err := disableEcho(stdin)
	if err != nil {
		return nil, fmt.Errorf("disable terminal echo: %w", err)
	}
	defer restore()
	return readLine(stdin)
}

func readLine(source io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(source).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
