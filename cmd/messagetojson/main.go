package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/succinct/internal/export"
	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/rs/zerolog/log"
)

const usage = "Usage: messagetojson teamid messagefile"

var (
	errUsage        = errors.New("usage")
	errFileTooShort = errors.New("message file too short")
	errFileTooLong  = errors.New("message file too long")
)

func main() {
	observability.InitLogger("messagetojson")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("messagetojson failed")
		os.Exit(1)
	}
}

// run prints the JSON record for one standalone message file, such as the
// output of fragextract or msgwrite.
func run(args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}
	team, err := fragment.ParseTeamID(args[0])
	if err != nil {
		return err
	}

	b, err := readMessageFile(args[1])
	if err != nil {
		return err
	}
	m, err := message.Parse(b)
	observability.RecordDecode(typeLabel(b), err == nil)
	if err != nil {
		return fmt.Errorf("%s: malformed message: %w", args[1], err)
	}
	doc, err := export.JSON(team, m)
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(doc, '\n'))
	return err
}

func readMessageFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, message.MaxLen+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	switch {
	case len(b) < message.HeaderLen:
		return nil, fmt.Errorf("%s: %w", path, errFileTooShort)
	case len(b) > message.MaxLen:
		return nil, fmt.Errorf("%s: %w", path, errFileTooLong)
	}
	return b, nil
}

func typeLabel(b []byte) string {
	return message.Type(b[0]).String()
}
