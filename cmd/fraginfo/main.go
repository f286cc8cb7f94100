package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/rs/zerolog/log"
)

const usage = `Usage:
  fraginfo teamid file
  fraginfo seq file
  fraginfo rawoffset file
  fraginfo msgstarts file
  fraginfo msgspan directory seq msgnum`

var errUsage = errors.New("usage")

func main() {
	observability.InitLogger("fraginfo")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("fraginfo failed")
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	mode, rest := args[0], args[1:]
	switch mode {
	case "msgspan":
		if len(rest) != 3 {
			return errUsage
		}
		return msgSpan(stdout, rest[0], rest[1], rest[2])
	case "teamid", "seq", "rawoffset", "msgstarts":
		if len(rest) != 1 {
			return errUsage
		}
	default:
		return errUsage
	}

	f, err := fragment.OpenFile(rest[0])
	if err != nil {
		return err
	}
	defer f.Close()

	switch mode {
	case "teamid":
		team, err := fragment.ReadTeamID(f)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, team)
		return err
	case "seq":
		seq, err := fragment.ReadSequence(f)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, fragment.FormatSequence(seq))
		return err
	case "rawoffset":
		off, err := fragment.ReadOffsetByte(f)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, off)
		return err
	case "msgstarts":
		n, err := fragment.MessagesStarted(f)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, n)
		return err
	}
	return errUsage
}

func msgSpan(stdout io.Writer, dir, seqArg, msgArg string) error {
	seq, err := fragment.ParseSequence(seqArg)
	if err != nil {
		return err
	}
	n, err := parseMessageNumber(msgArg)
	if err != nil {
		return err
	}
	ex, err := fragment.NewReader(fragment.NewDirStore(dir)).Span(seq, n)
	if err != nil {
		return fmt.Errorf("could not parse message %d: %w", n, err)
	}
	_, err = fmt.Fprintln(stdout, ex.Span)
	return err
}

func parseMessageNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > fragment.MaxMessagesPerFragment {
		return 0, fmt.Errorf("%s: invalid message number", s)
	}
	return n, nil
}
