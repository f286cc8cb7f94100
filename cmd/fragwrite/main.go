package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/rs/zerolog/log"
)

const usage = "Usage: fragwrite [-config file] [-dir dir] [-team hex] [-start seq] [-mtu n] msgtype msgfile"

var errUsage = errors.New("usage")

func main() {
	observability.InitLogger("fragwrite")
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("fragwrite failed")
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("fragwrite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "fragwrite config file")
	dir := fs.String("dir", "", "fragment directory")
	team := fs.String("team", "", "team id (16 hex characters)")
	start := fs.String("start", "", "sequence number to start from")
	mtu := fs.Int("mtu", 0, "maximum fragment size in bytes")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	cfg := defaultWriterConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadWriterConfig(*configPath); err != nil {
			return err
		}
	}
	var startErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.Dir = *dir
		case "team":
			cfg.Team = *team
		case "mtu":
			cfg.MTU = *mtu
		case "start":
			cfg.Start, startErr = fragment.ParseSequence(*start)
		}
	})
	if startErr != nil {
		return startErr
	}

	teamID, err := fragment.ParseTeamID(cfg.Team)
	if err != nil {
		return err
	}
	msgType, err := parseType(fs.Arg(0))
	if err != nil {
		return err
	}
	msg, err := readMessage(msgType, fs.Arg(1))
	if err != nil {
		return err
	}

	w, err := fragment.NewWriter(fragment.NewDirStore(cfg.Dir), teamID, cfg.MTU)
	if err != nil {
		return err
	}
	res, err := w.Write(cfg.Start, msg)
	observability.RecordFragmentWrite(res.Fragments, res.Bytes)
	if err != nil {
		return err
	}
	log.Info().
		Str("team", teamID.String()).
		Str("first", fragment.FormatSequence(res.First)).
		Str("last", fragment.FormatSequence(res.Last)).
		Int("fragments", res.Fragments).
		Int("bytes", res.Bytes).
		Msg("message written")

	return observability.WriteMetricsFile(cfg.MetricsFile)
}

func parseType(s string) (message.Type, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || v > uint64(message.TypeMagpiForm) {
		return 0, fmt.Errorf("%s: invalid message type", s)
	}
	return message.Type(v), nil
}

// readMessage frames the contents of path as a message of type t.
func readMessage(t message.Type, path string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		log.Warn().Str("file", path).Msg("message has zero length")
	}
	return message.EncodeRaw(t, payload)
}
