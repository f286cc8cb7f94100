package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/danmuck/succinct/internal/config"
	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/rs/zerolog/log"
)

const usage = "Usage: fragextract [-config file] directory seq msgnum"

var errUsage = errors.New("usage")

func main() {
	observability.InitLogger("fragextract")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("fragextract failed")
		os.Exit(1)
	}
}

// run writes the raw bytes of one message, header included, to stdout.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fragextract", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "succinct.toml", "shared succinct config")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 3 {
		return errUsage
	}
	args = fs.Args()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	seq, err := fragment.ParseSequence(args[1])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[2])
	if err != nil || n <= 0 || n > fragment.MaxMessagesPerFragment {
		return fmt.Errorf("%s: invalid message number", args[2])
	}

	ex, err := fragment.NewReader(fragment.NewDirStore(args[0])).Extract(seq, n)
	observability.RecordExtraction(err == nil)
	if merr := observability.WriteMetricsFile(cfg.MetricsFile); merr != nil {
		log.Warn().Err(merr).Str("file", cfg.MetricsFile).Msg("could not write metrics")
	}
	if err != nil {
		return fmt.Errorf("could not extract message %s/%s: %w", args[1], args[2], err)
	}
	_, err = stdout.Write(ex.Bytes)
	return err
}
