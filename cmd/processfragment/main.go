package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/danmuck/succinct/internal/archive"
	"github.com/danmuck/succinct/internal/config"
	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/danmuck/succinct/internal/pipeline"
	"github.com/rs/zerolog/log"
)

const usage = "Usage: processfragment [-config file] teamid directory seq msgnum msgfile jsonfile magpifile"

var errUsage = errors.New("usage")

func main() {
	observability.InitLogger("processfragment")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("processfragment failed")
		os.Exit(1)
	}
}

// run extracts one message and writes its raw bytes, its form data (forms
// only) and its JSON. Any output path may be "-" for stdout.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("processfragment", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "succinct.toml", "shared succinct config")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 7 {
		return errUsage
	}
	a := fs.Args()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	team, err := fragment.ParseTeamID(a[0])
	if err != nil {
		return err
	}
	seq, err := fragment.ParseSequence(a[2])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(a[3])
	if err != nil || n <= 0 || n > fragment.MaxMessagesPerFragment {
		return fmt.Errorf("%s: invalid message number", a[3])
	}

	var arc *archive.Archive
	if cfg.ArchivePath != "" {
		if arc, err = archive.Open(cfg.ArchivePath); err != nil {
			return err
		}
		defer arc.Close()
	}

	res, err := pipeline.New(team, fragment.NewDirStore(a[1]), arc).Process(seq, n)
	if res.Raw == nil {
		return fmt.Errorf("could not extract message %s/%s: %w", a[2], a[3], err)
	}
	if werr := writeOutput(a[4], stdout, res.Raw); werr != nil {
		return werr
	}
	if err != nil {
		return processError(a[4], err)
	}

	if form, ok := res.Message.(message.MagpiForm); ok {
		if err := writeOutput(a[6], stdout, form.Data); err != nil {
			return err
		}
	}
	if err := writeOutput(a[5], stdout, append(res.JSON, '\n')); err != nil {
		return err
	}

	log.Info().
		Str("team", team.String()).
		Str("seq", fragment.FormatSequence(seq)).
		Int("msgnum", n).
		Str("type", res.Message.Type().String()).
		Int("span", res.Span).
		Msg("message processed")
	return observability.WriteMetricsFile(cfg.MetricsFile)
}

// processError names the message file for decode failures only; export and
// archive errors pass through unchanged.
func processError(msgfile string, err error) error {
	if pipeline.IsDecodeError(err) {
		return fmt.Errorf("%s: malformed message: %w", msgfile, err)
	}
	return err
}

func writeOutput(path string, stdout io.Writer, b []byte) error {
	if path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}
