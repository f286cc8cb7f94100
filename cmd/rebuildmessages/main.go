package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danmuck/succinct/internal/archive"
	"github.com/danmuck/succinct/internal/config"
	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/danmuck/succinct/internal/pipeline"
	"github.com/danmuck/succinct/internal/spool"
	"github.com/rs/zerolog/log"
)

const usage = "Usage: rebuildmessages [-config file] [-dir fragments] teamid [startseq]"

var errUsage = errors.New("usage")

func main() {
	observability.InitLogger("rebuildmessages")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("rebuildmessages failed")
		os.Exit(1)
	}
}

// run walks a team's placed fragments and exports every decodable message as
// json_dir/<team>/<seq>-<n>.json, printing each path written.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("rebuildmessages", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "succinct.toml", "shared succinct config")
	dirFlag := fs.String("dir", "", "fragment directory (defaults to the team's spool)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return errUsage
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	team, err := fragment.ParseTeamID(fs.Arg(0))
	if err != nil {
		return err
	}
	var start uint32
	if fs.NArg() == 2 {
		if start, err = fragment.ParseSequence(fs.Arg(1)); err != nil {
			return err
		}
	}
	dir := *dirFlag
	if dir == "" {
		dir = spool.Dir(cfg.SpoolDir, team)
	}

	var arc *archive.Archive
	if cfg.ArchivePath != "" {
		if arc, err = archive.Open(cfg.ArchivePath); err != nil {
			return err
		}
		defer arc.Close()
	}

	outDir := filepath.Join(cfg.JSONDir, team.String())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	p := pipeline.New(team, fragment.NewDirStore(dir), arc)
	decoded, skipped, err := p.Rebuild(start, func(res pipeline.Result) error {
		name := fmt.Sprintf("%s-%d.json", fragment.FormatSequence(res.Seq), res.MsgNum)
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, append(res.JSON, '\n'), 0o644); err != nil {
			return err
		}
		_, err := fmt.Fprintln(stdout, path)
		return err
	})
	log.Info().
		Str("team", team.String()).
		Int("decoded", decoded).
		Int("skipped", skipped).
		Msg("rebuild finished")
	if err != nil {
		return err
	}
	return observability.WriteMetricsFile(cfg.MetricsFile)
}
