package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/succinct/internal/config"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/danmuck/succinct/internal/spool"
	"github.com/rs/zerolog/log"
)

const usage = "Usage: placefragment [-config file] fragment [dir]"

var errUsage = errors.New("usage")

func main() {
	observability.InitLogger("placefragment")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("placefragment failed")
		os.Exit(1)
	}
}

// run moves one uploaded fragment into the spool and prints its new path.
// The spool root defaults to spool_dir from the config.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("placefragment", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "succinct.toml", "shared succinct config")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return errUsage
	}

	root := fs.Arg(1)
	if root == "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		root = cfg.SpoolDir
	}

	dst, err := spool.Place(fs.Arg(0), root)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, dst)
	return err
}
