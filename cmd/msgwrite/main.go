package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/danmuck/succinct/internal/config"
	"github.com/danmuck/succinct/internal/message"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/rs/zerolog/log"
)

const usage = `Usage:
  msgwrite [-config file] start name time_ms
  msgwrite [-config file] end time_ms
  msgwrite [-config file] join member_pos epoch_ms name id
  msgwrite [-config file] part member_pos epoch_ms
  msgwrite [-config file] locations [member_pos epoch_ms lat lng acc]+
  msgwrite [-config file] chat member_pos epoch_ms msg|-
  msgwrite [-config file] raw type datafile`

var errUsage = errors.New("usage")

func main() {
	observability.InitLogger("msgwrite")
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("msgwrite failed")
		os.Exit(1)
	}
}

// run writes one serialized message to stdout. A chat text of "-" is read
// from stdin.
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("msgwrite", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "succinct.toml", "shared succinct config")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	args = fs.Args()
	if len(args) < 1 {
		return errUsage
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	b, err := build(cfg, args[0], args[1:], stdin)
	if err != nil {
		return err
	}
	_, err = stdout.Write(b)
	return err
}

// build returns the serialized message for one subcommand.
func build(cfg config.Config, kind string, args []string, stdin io.Reader) ([]byte, error) {
	var (
		m   message.Message
		err error
	)
	switch kind {
	case "start":
		if len(args) != 2 {
			return nil, errUsage
		}
		var ms int64
		if ms, err = parseEpoch(args[1]); err == nil {
			m, err = message.NewTeamStart(ms, args[0])
		}
	case "end":
		if len(args) != 1 {
			return nil, errUsage
		}
		var ms int64
		if ms, err = parseEpoch(args[0]); err == nil {
			m, err = message.NewTeamEnd(ms)
		}
	case "join":
		if len(args) != 4 {
			return nil, errUsage
		}
		m, err = buildJoin(args)
	case "part":
		if len(args) != 2 {
			return nil, errUsage
		}
		m, err = buildPart(args)
	case "locations":
		if len(args) == 0 || len(args)%5 != 0 {
			return nil, errUsage
		}
		m, err = buildLocations(args)
	case "chat":
		if len(args) != 3 {
			return nil, errUsage
		}
		m, err = buildChat(cfg, args, stdin)
	case "raw":
		if len(args) != 2 {
			return nil, errUsage
		}
		return buildRaw(args)
	default:
		return nil, fmt.Errorf("%s: unknown type", kind)
	}
	if err != nil {
		return nil, err
	}
	return message.Serialize(m)
}

func buildJoin(args []string) (message.Message, error) {
	member, rel, err := parseMemberTime(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return message.NewMemberJoin(member, rel, args[2], args[3])
}

func buildPart(args []string) (message.Message, error) {
	member, rel, err := parseMemberTime(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return message.NewMemberPart(member, rel), nil
}

func buildLocations(args []string) (message.Message, error) {
	records := make([]message.LocationRecord, 0, len(args)/5)
	for i := 0; i < len(args); i += 5 {
		member, rel, err := parseMemberTime(args[i], args[i+1])
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(args[i+2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid latitude", args[i+2])
		}
		lng, err := strconv.ParseFloat(args[i+3], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid longitude", args[i+3])
		}
		acc, err := strconv.Atoi(args[i+4])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid accuracy", args[i+4])
		}
		records = append(records, message.LocationRecord{
			Member:   member,
			Time:     rel,
			Lat:      lat,
			Lng:      lng,
			Accuracy: message.AccuracyForMeters(acc),
		})
	}
	return message.NewLocation(records...)
}

func buildChat(cfg config.Config, args []string, stdin io.Reader) (message.Message, error) {
	member, rel, err := parseMemberTime(args[0], args[1])
	if err != nil {
		return nil, err
	}
	text := args[2]
	if text == "-" {
		raw, err := io.ReadAll(io.LimitReader(stdin, int64(cfg.MaxChatBytes)+1))
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		text = string(raw)
	}
	if len(text) > cfg.MaxChatBytes {
		return nil, fmt.Errorf("chat message exceeds set length limit (%d bytes): %w", cfg.MaxChatBytes, message.ErrTooLong)
	}
	return message.NewChat(member, rel, text)
}

func buildRaw(args []string) ([]byte, error) {
	t, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil || t > uint64(message.TypeMagpiForm) {
		return nil, fmt.Errorf("%s: invalid type", args[0])
	}
	payload, err := os.ReadFile(args[1])
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		log.Warn().Str("file", args[1]).Msg("message has zero length")
	}
	return message.EncodeRaw(message.Type(t), payload)
}

func parseMemberTime(memberArg, epochArg string) (uint8, uint32, error) {
	member, err := strconv.ParseUint(memberArg, 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: invalid member number", memberArg)
	}
	ms, err := parseEpoch(epochArg)
	if err != nil {
		return 0, 0, err
	}
	rel, err := message.RelTime(ms)
	if err != nil {
		return 0, 0, err
	}
	return uint8(member), rel, nil
}

func parseEpoch(s string) (int64, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%s: invalid epoch or out of range", s)
	}
	return ms, nil
}
