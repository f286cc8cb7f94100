package main

import (
	"flag"
	"log"

	"github.com/danmuck/succinct/internal/config"
)

func main() {
	kind := flag.String("kind", "succinct", "config kind: succinct|fragwrite")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing succinct config file")
	input := flag.String("input", "succinct.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		if _, err := config.LoadConfig(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s", *input)
		return
	}

	target := *output
	if target == "" {
		switch *kind {
		case "succinct":
			target = "succinct.toml"
		case "fragwrite":
			target = "cmd/fragwrite/config.toml"
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
