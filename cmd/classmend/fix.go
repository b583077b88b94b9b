package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"classmend/internal/fix"
)

func cmdFix(args []string) error {
	fs := flag.NewFlagSet("fix", flag.ExitOnError)
	in := fs.String("in", "", "Primary input jar")
	ref := fs.String("ref", "", "Reference jar for ancestor resolution")
	out := fs.String("out", "", "Output jar")
	configPath := fs.String("config", "", "Optional YAML config")
	marker := fs.String("marker", "", "Override annotation descriptor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("--in and --out are required")
	}

	cfg, err := loadConfig(*configPath, *marker)
	if err != nil {
		return err
	}

	rep, err := fix.Transform(*in, *ref, *out, cfg)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", *out)
	fmt.Fprintln(os.Stderr, string(data))
	return nil
}

func loadConfig(path, marker string) (*fix.Config, error) {
	cfg := fix.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = fix.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}
	if marker != "" {
		cfg.Marker = marker
	}
	return cfg, nil
}
