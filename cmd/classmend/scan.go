package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"classmend/internal/fix"
)

func cmdScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	in := fs.String("in", "", "Primary input jar")
	ref := fs.String("ref", "", "Reference jar for ancestor resolution")
	configPath := fs.String("config", "", "Optional YAML config")
	asJSON := fs.Bool("json", false, "Print the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("--in is required")
	}

	cfg, err := loadConfig(*configPath, "")
	if err != nil {
		return err
	}

	rep, err := fix.Transform(*in, *ref, "", cfg)
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("classes %d, resources %d, dirs %d, excluded %d\n",
		rep.Classes, rep.Resources, rep.Directories, rep.Excluded)
	fmt.Printf("constructors to trim: %d\n", rep.TrimmedConstructors)
	fmt.Printf("override markers to add: %d\n", rep.MarkersAdded)
	for _, f := range rep.Fixes {
		fmt.Printf("  %-18s %s.%s\n", f.Kind, f.Class, f.Method)
	}
	return nil
}
