package main

import (
	"flag"
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"classmend/internal/classfile"
	"classmend/internal/jarx"
)

func cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	in := fs.String("in", "", "Input jar")
	className := fs.String("class", "", "Internal class name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *className == "" {
		return fmt.Errorf("--in and --class are required")
	}

	j, err := jarx.Open(*in)
	if err != nil {
		return err
	}
	defer j.Close()

	data, found, err := j.ReadClass(*className)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("class %s not in %s", *className, *in)
	}

	c, err := classfile.Parse(data)
	if err != nil {
		return fmt.Errorf("class %s: %w", *className, err)
	}
	spew.Dump(c)
	return nil
}
