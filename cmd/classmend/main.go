package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "fix":
		err = cmdFix(os.Args[2:])
	case "scan":
		err = cmdScan(os.Args[2:])
	case "dump":
		err = cmdDump(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `classmend — repair compiler metadata in processed jars

Usage:
  classmend fix  --in <jar> --ref <jar> --out <jar>   Rewrite the jar with both fixes applied
  classmend scan --in <jar> [--ref <jar>] [--json]    Dry run: report what would be fixed
  classmend dump --in <jar> --class <name>            Print the decoded model of one class

Flags:
  --in <jar>        Primary input jar
  --ref <jar>       Read-only reference jar for ancestor resolution
  --out <jar>       Output jar (written fresh, every entry exactly once)
  --config <yaml>   Optional config (marker descriptor, exclude prefixes)
  --marker <desc>   Override annotation descriptor (default Ljava/lang/Override;)
  --class <name>    Internal class name, e.g. com/example/Outer$Inner
`)
}
