package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
	"github.com/reallyoldfogie/wows-replay-go/wowsr"
)

// printReport writes the -v details of one replay.
func printReport(rep *wowsr.Report) {
	fmt.Printf("   version:  %s\n", rep.Version)
	fmt.Printf("   duration: %d s\n", rep.Duration)
	fmt.Printf("   size:     %d bytes\n", rep.Bytes)
	fmt.Printf("   packets:  %d\n", rep.Packets)

	types := make([]wowsr.PacketType, 0, len(rep.Types))
	for typ := range rep.Types {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, typ := range types {
		fmt.Printf("     %-18s %d\n", typ, rep.Types[typ])
	}
	for _, w := range rep.Warnings {
		fmt.Printf("   ⚠️  %s\n", w)
	}
}

// decode runs the full pipeline and reports payloads the catalog could not
// resolve.
func decode(file, defs string, quiet bool) error {
	r, err := wowsr.Open(file, defs)
	if err != nil {
		return err
	}
	if quiet {
		return nil
	}
	fmt.Printf("   decoded:  %d packets, %d unresolved\n", len(r.Packets), r.Unresolved())
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <replay.wowsreplay> [replay2.wowsreplay ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Checks that replay files decrypt, inflate and frame cleanly.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	verbose := flag.Bool("v", false, "Print version, duration, packet counts and warnings")
	quiet := flag.Bool("q", false, "Quiet mode (errors only)")
	defs := flag.String("defs", "", "Also decode entities against this definitions root")
	flag.Parse()

	logging.Init()
	if *verbose {
		logging.Configure("debug", os.Getenv("LOG_FORMAT"))
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	files := flag.Args()
	failed := 0

	for _, file := range files {
		name := filepath.Base(file)

		var (
			rep *wowsr.Report
			err error
		)
		if *quiet {
			err = wowsr.ValidateFileQuiet(file)
		} else {
			rep, err = wowsr.Inspect(file)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %s: %v\n", name, err)
			failed++
			continue
		}
		if !*quiet {
			fmt.Printf("✅ %s: valid\n", name)
			if *verbose {
				printReport(rep)
			}
		}

		if *defs != "" {
			if err := decode(file, *defs, *quiet); err != nil {
				fmt.Fprintf(os.Stderr, "❌ %s: decode: %v\n", name, err)
				failed++
			}
		}
	}

	if failed > 0 {
		if len(files) > 1 {
			fmt.Fprintf(os.Stderr, "\n%d of %d replay files failed\n", failed, len(files))
		}
		os.Exit(1)
	}
	if !*quiet && len(files) > 1 {
		fmt.Printf("\nAll %d replay files are valid!\n", len(files))
	}
}
