package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/reallyoldfogie/wows-replay-go/internal/config"
	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
	"github.com/reallyoldfogie/wows-replay-go/internal/metrics"
	"github.com/reallyoldfogie/wows-replay-go/wowsr"
	"github.com/reallyoldfogie/wows-replay-go/wowsr/analysis"
)

// result is one line of output.
type result struct {
	File     string            `json:"file"`
	Player   string            `json:"player,omitempty"`
	Vehicle  string            `json:"vehicle,omitempty"`
	Map      string            `json:"map,omitempty"`
	DateTime string            `json:"dateTime,omitempty"`
	Version  string            `json:"version,omitempty"`
	Packets  int               `json:"packets"`
	Summary  *analysis.Summary `json:"summary,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func analyze(path, root string) result {
	res := result{File: filepath.Base(path)}

	r, err := wowsr.Open(path, root)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Player = r.Meta.PlayerName
	res.Vehicle = r.Meta.PlayerVehicle
	res.Map = r.Meta.MapDisplayName
	res.DateTime = r.Meta.DateTime
	res.Version = r.Version.String()
	res.Packets = len(r.Packets)

	sum, err := analysis.Analyze(r)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Summary = sum
	return res
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <replay.wowsreplay> [replay2.wowsreplay ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Decodes replays and prints one JSON match summary per file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "", "YAML config file (default $WOWSR_CONFIG)")
	defs := flag.String("defs", "", "Entity definitions root (overrides config)")
	metricsAddr := flag.String("metrics", "", "Serve prometheus metrics on this address, e.g. :2112")
	jobs := flag.Int("j", runtime.NumCPU(), "Replays decoded in parallel")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Log.Fatalf("load config: %v", err)
	}
	logging.Configure(cfg.GetLogLevel(), cfg.GetLogFormat())

	root := cfg.GetDefinitionsRoot()
	if *defs != "" {
		root = *defs
	}
	addr := cfg.Metrics.Addr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	if addr != "" {
		metrics.StartHTTP(addr)
	}

	files := flag.Args()
	results := make([]result, len(files))

	if *jobs < 1 {
		*jobs = 1
	}
	var g errgroup.Group
	g.SetLimit(*jobs)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = analyze(file, root)
			return nil
		})
	}
	_ = g.Wait()

	enc := json.NewEncoder(os.Stdout)
	exitCode := 0
	for _, res := range results {
		if res.Error != "" {
			exitCode = 1
		}
		if err := enc.Encode(res); err != nil {
			logging.Log.Fatalf("write output: %v", err)
		}
	}
	os.Exit(exitCode)
}
