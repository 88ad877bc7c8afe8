// Package main implements binaryinsight, a binary inspection tool that
// reports format, security features, sections, symbols, strings and hashes
// for ELF, PE and Mach-O executables.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"github.com/ismailtsdln/BinaryInsight/internal/binfile"
	"github.com/ismailtsdln/BinaryInsight/internal/browse"
	"github.com/ismailtsdln/BinaryInsight/internal/config"
	"github.com/ismailtsdln/BinaryInsight/internal/report"
	"github.com/ismailtsdln/BinaryInsight/internal/yarascan"
)

const version = "1.0.0"

// CLI defines the command-line interface structure
type CLI struct {
	File    string `arg:"" optional:"" name:"file" help:"Binary file to analyze" type:"path"`
	Report  bool   `short:"r" help:"Print a static analysis report instead of the interactive browser"`
	JSON    bool   `short:"j" name:"json" help:"Print the analysis as JSON (implies --report)"`
	Yara    string `short:"y" name:"yara" help:"YARA rule file to scan the binary with" type:"path"`
	Config  string `short:"c" name:"config" help:"Config file (YAML)" type:"path"`
	NoColor bool   `name:"no-color" help:"Disable colored output"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Version bool   `short:"V" name:"version" help:"Display version information"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("binaryinsight"),
		kong.Description("Inspect ELF, PE and Mach-O binaries: security features, sections, symbols, strings, hashes and entropy."),
		kong.UsageOnError(),
	)

	if cli.Version {
		fmt.Printf("binaryinsight %s\n", version)
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cli.File == "" {
		fmt.Fprintln(os.Stderr, "binaryinsight: no input file (see --help)")
		os.Exit(1)
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "binaryinsight: %v\n", err)
		os.Exit(1)
	}

	bin, err := binfile.Load(cli.File, binfile.Options{MinStringLength: cfg.MinStringLength})
	if err != nil {
		fmt.Fprintf(os.Stderr, "binaryinsight: %s: %v\n", cli.File, err)
		os.Exit(1)
	}
	log.WithFields(log.Fields{
		"file":   bin.Name,
		"format": bin.Info.Format,
		"arch":   bin.Info.Arch,
	}).Debug("binary loaded")

	ruleFile := cli.Yara
	if ruleFile == "" {
		ruleFile = cfg.RuleFile
	}
	var (
		yaraRan     bool
		yaraMatches []string
	)
	if ruleFile != "" {
		rules, err := os.ReadFile(ruleFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "binaryinsight: %s: %v\n", ruleFile, err)
			os.Exit(1)
		}
		yaraMatches, err = yarascan.Scan(bin.Data, string(rules))
		if err != nil {
			fmt.Fprintf(os.Stderr, "binaryinsight: yara scan: %v\n", err)
			os.Exit(1)
		}
		yaraRan = true
		log.WithField("matches", len(yaraMatches)).Debug("yara scan complete")
	}

	switch {
	case cli.JSON:
		if err := report.WriteJSON(os.Stdout, bin, yaraMatches); err != nil {
			fmt.Fprintf(os.Stderr, "binaryinsight: %v\n", err)
			os.Exit(1)
		}
	case cli.Report:
		mode := report.ParseColorMode(cfg.Color)
		if cli.NoColor {
			mode = report.ColorNever
		}
		report.Write(os.Stdout, bin, report.Options{
			Color:       report.ShouldUseColor(mode),
			DisasmLimit: cfg.DisasmLimit,
			MaxSymbols:  cfg.MaxSymbols,
			MaxStrings:  cfg.MaxStrings,
			YaraRan:     yaraRan,
			YaraMatches: yaraMatches,
		})
	default:
		if err := browse.Run(bin); err != nil {
			fmt.Fprintf(os.Stderr, "binaryinsight: %v\n", err)
			os.Exit(1)
		}
	}
}
