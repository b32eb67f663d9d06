// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"textsteg/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags shared by encode/decode.
var (
	flagBits         int
	flagAlgorithm    string
	flagN            int
	flagConsecutive  int
	flagDepthSkip    int
	flagCorpusFormat string
	flagPassword     bool
	flagProgress     bool
	flagDebug        bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "textsteg",
	Short: "Hide and recover payloads in plain-text cover corpora",
	Long: `textsteg is a linguistic steganography codec. It hides a binary
payload inside ordinary prose by choosing, word by word, which corpus word
to emit next, keyed by a shared passphrase.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagBits, "bits", 0, "Bits per symbol (1-8)")
	rootCmd.PersistentFlags().StringVar(&flagAlgorithm, "algorithm", "", "Algorithm: char-bit | char-bit-shuffle | char-value")
	rootCmd.PersistentFlags().IntVar(&flagN, "n", 0, "N-gram order for word selection")
	rootCmd.PersistentFlags().IntVar(&flagConsecutive, "consecutive-skips", -1, "Max consecutive skip words emitted per symbol retry")
	rootCmd.PersistentFlags().IntVar(&flagDepthSkip, "depth-skip", -1, "Backoff depth at or below which a skip word is preferred")
	rootCmd.PersistentFlags().StringVar(&flagCorpusFormat, "corpus-format", "", "Corpus format: auto | text | html")
	rootCmd.PersistentFlags().BoolVar(&flagPassword, "password", false, "Prompt for passphrase instead of reading it as an argument")
	rootCmd.PersistentFlags().BoolVar(&flagProgress, "progress", false, "Show a terminal progress bar")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(Version)
		return nil
	},
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagBits != 0 {
		cfg.Bits = flagBits
	}
	if flagAlgorithm != "" {
		cfg.Algorithm = flagAlgorithm
	}
	if flagN != 0 {
		cfg.N = flagN
	}
	if flagConsecutive >= 0 {
		cfg.ConsecutiveSkips = flagConsecutive
	}
	if flagDepthSkip >= 0 {
		cfg.DepthSkip = flagDepthSkip
	}
	if flagCorpusFormat != "" {
		cfg.CorpusFormat = flagCorpusFormat
	}
	if flagDebug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		log.SetOutput(os.Stderr)
		log.SetPrefix("[textsteg] ")
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}
