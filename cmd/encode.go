package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"textsteg/internal/alphabet"
	"textsteg/internal/codec"
	"textsteg/internal/corpus"
	"textsteg/internal/history"
	"textsteg/internal/progress"
)

var (
	encodeFile   string
	encodeWords  string
	encodeOutput string
	encodeSeed   string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Hide a payload inside a cover corpus",
	RunE:  encodeRun,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeFile, "file", "", "Corpus file (required)")
	encodeCmd.Flags().StringVar(&encodeWords, "words", "", "Payload file to hide (required)")
	encodeCmd.Flags().StringVar(&encodeOutput, "output", "", "Stego output file (default: stdout)")
	encodeCmd.Flags().StringVar(&encodeSeed, "seed", "", "Passphrase (ignored if --password is set)")
	encodeCmd.MarkFlagRequired("file")
	encodeCmd.MarkFlagRequired("words")
}

func encodeRun(cmd *cobra.Command, args []string) error {
	passphrase, err := resolvePassphrase(encodeSeed)
	if err != nil {
		return err
	}

	algo, err := alphabet.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	format, err := corpus.ParseFormat(cfg.CorpusFormat)
	if err != nil {
		return err
	}

	debugf("loading corpus: %s", encodeFile)
	cleaned, err := corpus.Load(encodeFile, format)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(encodeWords)
	if err != nil {
		return fmt.Errorf("reading payload %s: %w", encodeWords, err)
	}

	var bar *progress.Bar
	if flagProgress {
		bar = progress.Start("encoding")
		defer bar.Finish()
	}

	policy := codec.Policy{
		Passphrase:            passphrase,
		Bits:                  cfg.Bits,
		Algorithm:             algo,
		N:                     cfg.N,
		ConsecutiveSkipsLimit: cfg.ConsecutiveSkips,
		DepthSkipThreshold:    cfg.DepthSkip,
	}

	stego, stats, err := codec.Encode(policy, cleaned, payload)
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Update(1)
	}

	if err := writeOutput(encodeOutput, stego); err != nil {
		return err
	}

	debugf("symbols=%d tokens=%d skip_words=%d capacity_fails=%d",
		stats.SymbolsEncoded, stats.TokensEmitted, stats.SkipWordsEmitted, stats.CapacityFails)

	if db, err := history.OpenDefault(); err == nil {
		defer db.Close()
		db.Record(history.Run{
			Operation:        "encode",
			Algorithm:        cfg.Algorithm,
			Bits:             cfg.Bits,
			N:                cfg.N,
			CorpusPath:       encodeFile,
			PayloadBytes:     int64(len(payload)),
			TokensEmitted:    stats.TokensEmitted,
			SkipWordsEmitted: stats.SkipWordsEmitted,
			CapacityFails:    stats.CapacityFails,
		})
	} else {
		debugf("history not recorded: %v", err)
	}

	return nil
}

// resolvePassphrase returns seed unless --password is set, in which case it
// prompts on stderr via x/term and ignores seed entirely (spec §6).
func resolvePassphrase(seed string) (string, error) {
	if !flagPassword {
		return seed, nil
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pw), nil
}

// writeOutput writes data to path, or stdout if path is empty.
func writeOutput(path string, data string) error {
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, data)
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("writing output %s: %w", path, err)
	}
	return nil
}

// writeOutputBytes writes raw bytes to path, or stdout if path is empty.
func writeOutputBytes(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing output %s: %w", path, err)
	}
	return nil
}
