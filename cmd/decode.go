package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"textsteg/internal/alphabet"
	"textsteg/internal/codec"
	"textsteg/internal/history"
)

var (
	decodeFile   string
	decodeOutput string
	decodeSeed   string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Recover a payload hidden in a stego text",
	RunE:  decodeRun,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeFile, "file", "", "Stego text file (required)")
	decodeCmd.Flags().StringVar(&decodeOutput, "output", "", "Recovered payload file (default: stdout)")
	decodeCmd.Flags().StringVar(&decodeSeed, "seed", "", "Passphrase (ignored if --password is set)")
	decodeCmd.MarkFlagRequired("file")
}

func decodeRun(cmd *cobra.Command, args []string) error {
	passphrase, err := resolvePassphrase(decodeSeed)
	if err != nil {
		return err
	}

	algo, err := alphabet.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	stegoBytes, err := os.ReadFile(decodeFile)
	if err != nil {
		return fmt.Errorf("reading stego file %s: %w", decodeFile, err)
	}

	policy := codec.Policy{
		Passphrase: passphrase,
		Bits:       cfg.Bits,
		Algorithm:  algo,
		N:          cfg.N,
	}

	payload, err := codec.Decode(policy, string(stegoBytes))
	if err != nil {
		return err
	}

	if err := writeOutputBytes(decodeOutput, payload); err != nil {
		return err
	}

	debugf("recovered %d bytes", len(payload))

	if db, err := history.OpenDefault(); err == nil {
		defer db.Close()
		db.Record(history.Run{
			Operation:    "decode",
			Algorithm:    cfg.Algorithm,
			Bits:         cfg.Bits,
			N:            cfg.N,
			CorpusPath:   decodeFile,
			PayloadBytes: int64(len(payload)),
		})
	} else {
		debugf("history not recorded: %v", err)
	}

	return nil
}
