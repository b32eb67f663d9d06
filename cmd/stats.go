package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"textsteg/internal/corpus"
	"textsteg/internal/history"
	"textsteg/internal/ngram"
)

var (
	statsCorpus string
	statsRecent int
)

// statsCmd is a read-only diagnostic new to this project (SPEC_FULL.md §1.1):
// it reports corpus capacity without encoding anything, or lists recent runs
// from the history database.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report corpus capacity or recent run history",
	RunE:  statsRun,
}

func init() {
	statsCmd.Flags().StringVar(&statsCorpus, "corpus", "", "Corpus file to analyze")
	statsCmd.Flags().IntVar(&statsRecent, "recent", 10, "Number of recent history runs to show when --corpus is absent")
}

func statsRun(cmd *cobra.Command, args []string) error {
	if statsCorpus != "" {
		return statsCorpusRun()
	}
	return statsHistoryRun()
}

func statsCorpusRun() error {
	format, err := corpus.ParseFormat(cfg.CorpusFormat)
	if err != nil {
		return err
	}

	cleaned, err := corpus.Load(statsCorpus, format)
	if err != nil {
		return err
	}

	idx := ngram.Build(cleaned, cfg.N)

	capacityBits := len(idx.UniqueWords) * cfg.Bits
	fmt.Printf("corpus:        %s\n", statsCorpus)
	fmt.Printf("total words:   %d\n", idx.TotalWords)
	fmt.Printf("unique words:  %d\n", len(idx.UniqueWords))
	fmt.Printf("bits/word:     %d\n", cfg.Bits)
	fmt.Printf("rough capacity: %s (%d bits) if every word carried one symbol\n",
		humanize.Bytes(uint64(capacityBits/8)), capacityBits)

	return nil
}

func statsHistoryRun() error {
	db, err := history.OpenDefault()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer db.Close()

	runs, err := db.Recent(statsRecent)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %-7s %-16s bits=%d n=%d payload=%s tokens=%d skips=%d fails=%d  %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.Operation, r.Algorithm, r.Bits, r.N,
			humanize.Bytes(uint64(r.PayloadBytes)), r.TokensEmitted, r.SkipWordsEmitted, r.CapacityFails,
			r.CorpusPath)
	}
	return nil
}
