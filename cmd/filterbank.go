package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/spectral"
	"github.com/RyanBlaney/sonido-mfcc/features/config"
)

var filterbankSampleRate int

var filterbankCmd = &cobra.Command{
	Use:   "filterbank",
	Short: "Show the mel filter bank a preset uses at a sample rate",
	Long: `Print the triangular mel filters used for feature extraction: the FFT
bins each filter spans, its centre frequency and its total weight. Filters
with zero weight collapsed onto a single bin and contribute nothing.`,
	Args: cobra.NoArgs,
	RunE: runFilterbank,
}

func init() {
	rootCmd.AddCommand(filterbankCmd)

	filterbankCmd.Flags().IntVar(&filterbankSampleRate, "sample-rate", 44100, "sample rate in Hz")
	filterbankCmd.Flags().String("preset", "enhanced", "feature preset (simple, enhanced)")
	annotateConfigKey(filterbankCmd.Flags(), "preset", "extraction.preset")
}

// filterInfo describes one filter of a bank
type filterInfo struct {
	Index    int     `json:"index" yaml:"index"`
	LeftBin  int     `json:"left_bin" yaml:"left_bin"`
	CenterHz float64 `json:"center_hz" yaml:"center_hz"`
	Center   int     `json:"center_bin" yaml:"center_bin"`
	RightBin int     `json:"right_bin" yaml:"right_bin"`
	Weight   float64 `json:"weight" yaml:"weight"`
}

func runFilterbank(cmd *cobra.Command, args []string) error {
	preset, err := appConfig.Preset()
	if err != nil {
		return err
	}
	cfg, err := config.ConfigForPreset(preset)
	if err != nil {
		return err
	}

	bank, err := spectral.DefaultFilterBankCache().Get(spectral.FilterBankKey{
		SampleRate: filterbankSampleRate,
		NumFilters: cfg.NumMelFilters,
		NFFT:       cfg.FrameSize,
		LowFreq:    cfg.LowFreq,
		HighFreq:   cfg.HighFreqFor(filterbankSampleRate),
	})
	if err != nil {
		return err
	}

	infos := make([]filterInfo, len(bank.Filters))
	for m, filter := range bank.Filters {
		weight := 0.0
		for _, v := range filter {
			weight += v
		}
		center := bank.Bins[m+1]
		infos[m] = filterInfo{
			Index:    m,
			LeftBin:  bank.Bins[m],
			Center:   center,
			CenterHz: float64(center) * float64(filterbankSampleRate) / float64(cfg.FrameSize),
			RightBin: bank.Bins[m+2],
			Weight:   weight,
		}
	}

	out := cmd.OutOrStdout()
	handled, err := writeStructured(out, appConfig.OutputFormat, infos)
	if handled {
		return err
	}

	fmt.Fprintf(out, "%s preset, %d filters over %d bins at %d Hz\n\n",
		title(string(preset)), len(infos), bank.NumBins(), filterbankSampleRate)

	tw := newTabWriter(out)
	fmt.Fprintln(tw, "FILTER\tLEFT\tCENTER\tRIGHT\tCENTER HZ\tWEIGHT")
	for _, f := range infos {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.1f\t%.3f\n", f.Index, f.LeftBin, f.Center, f.RightBin, f.CenterHz, f.Weight)
	}
	return tw.Flush()
}
