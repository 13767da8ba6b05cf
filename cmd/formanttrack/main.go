// Command formanttrack extracts spectral envelopes from speech, computes
// normalization stats and turns predictor output into formant tracks.
//
// Usage:
//
//	formanttrack [--config file] <command> [flags] [files ...]
//
// Examples:
//
//	formanttrack stats --out norm.txt train/*.wav
//	formanttrack extract --stats norm.txt --out env/ test/*.wav
//	formanttrack track --stats norm.txt --params pred/ --out tracks/ test/*.wav
//	formanttrack synth --params pred/spk1_a.txt
//	formanttrack info
//	formanttrack config
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
