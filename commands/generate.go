// Copyright 2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/warble/pkg/config"
	"github.com/cardinalhq/warble/pkg/sampler"
	"github.com/cardinalhq/warble/pkg/snapshot"
	"github.com/cardinalhq/warble/pkg/stream"
)

var (
	flagSep      string
	flagIter     int64
	flagSIter    uint64
	flagSeed     []int64
	flagDist     string
	flagState    string
	flagSnapshot string
	flagProfiles []string
)

var GenerateCmd = &cobra.Command{
	Use:   "generate [min [max]]",
	Short: "Generate a stream of pseudorandom numbers",
	Long: `Generate writes pseudorandom numbers to stdout, one per separator.
Positional arguments parameterize the distribution (for uniform: min and max).
Without --iter the stream is unbounded; interrupt it to stop.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Generate(cmd, args)
	},
}

func init() {
	GenerateCmd.Flags().StringVar(&flagSep, "sep", "", "separator between generated values")
	GenerateCmd.Flags().Int64VarP(&flagIter, "iter", "n", -1, "number of values to generate (unbounded when unset)")
	GenerateCmd.Flags().Uint64Var(&flagSIter, "siter", 0, "number of produced values between state snapshots")
	GenerateCmd.Flags().Int64SliceVar(&flagSeed, "seed", nil, "generator seed (repeat for a seed sequence)")
	GenerateCmd.Flags().StringVar(&flagDist, "dist", "uniform", "distribution to sample")
	GenerateCmd.Flags().StringVar(&flagState, "state", "", "snapshot file to resume the generator from")
	GenerateCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "file rewritten with each state snapshot")
	GenerateCmd.Flags().StringArrayVar(&flagProfiles, "profile", nil, "yaml option profile (repeatable, merged in order)")
}

func Generate(cmd *cobra.Command, args []string) error {
	raw := map[string]any{}
	for _, fname := range flagProfiles {
		slog.Info("loading profile", "file", fname)
		m, err := config.LoadProfile(fname)
		if err != nil {
			return fmt.Errorf("error loading profile: %w", err)
		}
		maps.Copy(raw, m)
	}

	// explicit flags win over profile values
	if cmd.Flags().Changed("sep") {
		raw["sep"] = flagSep
	}
	if flagIter >= 0 {
		raw["iter"] = uint64(flagIter)
	}
	if flagSIter > 0 {
		raw["siter"] = flagSIter
	}
	if len(flagSeed) > 0 {
		raw["seed"] = flagSeed
	}
	if flagState != "" {
		snap, err := snapshot.Load(flagState)
		if err != nil {
			return fmt.Errorf("error loading state file: %w", err)
		}
		slog.Info("resuming from snapshot", "file", flagState, "id", snap.ID, "stateLength", len(snap.State))
		raw["state"] = snap.State
	}

	spec, err := samplerSpec(flagDist, args, raw)
	if err != nil {
		return err
	}
	smp, err := sampler.Create(spec)
	if err != nil {
		return fmt.Errorf("error creating sampler: %w", err)
	}

	var opts []stream.Option
	if flagSnapshot != "" {
		opts = append(opts, stream.WithStateListener(func(st []uint64) {
			if err := snapshot.Save(flagSnapshot, snapshot.New(nil, st)); err != nil {
				slog.Error("failed to write snapshot", "file", flagSnapshot, "error", err)
			}
		}))
	}

	s, err := stream.NewFromMap(cmd.Context(), smp, raw, opts...)
	if err != nil {
		return err
	}

	return pump(cmd.OutOrStdout(), s)
}

// pump writes every chunk to out, then a trailing newline. The newline goes
// out even when the stream ended with a generation error.
func pump(out io.Writer, s *stream.Stream) error {
	for chunk := range s.Chunks() {
		data := chunk.Data
		if data == nil {
			// object mode: format here, the stream did not
			data = []byte(fmt.Sprintf("%v\n", chunk.Value))
		}
		if _, err := out.Write(data); err != nil {
			s.Close()
			return err
		}
	}
	fmt.Fprintln(out)
	return s.Err()
}

// samplerSpec builds the sampler spec map. A profile may carry a full spec
// under the "sampler" key; otherwise --dist plus the positional parameters
// describe it.
func samplerSpec(dist string, args []string, raw map[string]any) (map[string]any, error) {
	if m, ok := raw["sampler"].(map[string]any); ok {
		return m, nil
	}

	spec := map[string]any{"type": dist}
	params := make([]float64, 0, len(args))
	for _, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid distribution parameter %q: %w", a, err)
		}
		params = append(params, f)
	}
	switch dist {
	case "uniform":
		if len(params) > 0 {
			spec["min"] = params[0]
		}
		if len(params) > 1 {
			spec["max"] = params[1]
		}
	case "constant":
		if len(params) > 0 {
			spec["value"] = params[0]
		}
	}
	return spec, nil
}
