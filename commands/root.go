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
	"context"

	"github.com/spf13/cobra"
)

var version = "dev"

var root = &cobra.Command{
	Use:     "warble",
	Short:   "Warble streams pseudorandom numbers with snapshotable generator state",
	Long:    `Warble produces a bounded or unbounded stream of pseudorandom numbers drawn from a parameterized distribution, with deterministic snapshot and resume of the generator's internal state.`,
	Version: version,
}

func Execute(ctx context.Context) error {
	root.AddCommand(GenerateCmd)

	return root.ExecuteContext(ctx)
}
