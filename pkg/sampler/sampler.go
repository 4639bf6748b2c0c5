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

package sampler

import (
	"errors"
	"fmt"

	"github.com/cardinalhq/warble/pkg/config"
	"github.com/cardinalhq/warble/pkg/offkey"
)

// Sampler maps one uniform draw on [0,1) to a value from the target
// distribution. The distribution mathematics live behind this boundary;
// warble only drives it.
type Sampler func(u float64) (float64, error)

type uniformSpec struct {
	Type string  `mapstructure:"type" yaml:"type" json:"type"`
	Min  float64 `mapstructure:"min" yaml:"min" json:"min"`
	Max  float64 `mapstructure:"max" yaml:"max" json:"max"`
}

type constantSpec struct {
	Type  string  `mapstructure:"type" yaml:"type" json:"type"`
	Value float64 `mapstructure:"value" yaml:"value" json:"value"`
}

// Create builds a sampler from a spec map, keyed on spec["type"].
func Create(spec map[string]any) (Sampler, error) {
	if spec == nil {
		return nil, errors.New("missing sampler spec")
	}
	typeAny, ok := spec["type"]
	if !ok {
		return nil, errors.New("missing type in sampler spec")
	}
	typ, ok := typeAny.(string)
	if !ok {
		return nil, errors.New("type in sampler spec is not a string")
	}
	switch typ {
	case "uniform":
		return newUniform(spec)
	case "constant":
		return newConstant(spec)
	default:
		return nil, fmt.Errorf("%w: %s", offkey.ErrUnknownSampler, typ)
	}
}

func newUniform(is map[string]any) (Sampler, error) {
	spec := uniformSpec{Min: 0, Max: 1}
	decoder, err := config.NewMapstructureDecoder(&spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(is); err != nil {
		return nil, err
	}
	if spec.Max <= spec.Min {
		return nil, fmt.Errorf("invalid range: [%v, %v)", spec.Min, spec.Max)
	}
	scale := spec.Max - spec.Min
	min := spec.Min
	return func(u float64) (float64, error) {
		return min + u*scale, nil
	}, nil
}

func newConstant(is map[string]any) (Sampler, error) {
	var spec constantSpec
	decoder, err := config.NewMapstructureDecoder(&spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(is); err != nil {
		return nil, err
	}
	value := spec.Value
	return func(_ float64) (float64, error) {
		return value, nil
	}, nil
}
