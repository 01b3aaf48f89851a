// Copyright 2025 go-highway Authors
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

// Package routing consults an externally supplied oracle that names a
// compute provider for a given input byte size. The adapter uses the result
// for telemetry only; it has no effect on which kernel actually runs.
package routing

import "os"

// Oracle names a compute provider for a byte-sized piece of work. The
// oracle's contract is total: Route never fails.
type Oracle interface {
	Route(byteSize uint64) string
}

// Config selects which Oracle implementation NewOracle builds.
type Config struct {
	// UseLinkedOracle selects the cgo-bound scheinfer_route_task oracle when
	// the binary was built with the vextra_oracle tag. It is ignored
	// otherwise: without that tag only the stub oracle is available.
	UseLinkedOracle bool
}

// NewOracle returns the Oracle appropriate for this build. With the
// vextra_oracle build tag and UseLinkedOracle set, it returns an Oracle
// backed by the externally linked scheinfer_route_task symbol; otherwise it
// returns a deterministic stub oracle suitable for tests and for hosts that
// never link a routing oracle.
func NewOracle(cfg Config) Oracle {
	if cfg.UseLinkedOracle {
		if o := newLinkedOracle(); o != nil {
			return o
		}
	}
	return StubOracle{}
}

// ConfigFromEnv builds a Config from VEXTRA_ROUTE_ORACLE, in the style of
// hwy.NoSimdEnv: setting it to "linked" requests the cgo-bound oracle. Any
// other value, including unset, leaves UseLinkedOracle false.
func ConfigFromEnv() Config {
	return Config{UseLinkedOracle: os.Getenv("VEXTRA_ROUTE_ORACLE") == "linked"}
}

// StubOracle names every byte size "cpu" without consulting anything
// external. It is the default when no oracle is linked.
type StubOracle struct{}

func (StubOracle) Route(uint64) string { return "cpu" }
