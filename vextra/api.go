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

package vextra

import "github.com/groovy-byte/vextra/internal/routing"

// This file is the module's three-symbol adapter surface, mirroring the
// original C ABI's ggml_backend_vextra_buffer_type / ggml_backend_vextra_init
// / ggml_backend_is_vextra exactly.

// VextraInit constructs a fresh Vextra backend instance owning a small
// context: a routing oracle and a dequantization kernel chosen at startup.
// The oracle is selected via routing.ConfigFromEnv, mirroring how
// hwy.NoSimdEnv toggles dispatch without changing this function's signature.
func VextraInit() *Backend {
	oracle := routing.NewOracle(routing.ConfigFromEnv())
	return NewBackend(oracle, nil, nil)
}

// VextraIs reports whether b was constructed by this module.
func VextraIs(b *Backend) bool {
	return b != nil && b.Name() == "Vextra"
}
