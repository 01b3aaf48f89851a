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

package quantx

import "github.com/groovy-byte/vextra/hwy"

// Kernel is the common signature shared by every dequantization
// implementation in this package: scalar, AVX2, and AVX512.
type Kernel func(src []byte, dst []float32, k int) error

// DispatchConfig lets a caller force a dispatch level, bypassing CPU feature
// detection. A zero value selects automatically via hwy.CurrentLevel().
type DispatchConfig struct {
	// Force, when non-empty, pins the kernel regardless of detected CPU
	// features. One of "scalar", "avx2", "avx512".
	Force string
}

// SelectKernel returns the dequantization kernel chosen for the current
// process, following the same capability detection the rest of the teacher
// package's dispatch machinery uses (hwy.CurrentLevel()). There is no
// runtime switching mid-tensor: the caller selects once at startup.
func SelectKernel(cfg DispatchConfig) Kernel {
	switch cfg.Force {
	case "scalar":
		return DequantizeScalar
	case "avx2":
		return dequantizeAVX2
	case "avx512":
		return dequantizeAVX512
	}

	switch hwy.CurrentLevel() {
	case hwy.DispatchAVX512:
		return dequantizeAVX512
	case hwy.DispatchAVX2:
		return dequantizeAVX2
	default:
		return DequantizeScalar
	}
}
