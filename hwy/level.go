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

package hwy

import "os"

// DispatchLevel names an instruction-set tier selected once at process
// startup by the arch-specific init() in dispatch_amd64.go,
// dispatch_amd64_simd.go, or dispatch_other.go.
type DispatchLevel int

const (
	DispatchScalar DispatchLevel = iota
	DispatchSSE2
	DispatchAVX2
	DispatchAVX512
)

func (l DispatchLevel) String() string {
	switch l {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

var (
	currentLevel DispatchLevel
	currentWidth int
	currentName  string
)

// CurrentLevel returns the SIMD dispatch level detected for this process.
func CurrentLevel() DispatchLevel { return currentLevel }

// CurrentWidth returns the byte width of the vector register assumed at the
// current dispatch level.
func CurrentWidth() int { return currentWidth }

// CurrentName returns the human-readable name of the current dispatch level.
func CurrentName() string { return currentName }

// NoSimdEnv reports whether HWY_NO_SIMD requests the scalar fallback
// regardless of detected CPU features.
func NoSimdEnv() bool {
	v := os.Getenv("HWY_NO_SIMD")
	return v != "" && v != "0"
}
