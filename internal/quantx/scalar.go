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

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DequantizeScalar expands k Q2_K-packed elements from src into dst using the
// portable reference algorithm. It is the oracle every other kernel in this
// package is checked against.
//
// Preconditions: len(src) == (k/256)*BlockBytes, len(dst) == k, k%256 == 0.
func DequantizeScalar(src []byte, dst []float32, k int) error {
	nblocks, err := BlockCount(k)
	if err != nil {
		return err
	}
	if len(src) != nblocks*BlockBytes {
		return fmt.Errorf("quantx: src has %d bytes, want %d", len(src), nblocks*BlockBytes)
	}
	if len(dst) != k {
		return fmt.Errorf("quantx: dst has %d elements, want %d", len(dst), k)
	}

	for b := 0; b < nblocks; b++ {
		block := src[b*BlockBytes : (b+1)*BlockBytes]
		d := math.Float32frombits(binary.LittleEndian.Uint32(block[0:4]))
		dmin := math.Float32frombits(binary.LittleEndian.Uint32(block[4:8]))
		qs := block[8:BlockBytes]

		out := dst[b*ElementsPerBlock : (b+1)*ElementsPerBlock]
		for i := 0; i < ElementsPerBlock; i++ {
			q := ExtractIndex(qs, i)
			out[i] = float32(q)*d + dmin
		}
	}
	return nil
}
