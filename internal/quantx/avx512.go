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

//go:build amd64 && goexperiment.simd

package quantx

import (
	"encoding/binary"
	"math"

	"simd/archsimd"
)

const avx512Lanes = 16

// dequantizeAVX512 expands Q2_K blocks 16 floats at a time using 512-bit
// vectors. Same four-pass-per-block structure as dequantizeAVX2, twice the
// lane width.
func dequantizeAVX512(src []byte, dst []float32, k int) error {
	nblocks, err := BlockCount(k)
	if err != nil {
		return err
	}
	if len(src) != nblocks*BlockBytes || len(dst) != k {
		return DequantizeScalar(src, dst, k)
	}

	var widened [avx512Lanes]int32

	for b := 0; b < nblocks; b++ {
		block := src[b*BlockBytes : (b+1)*BlockBytes]
		d := math.Float32frombits(binary.LittleEndian.Uint32(block[0:4]))
		dmin := math.Float32frombits(binary.LittleEndian.Uint32(block[4:8]))
		qs := block[8:BlockBytes]
		out := dst[b*ElementsPerBlock : (b+1)*ElementsPerBlock]

		dVec := archsimd.BroadcastFloat32x16(d)
		dminVec := archsimd.BroadcastFloat32x16(dmin)

		for p := 0; p < IndicesPerByte; p++ {
			shift := uint8(2 * p)
			quarter := out[p*QSBytes : p*QSBytes+QSBytes]

			for chunk := 0; chunk < QSBytes; chunk += avx512Lanes {
				for j := 0; j < avx512Lanes; j++ {
					widened[j] = int32(qs[chunk+j])
				}
				idx := archsimd.LoadInt32x16Slice(widened[:])
				idx = idx.ShiftAllRight(shift).And(archsimd.BroadcastInt32x16(0x3))
				fidx := idx.ConvertToFloat32()
				res := fidx.MulAdd(dVec, dminVec)
				res.StoreSlice(quarter[chunk : chunk+avx512Lanes])
			}
		}
	}
	return nil
}
