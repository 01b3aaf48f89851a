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

const avx2Lanes = 8

// dequantizeAVX2 expands Q2_K blocks 8 floats at a time using 256-bit vectors.
//
// Per block, the 64 qs bytes are processed in four passes, one per bit
// position p in {0,1,2,3}: each pass widens all 64 bytes to int32 lanes,
// shifts right by 2p, masks with 0x3, converts to float, and FMAs against the
// block's broadcast d/dmin, storing straight into output quarter
// [p*64, p*64+64). This produces dst[b*256+i] in ascending i order by
// construction, matching the scalar kernel's emission order exactly.
func dequantizeAVX2(src []byte, dst []float32, k int) error {
	nblocks, err := BlockCount(k)
	if err != nil {
		return err
	}
	if len(src) != nblocks*BlockBytes || len(dst) != k {
		return DequantizeScalar(src, dst, k) // delegate precondition error formatting
	}

	var widened [avx2Lanes]int32

	for b := 0; b < nblocks; b++ {
		block := src[b*BlockBytes : (b+1)*BlockBytes]
		d := math.Float32frombits(binary.LittleEndian.Uint32(block[0:4]))
		dmin := math.Float32frombits(binary.LittleEndian.Uint32(block[4:8]))
		qs := block[8:BlockBytes]
		out := dst[b*ElementsPerBlock : (b+1)*ElementsPerBlock]

		dVec := archsimd.BroadcastFloat32x8(d)
		dminVec := archsimd.BroadcastFloat32x8(dmin)

		for p := 0; p < IndicesPerByte; p++ {
			shift := uint8(2 * p)
			quarter := out[p*QSBytes : p*QSBytes+QSBytes]

			for chunk := 0; chunk < QSBytes; chunk += avx2Lanes {
				for j := 0; j < avx2Lanes; j++ {
					widened[j] = int32(qs[chunk+j])
				}
				idx := archsimd.LoadInt32x8Slice(widened[:])
				idx = idx.ShiftAllRight(shift).And(archsimd.BroadcastInt32x8(0x3))
				fidx := idx.ConvertToFloat32()
				res := fidx.MulAdd(dVec, dminVec)
				res.StoreSlice(quarter[chunk : chunk+avx2Lanes])
			}
		}
	}
	return nil
}
