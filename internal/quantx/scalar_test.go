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
	"math"
	"testing"
)

// makeBlock builds one 72-byte Q2_K block with the given scale, bias, and
// qs bytes (all 64 identical, for the uniform-pattern scenarios).
func makeBlock(d, dmin float32, qsByte byte) []byte {
	block := make([]byte, BlockBytes)
	binary.LittleEndian.PutUint32(block[0:4], math.Float32bits(d))
	binary.LittleEndian.PutUint32(block[4:8], math.Float32bits(dmin))
	for i := 8; i < BlockBytes; i++ {
		block[i] = qsByte
	}
	return block
}

func TestExtractIndex(t *testing.T) {
	qs := make([]byte, QSBytes)
	qs[0] = 0xE4 // 11 10 01 00 -> positions 0,1,2,3
	for p, want := range []uint8{0, 1, 2, 3} {
		if got := ExtractIndex(qs, p*QSBytes); got != want {
			t.Errorf("ExtractIndex(qs, %d) = %d, want %d", p*QSBytes, got, want)
		}
	}
}

func TestBlockCount(t *testing.T) {
	tests := []struct {
		k       int
		want    int
		wantErr bool
	}{
		{256, 1, false},
		{1024, 4, false},
		{0, 0, true},
		{255, 0, true},
		{-256, 0, true},
	}
	for _, tt := range tests {
		got, err := BlockCount(tt.k)
		if tt.wantErr != (err != nil) {
			t.Errorf("BlockCount(%d) err = %v, wantErr %v", tt.k, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("BlockCount(%d) = %d, want %d", tt.k, got, tt.want)
		}
	}
}

// TestUniformIndexPattern is scenario S1 from the dequantization contract:
// d=2.0, dmin=0.5, qs[b]=0xE4 everywhere.
func TestUniformIndexPattern(t *testing.T) {
	src := makeBlock(2.0, 0.5, 0xE4)
	dst := make([]float32, ElementsPerBlock)
	if err := DequantizeScalar(src, dst, ElementsPerBlock); err != nil {
		t.Fatalf("DequantizeScalar: %v", err)
	}
	want := [4]float32{0.5, 2.5, 4.5, 6.5}
	for i, y := range dst {
		quarter := i / QSBytes
		if y != want[quarter] {
			t.Fatalf("dst[%d] = %v, want %v", i, y, want[quarter])
		}
	}
}

// TestZeroScale is scenario S2: d=0 forces every output to dmin.
func TestZeroScale(t *testing.T) {
	src := makeBlock(0, 3.25, 0xFF)
	dst := make([]float32, ElementsPerBlock)
	if err := DequantizeScalar(src, dst, ElementsPerBlock); err != nil {
		t.Fatalf("DequantizeScalar: %v", err)
	}
	for i, y := range dst {
		if y != 3.25 {
			t.Fatalf("dst[%d] = %v, want 3.25", i, y)
		}
	}
}

// TestNegativeScale is scenario S3.
func TestNegativeScale(t *testing.T) {
	src := makeBlock(-1.0, 3.0, 0xE4)
	dst := make([]float32, ElementsPerBlock)
	if err := DequantizeScalar(src, dst, ElementsPerBlock); err != nil {
		t.Fatalf("DequantizeScalar: %v", err)
	}
	want := [4]float32{3.0, 2.0, 1.0, 0.0}
	for i, y := range dst {
		quarter := i / QSBytes
		if y != want[quarter] {
			t.Fatalf("dst[%d] = %v, want %v", i, y, want[quarter])
		}
	}
}

// TestFourBlockTensor is scenario S4.
func TestFourBlockTensor(t *testing.T) {
	const k = 1024
	src := make([]byte, 0, k/ElementsPerBlock*BlockBytes)
	for b := 0; b < 4; b++ {
		src = append(src, makeBlock(float32(1+b), 0, 0xE4)...)
	}
	dst := make([]float32, k)
	if err := DequantizeScalar(src, dst, k); err != nil {
		t.Fatalf("DequantizeScalar: %v", err)
	}
	for b := 0; b < 4; b++ {
		scale := float32(1 + b)
		block := dst[b*ElementsPerBlock : (b+1)*ElementsPerBlock]
		want := [4]float32{0, scale, 2 * scale, 3 * scale}
		for i, y := range block {
			quarter := i / QSBytes
			if y != want[quarter] {
				t.Fatalf("block %d dst[%d] = %v, want %v", b, i, y, want[quarter])
			}
		}
	}
}

// TestPackingRoundTrip is property 4: d=1, dmin=0 recovers the index
// sequence as floats 0,1,2,3.
func TestPackingRoundTrip(t *testing.T) {
	qs := make([]byte, QSBytes)
	for b := range qs {
		qs[b] = 0xE4
	}
	block := make([]byte, BlockBytes)
	binary.LittleEndian.PutUint32(block[0:4], math.Float32bits(1))
	binary.LittleEndian.PutUint32(block[4:8], math.Float32bits(0))
	copy(block[8:], qs)

	dst := make([]float32, ElementsPerBlock)
	if err := DequantizeScalar(block, dst, ElementsPerBlock); err != nil {
		t.Fatalf("DequantizeScalar: %v", err)
	}
	want := [4]float32{0.0, 1.0, 2.0, 3.0}
	for i, y := range dst {
		if y != want[i/QSBytes] {
			t.Fatalf("dst[%d] = %v, want %v", i, y, want[i/QSBytes])
		}
	}
}

func TestDequantizeScalarPreconditions(t *testing.T) {
	if err := DequantizeScalar(make([]byte, 10), make([]float32, 256), 256); err == nil {
		t.Fatal("expected error for mismatched src length")
	}
	if err := DequantizeScalar(make([]byte, BlockBytes), make([]float32, 10), 256); err == nil {
		t.Fatal("expected error for mismatched dst length")
	}
	if _, err := BlockCount(100); err == nil {
		t.Fatal("expected error for k not a multiple of 256")
	}
}

func TestZeroScaleProperty(t *testing.T) {
	// Property 2, randomized over dmin and qs pattern.
	for _, dmin := range []float32{0, -1.5, 100} {
		for _, qsByte := range []byte{0x00, 0xFF, 0x1B, 0xE4} {
			src := makeBlock(0, dmin, qsByte)
			dst := make([]float32, ElementsPerBlock)
			if err := DequantizeScalar(src, dst, ElementsPerBlock); err != nil {
				t.Fatalf("DequantizeScalar: %v", err)
			}
			for i, y := range dst {
				if y != dmin {
					t.Fatalf("dmin=%v qsByte=%#x: dst[%d] = %v, want %v", dmin, qsByte, i, y, dmin)
				}
			}
		}
	}
}
