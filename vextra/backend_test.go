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

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/groovy-byte/vextra/internal/quantx"
)

type countingOracle struct {
	calls int
}

func (c *countingOracle) Route(uint64) string {
	c.calls++
	return "cpu"
}

func makeQ2KBlock(d, dmin float32, qsByte byte) []byte {
	block := make([]byte, quantx.BlockBytes)
	binary.LittleEndian.PutUint32(block[0:4], math.Float32bits(d))
	binary.LittleEndian.PutUint32(block[4:8], math.Float32bits(dmin))
	for i := 8; i < quantx.BlockBytes; i++ {
		block[i] = qsByte
	}
	return block
}

// TestAdapterDispatch is scenario S5: one MatMul followed by one Copy(Q2_K->F32).
func TestAdapterDispatch(t *testing.T) {
	oracle := &countingOracle{}
	backend := NewBackend(oracle, quantx.DequantizeScalar, nil)

	q2k := makeQ2KBlock(2.0, 0.5, 0xE4)
	f32out := make([]byte, quantx.ElementsPerBlock*4)

	matmulSrc := &Tensor{Data: q2k, Type: ElementQ2K, Elements: quantx.ElementsPerBlock}
	copySrc := &Tensor{Data: q2k, Type: ElementQ2K, Elements: quantx.ElementsPerBlock}
	copyDst := &Tensor{Data: f32out, Type: ElementF32, Elements: quantx.ElementsPerBlock}

	g := &Graph{Nodes: []*Node{
		{Op: OpMatMul, Src: []*Tensor{matmulSrc}, Name: "mm0"},
		{Op: OpCopy, Src: []*Tensor{copySrc}, Dst: copyDst, Name: "cpy0"},
	}}

	if err := backend.GraphCompute(g); err != nil {
		t.Fatalf("GraphCompute: %v", err)
	}

	if oracle.calls != 1 {
		t.Fatalf("route_task called %d times, want 1 (property 6)", oracle.calls)
	}

	want := make([]float32, quantx.ElementsPerBlock)
	if err := quantx.DequantizeScalar(q2k, want, quantx.ElementsPerBlock); err != nil {
		t.Fatalf("oracle dequantize: %v", err)
	}
	for i := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(f32out[i*4 : i*4+4]))
		if got != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, got, want[i])
		}
	}
}

func TestGraphComputeLeavesOtherOpsUntouched(t *testing.T) {
	backend := NewBackend(&countingOracle{}, quantx.DequantizeScalar, nil)
	dst := &Tensor{Data: []byte{1, 2, 3, 4}, Type: ElementF32, Elements: 1}
	g := &Graph{Nodes: []*Node{{Op: OpOther, Dst: dst, Name: "noop"}}}
	if err := backend.GraphCompute(g); err != nil {
		t.Fatalf("GraphCompute: %v", err)
	}
	if dst.Data[0] != 1 {
		t.Fatalf("OpOther node was mutated, want untouched")
	}
}

func TestVextraBufferType(t *testing.T) {
	bt := VextraBufferType()
	if bt.Name() != "Vextra" {
		t.Fatalf("Name() = %q, want Vextra", bt.Name())
	}
	if !bt.IsHost() {
		t.Fatal("IsHost() = false, want true")
	}
	if bt.Alignment() != 32 {
		t.Fatalf("Alignment() = %d, want 32", bt.Alignment())
	}

	buf := bt.AllocBuffer(128)
	if len(buf.Data) != 128 {
		t.Fatalf("len(Data) = %d, want 128", len(buf.Data))
	}
	if &buf.Base()[0] != &buf.Data[0] {
		t.Fatal("Base() does not equal Data's first element")
	}

	if VextraBufferType() != bt {
		t.Fatal("VextraBufferType() returned a different instance on second call")
	}
}

func TestVextraInitAndIs(t *testing.T) {
	b := VextraInit()
	if !VextraIs(b) {
		t.Fatal("VextraIs(VextraInit()) = false, want true")
	}
	if VextraIs(nil) {
		t.Fatal("VextraIs(nil) = true, want false")
	}
}
