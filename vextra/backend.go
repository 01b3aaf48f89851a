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

	"github.com/groovy-byte/vextra/internal/quantx"
	"github.com/groovy-byte/vextra/internal/routing"
	"github.com/sirupsen/logrus"
)

// Backend is the "Vextra" backend: a graph_compute entry point plus a
// no-op synchronize. Every other host-runtime hook (async set/get, events,
// graph plans) is intentionally absent, matching the original backend
// interface this is grounded on.
type Backend struct {
	oracle routing.Oracle
	kernel quantx.Kernel
	log    logrus.FieldLogger
}

// NewBackend constructs a Backend with the given oracle and dequantization
// kernel. A nil oracle defaults to routing.StubOracle{}; a nil kernel
// defaults to the auto-selected kernel from quantx.SelectKernel.
func NewBackend(oracle routing.Oracle, kernel quantx.Kernel, log logrus.FieldLogger) *Backend {
	if oracle == nil {
		oracle = routing.StubOracle{}
	}
	if kernel == nil {
		kernel = quantx.SelectKernel(quantx.DispatchConfig{})
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Backend{oracle: oracle, kernel: kernel, log: log}
}

// Name returns the backend's registered name.
func (b *Backend) Name() string { return "Vextra" }

// Synchronize is a no-op: all work in GraphCompute is synchronous with
// respect to the caller already.
func (b *Backend) Synchronize() {}

// GraphCompute visits g's nodes in order. MatMul nodes are routed
// (observationally: the oracle's answer is logged, never acted on). Copy
// nodes from Q2_K to F32 are dequantized in place. Every other node is left
// untouched for another backend to handle — this backend never falls back
// to a default, matching the adapter it is grounded on. GraphCompute always
// returns nil: per-node failures are logged, not propagated.
func (b *Backend) GraphCompute(g *Graph) error {
	for _, node := range g.Nodes {
		switch node.Op {
		case OpMatMul:
			b.route(node)
		case OpCopy:
			b.maybeDequantize(node)
		}
	}
	return nil
}

func (b *Backend) route(node *Node) {
	if len(node.Src) == 0 || node.Src[0] == nil {
		return
	}
	src0 := node.Src[0]
	byteSize := uint64(src0.Elements) * uint64(src0.Type.TypeSize())
	if src0.Type == ElementQ2K {
		nblocks, _ := quantx.BlockCount(src0.Elements)
		byteSize = uint64(nblocks) * quantx.BlockBytes
	}
	provider := b.oracle.Route(byteSize)
	b.log.WithFields(logrus.Fields{"node": node.Name, "bytes": byteSize, "provider": provider}).Debug("routed matmul input")
}

func (b *Backend) maybeDequantize(node *Node) {
	if len(node.Src) == 0 || node.Src[0] == nil || node.Dst == nil {
		return
	}
	src, dst := node.Src[0], node.Dst
	if src.Type != ElementQ2K || dst.Type != ElementF32 {
		return
	}

	out := make([]float32, src.Elements)
	if err := b.kernel(src.Data, out, src.Elements); err != nil {
		b.log.WithError(err).WithField("node", node.Name).Warn("dequantize failed")
		return
	}
	for i, v := range out {
		binary.LittleEndian.PutUint32(dst.Data[i*4:i*4+4], math.Float32bits(v))
	}
}
