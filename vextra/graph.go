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

// Package vextra registers a buffer type and a backend with a host tensor
// graph runtime: it intercepts Q2_K-to-F32 copies and reports matmul input
// sizes to a routing oracle.
//
// The Graph/Node/Tensor types here are a minimal stand-in for a real host
// graph runtime, which is out of scope for this module; GraphCompute only
// requires the fields and iteration order modeled below.
package vextra

// ElementType enumerates the tensor element formats GraphCompute recognizes.
type ElementType int

const (
	ElementF32 ElementType = iota
	ElementQ2K
)

// TypeSize returns the storage size in bytes of one element of t, or 0 for a
// block-quantized type where per-element size is not meaningful on its own.
func (t ElementType) TypeSize() int {
	switch t {
	case ElementF32:
		return 4
	default:
		return 0
	}
}

// OpCode enumerates the node operations GraphCompute recognizes.
type OpCode int

const (
	OpMatMul OpCode = iota
	OpCopy
	OpOther
)

// Tensor is an operand or result of a Node: a data pointer (as a byte slice
// for F32-typed data, or the packed Q2_K bytes otherwise), its element type,
// and its logical element count.
type Tensor struct {
	Data     []byte
	Type     ElementType
	Elements int
}

// Node is one operation in a Graph.
type Node struct {
	Op   OpCode
	Src  []*Tensor
	Dst  *Tensor
	Name string
}

// Graph is an ordered sequence of Nodes, visited in order by GraphCompute.
type Graph struct {
	Nodes []*Node
}
