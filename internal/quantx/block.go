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

// Package quantx implements dequantization of Q2_K blocks: a fixed 72-byte
// record holding a float scale, a float bias, and 64 bytes of packed 2-bit
// indices.
package quantx

import "fmt"

const (
	// BlockBytes is the on-the-wire size of one Q2_K block: 4 (d) + 4 (dmin) + 64 (qs).
	BlockBytes = 72
	// ElementsPerBlock is the number of logical float elements one block expands to.
	ElementsPerBlock = 256
	// IndicesPerByte is the number of 2-bit indices packed into each qs byte.
	IndicesPerByte = 4
	// QSBytes is the length of the packed-index region of a block.
	QSBytes = 64
)

// ExtractIndex returns the 2-bit index at logical position i (0 <= i < 256)
// within a block's 64-byte qs region. Byte b = i mod 64 holds four indices;
// position p = i div 64 selects which one, least-significant pair first.
func ExtractIndex(qs []byte, i int) uint8 {
	b := i % QSBytes
	p := i / QSBytes
	return (qs[b] >> uint(2*p)) & 0x3
}

// BlockCount returns the number of Q2_K blocks needed to hold k elements.
// It returns an error if k is not a positive multiple of ElementsPerBlock.
func BlockCount(k int) (int, error) {
	if k <= 0 || k%ElementsPerBlock != 0 {
		return 0, fmt.Errorf("quantx: element count %d is not a positive multiple of %d", k, ElementsPerBlock)
	}
	return k / ElementsPerBlock, nil
}
