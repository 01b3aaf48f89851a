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

//go:build vextra_oracle

package routing

/*
// scheinfer_route_task is provided by an externally linked routing library;
// it is declared, not defined, here. The caller owns the returned string and
// must free it with the matching allocator (plain libc free, per the
// original C ABI this mirrors).
#include <stdlib.h>

extern char * scheinfer_route_task(unsigned long long data_size_bytes);
*/
import "C"
import "unsafe"

type linkedOracle struct{}

func newLinkedOracle() Oracle {
	return linkedOracle{}
}

// Route calls the externally linked scheinfer_route_task oracle and copies
// its result into a native Go string before releasing the foreign memory.
func (linkedOracle) Route(byteSize uint64) string {
	cstr := C.scheinfer_route_task(C.ulonglong(byteSize))
	if cstr == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr)
}
