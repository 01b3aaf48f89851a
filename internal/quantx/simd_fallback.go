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

//go:build !(amd64 && goexperiment.simd)

package quantx

// Without GOEXPERIMENT=simd (or off amd64), there is no archsimd surface to
// build the wide-SIMD kernels on. hwy.CurrentLevel() never reports
// DispatchAVX2/DispatchAVX512 in this configuration (see
// hwy/dispatch_amd64.go, dispatch_other.go), so SelectKernel never calls
// these in practice; they exist so a caller forcing "avx2"/"avx512" via
// DispatchConfig still gets a correct, if unaccelerated, result.
func dequantizeAVX2(src []byte, dst []float32, k int) error {
	return DequantizeScalar(src, dst, k)
}

func dequantizeAVX512(src []byte, dst []float32, k int) error {
	return DequantizeScalar(src, dst, k)
}
