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

package routing

import "testing"

type recordingOracle struct {
	calls []uint64
}

func (r *recordingOracle) Route(byteSize uint64) string {
	r.calls = append(r.calls, byteSize)
	return "recorded"
}

func TestStubOracleIsTotal(t *testing.T) {
	o := StubOracle{}
	for _, size := range []uint64{0, 1, 1 << 40} {
		if got := o.Route(size); got == "" {
			t.Fatalf("Route(%d) returned empty string, oracle contract is total", size)
		}
	}
}

func TestNewOracleDefaultsToStub(t *testing.T) {
	o := NewOracle(Config{})
	if _, ok := o.(StubOracle); !ok {
		t.Fatalf("NewOracle(Config{}) = %T, want StubOracle", o)
	}
}

func TestRecordingOracleTracksCalls(t *testing.T) {
	o := &recordingOracle{}
	o.Route(256)
	o.Route(512)
	if len(o.calls) != 2 {
		t.Fatalf("calls = %v, want 2 entries", o.calls)
	}
}
