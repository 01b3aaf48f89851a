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

// Command vextradiag reports the detected SIMD dispatch level, runs a
// self-check dequantization against the scalar oracle, and (when built with
// -tags vulkan) probes for a usable GPU device.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/groovy-byte/vextra/hwy"
	"github.com/groovy-byte/vextra/internal/gpuvk"
	"github.com/groovy-byte/vextra/internal/quantx"
	"github.com/groovy-byte/vextra/internal/routing"
	"github.com/groovy-byte/vextra/internal/vxlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel         string
	forceLevel       string
	gpuDeviceIndex   int
	gpuRequireDisc   bool
	useLinkedOracle  bool
	routeProbeNBytes uint64
)

var rootCmd = &cobra.Command{
	Use:   "vextradiag",
	Short: "Diagnose dequantization dispatch and device capability",
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Report the detected SIMD dispatch level",
	Run: func(cmd *cobra.Command, args []string) {
		log := vxlog.New(logLevel)
		log.Infof("hwy dispatch level: %s (width=%d bytes)", hwy.CurrentLevel(), hwy.CurrentWidth())
	},
}

var selfcheckCmd = &cobra.Command{
	Use:   "selfcheck",
	Short: "Dequantize a random tensor with the selected kernel and compare against the scalar oracle",
	Run: func(cmd *cobra.Command, args []string) {
		log := vxlog.New(logLevel)
		runSelfcheck(log, forceLevel)
	},
}

var gpuProbeCmd = &cobra.Command{
	Use:   "gpu-probe",
	Short: "Attempt to initialize a Vulkan device context",
	Run: func(cmd *cobra.Command, args []string) {
		log := vxlog.New(logLevel)
		runGPUProbe(log, gpuvk.DeviceConfig{
			PreferredDeviceIndex: gpuDeviceIndex,
			RequireDiscrete:      gpuRequireDisc,
		})
	},
}

var routeProbeCmd = &cobra.Command{
	Use:   "route-probe",
	Short: "Ask the routing oracle which provider it names for a given byte size",
	Run: func(cmd *cobra.Command, args []string) {
		log := vxlog.New(logLevel)
		runRouteProbe(log, routing.Config{UseLinkedOracle: useLinkedOracle}, routeProbeNBytes)
	},
}

func runSelfcheck(log logrus.FieldLogger, force string) {
	const nblocks = 4
	k := nblocks * quantx.ElementsPerBlock
	r := rand.New(rand.NewSource(42))
	src := make([]byte, nblocks*quantx.BlockBytes)
	r.Read(src)

	oracle := make([]float32, k)
	if err := quantx.DequantizeScalar(src, oracle, k); err != nil {
		log.WithError(err).Fatal("scalar oracle failed")
	}

	kernel := quantx.SelectKernel(quantx.DispatchConfig{Force: force})
	dst := make([]float32, k)
	if err := kernel(src, dst, k); err != nil {
		log.WithError(err).Fatal("selected kernel failed")
	}

	for i := range oracle {
		if dst[i] != oracle[i] {
			log.Warnf("element %d differs: got %v, oracle %v", i, dst[i], oracle[i])
		}
	}
	log.Infof("selfcheck: %d elements compared against scalar oracle", k)
}

func runGPUProbe(log logrus.FieldLogger, cfg gpuvk.DeviceConfig) {
	ctx, err := gpuvk.NewDeviceContext(gpuvk.Shader, cfg)
	if err != nil {
		log.Warnf("no usable GPU device: %v (falling back to CPU kernels)", err)
		return
	}
	defer ctx.Close()
	log.Info("GPU device context initialized")
}

func runRouteProbe(log logrus.FieldLogger, cfg routing.Config, nbytes uint64) {
	oracle := routing.NewOracle(cfg)
	log.Infof("route_task(%d) -> %q", nbytes, oracle.Route(nbytes))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	selfcheckCmd.Flags().StringVar(&forceLevel, "force", "", "force a kernel: scalar, avx2, avx512 (default: auto-detect)")
	gpuProbeCmd.Flags().IntVar(&gpuDeviceIndex, "device-index", -1, "prefer a specific physical device by index (default: prefer discrete GPU)")
	gpuProbeCmd.Flags().BoolVar(&gpuRequireDisc, "require-discrete", false, "fail rather than fall back to a non-discrete GPU")
	routeProbeCmd.Flags().BoolVar(&useLinkedOracle, "linked", false, "use the cgo-linked oracle instead of the stub (only effective with -tags vextra_oracle)")
	routeProbeCmd.Flags().Uint64Var(&routeProbeNBytes, "bytes", 0, "byte size of the hypothetical matmul input to route")
	rootCmd.AddCommand(dispatchCmd, selfcheckCmd, gpuProbeCmd, routeProbeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
