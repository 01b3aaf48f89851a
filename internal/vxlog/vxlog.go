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

// Package vxlog configures the package-wide logrus logger used for device
// lifecycle and dispatch diagnostics.
package vxlog

import "github.com/sirupsen/logrus"

// New returns a logrus logger with the given level name ("debug", "info",
// "warn", "error", ...). An unrecognized level falls back to Info, with a
// warning logged about the fallback.
func New(level string) logrus.FieldLogger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.Warnf("unrecognized log level %q, defaulting to info", level)
		return log
	}
	log.SetLevel(lvl)
	return log
}
