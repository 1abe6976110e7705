// Copyright 2018 The CUE Authors
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

// Package debuglog gates verbose evaluator tracing behind the
// KUBE_DEBUG environment variable, grounded on
// internal/core/adt/log.go's own env-gated Verbose flag: neither that
// package nor this one reaches for a third-party structured logger,
// since the only consumer is a developer reading stderr while chasing
// a specific eval bug, not a production log pipeline.
package debuglog

import (
	"log"
	"os"
)

// Enabled reports whether KUBE_DEBUG is set to a non-empty value.
var Enabled = os.Getenv("KUBE_DEBUG") != ""

var logger = log.New(os.Stderr, "kube: ", log.Lshortfile)

// Printf writes a trace line when debugging is enabled. It is a no-op
// otherwise, so call sites can leave it in place at no cost in the
// common case.
func Printf(format string, args ...interface{}) {
	if !Enabled {
		return
	}
	logger.Printf(format, args...)
}
