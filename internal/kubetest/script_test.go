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

// Package kubetest drives the compiled kube binary against testdata/script
// fixtures, grounded on doc/tutorial/basics/script_test.go's minimal
// testscript.Run/RunMain pairing rather than cmd/cue/cmd/script_test.go's
// larger module-proxy setup, since the REPL under test has no module
// resolution to stub out.
package kubetest

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"bramble.dev/kube/cmd/kube/cmd"
)

func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"kube": cmd.Main,
	}))
}
