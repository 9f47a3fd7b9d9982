// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/communecheck/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
