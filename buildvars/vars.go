// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time, e.g.
//
//	go build -ldflags "-X github.com/toeirei/authkeys/buildvars.Version=v0.3.0 -X github.com/toeirei/authkeys/buildvars.Commit=$(git rev-parse --short HEAD)"
package buildvars

// Version is empty for local or development builds.
var Version string

// Commit is the short commit SHA of the build.
var Commit = "dev"

// BuildDate is the RFC3339 build time.
var BuildDate string

// VersionOrDefault returns `Version` if set, otherwise returns the provided default.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}
