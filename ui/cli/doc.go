// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the authkeys command line using Cobra. It loads the
// configuration, opens the configured authorized_keys file and delegates all
// parsing and rendering to internal/authkeys.
package cli
