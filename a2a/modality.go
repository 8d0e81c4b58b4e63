// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"slices"
)

// AreModalitiesCompatible reports whether a client accepting clientModes can be served by an agent
// producing serverModes.
//
// An empty list on either side means "anything", so the check only fails when both lists
// are non-empty and share no mode.
func AreModalitiesCompatible(serverModes, clientModes []string) bool {
	if len(clientModes) == 0 || len(serverModes) == 0 {
		return true
	}
	for _, mode := range clientModes {
		if slices.Contains(serverModes, mode) {
			return true
		}
	}
	return false
}
