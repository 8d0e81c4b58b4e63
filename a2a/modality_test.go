// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import "testing"

func TestAreModalitiesCompatible(t *testing.T) {
	t.Parallel()

	server := []string{"text", "text/plain"}
	tests := map[string]struct {
		server []string
		client []string
		want   bool
	}{
		"client accepts anything":   {server: server, client: nil, want: true},
		"server produces anything":  {server: nil, client: []string{"image/png"}, want: true},
		"shared mode":               {server: server, client: []string{"image/png", "text/plain"}, want: true},
		"no shared mode":            {server: server, client: []string{"image/png", "application/json"}, want: false},
		"case sensitive comparison": {server: server, client: []string{"TEXT"}, want: false},
		"both empty":                {server: []string{}, client: []string{}, want: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := AreModalitiesCompatible(tt.server, tt.client); got != tt.want {
				t.Errorf("AreModalitiesCompatible(%v, %v) = %v, want %v", tt.server, tt.client, got, tt.want)
			}
		})
	}
}

func TestTaskStateIsTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[TaskState]bool{
		TaskStateSubmitted:     false,
		TaskStateWorking:       false,
		TaskStateInputRequired: false,
		TaskStateUnknown:       false,
		TaskStateCompleted:     true,
		TaskStateCanceled:      true,
		TaskStateFailed:        true,
	}
	for state, want := range terminal {
		if got := state.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", state, got, want)
		}
	}
}
