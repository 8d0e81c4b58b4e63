// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"strings"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
)

func TestUnmarshalMessageParts(t *testing.T) {
	t.Parallel()

	data := `{"role":"user","parts":[{"type":"text","text":"quantum computing"},{"type":"data","data":{"k":"v"}},{"type":"file","file":{"name":"a.txt","uri":"https://example.com/a.txt"}}]}`

	var msg Message
	if err := json.ConfigStd.Unmarshal([]byte(data), &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := Message{
		Role: RoleUser,
		Parts: Parts{
			TextPart{Type: "text", Text: "quantum computing"},
			DataPart{Type: "data", Data: map[string]any{"k": "v"}},
			FilePart{Type: "file", File: FileContent{Name: "a.txt", URI: "https://example.com/a.txt"}},
		},
	}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}

	text, ok := msg.Text()
	if !ok || text != "quantum computing" {
		t.Errorf("Text() = %q, %v; want %q, true", text, ok, "quantum computing")
	}
}

func TestUnmarshalPartErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data    string
		wantErr string
	}{
		"missing type": {
			data:    `{"text":"hello"}`,
			wantErr: "part type not found",
		},
		"unknown type": {
			data:    `{"type":"video"}`,
			wantErr: "unknown part type: video",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := UnmarshalPart([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMarshalPartsFillsType(t *testing.T) {
	t.Parallel()

	b, err := json.ConfigStd.Marshal(Parts{TextPart{Text: "hi"}, &DataPart{Data: map[string]any{"n": 1}}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(b)
	if !strings.Contains(got, `"type":"text"`) || !strings.Contains(got, `"type":"data"`) {
		t.Errorf("marshaled parts missing discriminators: %s", got)
	}
}

func TestMessageTextRequiresLeadingTextPart(t *testing.T) {
	t.Parallel()

	msg := Message{Role: RoleUser, Parts: Parts{DataPart{Data: map[string]any{}}, NewTextPart("later")}}
	if _, ok := msg.Text(); ok {
		t.Error("Text() reported a text part for a message starting with a data part")
	}
	if _, ok := (Message{Role: RoleUser}).Text(); ok {
		t.Error("Text() reported a text part for an empty message")
	}
}
