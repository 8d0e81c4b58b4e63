// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"fmt"

	json "github.com/bytedance/sonic"
)

// MarshalPart marshals part, filling in its "type" discriminator when unset.
func MarshalPart(part Part) ([]byte, error) {
	switch p := normalizePart(part).(type) {
	case TextPart:
		return json.ConfigFastest.Marshal(p)
	case FilePart:
		return json.ConfigFastest.Marshal(p)
	case DataPart:
		return json.ConfigFastest.Marshal(p)
	default:
		return nil, fmt.Errorf("unknown part type: %T", part)
	}
}

// UnmarshalPart unmarshals a JSON part into the appropriate [Part] type.
func UnmarshalPart(data []byte) (Part, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.ConfigFastest.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "text":
		var p TextPart
		if err := json.ConfigFastest.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil

	case "file":
		var p FilePart
		if err := json.ConfigFastest.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil

	case "data":
		var p DataPart
		if err := json.ConfigFastest.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil

	case "":
		return nil, errors.New("part type not found or not a string")

	default:
		return nil, fmt.Errorf("unknown part type: %s", head.Type)
	}
}

// MarshalJSON implements [json.Marshaler].
func (ps Parts) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(ps))
	for _, p := range ps {
		np := normalizePart(p)
		if np == nil {
			return nil, fmt.Errorf("unknown part type: %T", p)
		}
		out = append(out, np)
	}
	return json.ConfigFastest.Marshal(out)
}

// UnmarshalJSON implements [json.Unmarshaler].
func (ps *Parts) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.ConfigFastest.Unmarshal(data, &raw); err != nil {
		return err
	}

	parts := make(Parts, 0, len(raw))
	for i, r := range raw {
		// re-marshal each element to dispatch on its discriminator
		b, err := json.ConfigFastest.Marshal(r)
		if err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
		p, err := UnmarshalPart(b)
		if err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
		parts = append(parts, p)
	}
	*ps = parts
	return nil
}

// normalizePart dereferences pointer parts and sets the discriminator. It returns nil for unknown parts.
func normalizePart(part Part) Part {
	switch p := part.(type) {
	case TextPart:
		p.Type = "text"
		return p
	case *TextPart:
		if p == nil {
			return nil
		}
		return normalizePart(*p)
	case FilePart:
		p.Type = "file"
		return p
	case *FilePart:
		if p == nil {
			return nil
		}
		return normalizePart(*p)
	case DataPart:
		p.Type = "data"
		return p
	case *DataPart:
		if p == nil {
			return nil
		}
		return normalizePart(*p)
	default:
		return nil
	}
}
