// Copyright 2025 The Go A2A Authors.
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
//
// SPDX-License-Identifier: Apache-2.0

// Package pool provides typed object pooling for response encoding.
package pool

import (
	"bytes"
	"sync"
)

// maxPooledBuffer is the largest buffer capacity returned to [Bytes].
const maxPooledBuffer = 1 << 20

// Pool is a generics wrapper around [sync.Pool].
type Pool[T any] struct {
	p    sync.Pool
	keep func(T) bool
}

// Resetter is implemented by values cleared before they return to a pool.
type Resetter interface {
	Reset()
}

// New returns a new [Pool] for T, and will use fn to construct new T's when the pool is empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Keep sets the predicate deciding whether a value returned by [Pool.Put] is kept.
func (p *Pool[T]) Keep(fn func(T) bool) *Pool[T] {
	p.keep = fn
	return p
}

// Get gets a T from the pool, or creates a new one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put resets x and returns it into the pool, unless the pool's keep predicate rejects it.
func (p *Pool[T]) Put(x T) {
	if p.keep != nil && !p.keep(x) {
		return
	}
	if r, ok := any(x).(Resetter); ok {
		r.Reset()
	}
	p.p.Put(x)
}

// Bytes pools the [*bytes.Buffer] used to encode responses. Oversized buffers are dropped.
var Bytes = New(func() *bytes.Buffer { return new(bytes.Buffer) }).
	Keep(func(b *bytes.Buffer) bool { return b.Cap() <= maxPooledBuffer })
