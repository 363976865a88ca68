// Copyright 2024 The Cockroach Authors
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

package hashset

import (
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"
	"golang.org/x/exp/constraints"
)

// option provide an interface to do work on Set while it is being created.
type option[K constraints.Integer] interface {
	apply(s *Set[K])
}

type hashOption[K constraints.Integer] struct {
	hash func(key K) uint64
}

func (op hashOption[K]) apply(s *Set[K]) {
	s.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a Set[K].
// The function must be deterministic for the lifetime of the set.
func WithHash[K constraints.Integer](hash func(key K) uint64) option[K] {
	return hashOption[K]{hash}
}

// WithSipHash is an option to hash keys with SipHash-2-4 keyed by (k0, k1)
// instead of the identity hash. Keys are hashed as 8 little-endian bytes.
func WithSipHash[K constraints.Integer](k0, k1 uint64) option[K] {
	return hashOption[K]{func(key K) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return siphash.Hash(k0, k1, buf[:])
	}}
}

type maxLoadFactorOption[K constraints.Integer] struct {
	f float64
}

func (op maxLoadFactorOption[K]) apply(s *Set[K]) {
	if !(op.f > 0) {
		panic(fmt.Sprintf("hashset: invalid max load factor %v", op.f))
	}
	s.maxLoad = op.f
}

// WithMaxLoadFactor is an option to specify the initial maximum load factor
// of a Set[K]. The factor must be > 0.
func WithMaxLoadFactor[K constraints.Integer](f float64) option[K] {
	return maxLoadFactorOption[K]{f}
}

// Allocator specifies an interface for allocating and releasing the bucket
// index used by a Set. The default allocator utilizes Go's builtin make() and
// allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that index
// slices be freed then Set.Close must be called in order to ensure FreeIndex
// is called for the live index.
type Allocator[K constraints.Integer] interface {
	// AllocIndex should return a slice equivalent to
	// make([]*Element[K], n). AllocIndex may panic to signal an allocation
	// failure, in which case the set is left unchanged.
	AllocIndex(n int) []*Element[K]

	// FreeIndex can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocIndex.
	FreeIndex(v []*Element[K])
}

type defaultAllocator[K constraints.Integer] struct{}

func (defaultAllocator[K]) AllocIndex(n int) []*Element[K] {
	return make([]*Element[K], n)
}

func (defaultAllocator[K]) FreeIndex(v []*Element[K]) {
}

type allocatorOption[K constraints.Integer] struct {
	allocator Allocator[K]
}

func (op allocatorOption[K]) apply(s *Set[K]) {
	s.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Set[K].
func WithAllocator[K constraints.Integer](allocator Allocator[K]) option[K] {
	return allocatorOption[K]{allocator}
}
