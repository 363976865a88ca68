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

// package hashset is a resizable hash set of integer keys with O(1) average
// Insert, Contains and Erase, and O(1) bidirectional iteration.
//
// # Layout
//
// Every key lives in exactly one Element of a single doubly linked sequence.
// The sequence is ordered so that all elements of one bucket form a
// contiguous run, and runs appear in ascending bucket order:
//
//	index:   [0]  [1]  [2]  [3]  [4] ...
//	          |    |         |
//	          v    v         v
//	root <-> a0 <-> b1 <-> c1 <-> d3 <-> e3 <-> root
//
// The bucket index holds, per bucket, a non-owning pointer to the first
// element of its run (nil for an empty bucket). There is no per-bucket count
// or tail pointer: the end of a run is found by walking forward until an
// element hashes to a different bucket or the root is reached. Because the
// load factor is bounded, runs are O(1) long on average and lookup is
// average O(1). Iteration follows sequence links only, so advancing an
// iterator never scans empty buckets.
//
// Insertion into a non-empty bucket links the new element before the run's
// head and makes it the new head, so runs are in reverse insertion order.
// Insertion into an empty bucket links the element before the head of the
// next non-empty bucket (or at the end of the sequence) so that runs stay in
// ascending bucket order.
//
// # Rehash
//
// Bucket counts come from a fixed ascending sequence (8, then primes that
// roughly double). When an insert pushes the load factor above the maximum,
// the set grows to the smallest size that satisfies it. Rehash walks the
// sequence once, threading each element onto the chain of its new bucket,
// and then splices the chains back in bucket order. Elements are relinked,
// never copied, so iterators to surviving elements stay valid. The new index
// is allocated before any element is touched: if allocation fails the set
// is unchanged.
//
// A Set is NOT goroutine-safe.
package hashset

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

const (
	debug = false

	defaultMaxLoadFactor = 1.0
)

// Set is a hash set of integer keys. The zero value for a Set is not usable;
// use New.
type Set[K constraints.Integer] struct {
	hash      func(key K) uint64
	allocator Allocator[K]
	// root is the sentinel of the element sequence. It is heap allocated so
	// that Assign can swap whole sets without invalidating the links of the
	// elements it owns.
	root *Element[K]
	// index[i] is the first element of bucket i's run, or nil.
	index []*Element[K]
	// The number of elements in the set.
	used    int
	maxLoad float64
}

// New constructs a new Set with at least initialBuckets buckets. If
// initialBuckets is <= 8 the set starts with 8 buckets. By default keys are
// hashed with the identity function and the maximum load factor is 1.0.
func New[K constraints.Integer](initialBuckets int, options ...option[K]) *Set[K] {
	s := &Set[K]{
		hash:      identityHash[K],
		allocator: defaultAllocator[K]{},
		root:      newRoot[K](),
		maxLoad:   defaultMaxLoadFactor,
	}

	for _, op := range options {
		op.apply(s)
	}

	var n uint64
	if initialBuckets > 0 {
		n = uint64(initialBuckets)
	}
	s.index = s.allocator.AllocIndex(nextSize(n))
	clear(s.index)

	s.checkInvariants()
	return s
}

func identityHash[K constraints.Integer](key K) uint64 {
	return uint64(key)
}

// Close releases the bucket index back to the configured allocator and drops
// every element. It is unnecessary to close a set using the default
// allocator. It is invalid to use a Set after it has been closed, though
// Close itself is idempotent.
func (s *Set[K]) Close() {
	if s.index == nil {
		return
	}
	s.dropElements()
	s.allocator.FreeIndex(s.index)
	s.index = nil
	s.allocator = nil
}

// Insert adds key to the set. It returns an iterator to the element holding
// key and whether the key was newly inserted. Inserting a key that is
// already present does not modify the set.
func (s *Set[K]) Insert(key K) (Iterator[K], bool) {
	e, i := s.locate(key)
	if e != nil {
		return s.iter(e), false
	}

	// Grow before linking so that a failed allocation leaves the set
	// unchanged.
	if float64(s.used+1)/float64(len(s.index)) > s.maxLoad {
		s.resize(nextSize(bucketsFor(s.used+1, s.maxLoad)))
		i = s.bucketOf(key)
	}

	e = &Element[K]{key: key}
	if head := s.index[i]; head != nil {
		insertBefore(e, head)
	} else {
		insertBefore(e, s.successor(i))
	}
	s.index[i] = e
	s.used++

	if debug {
		fmt.Printf("insert(%v): bucket=%d used=%d buckets=%d\n", key, i, s.used, len(s.index))
	}
	s.checkInvariants()
	return s.iter(e), true
}

// Contains reports whether key is present in the set.
func (s *Set[K]) Contains(key K) bool {
	e, _ := s.locate(key)
	return e != nil
}

// Find returns an iterator to the element holding key, or End if key is not
// present.
func (s *Set[K]) Find(key K) Iterator[K] {
	if e, _ := s.locate(key); e != nil {
		return s.iter(e)
	}
	return s.End()
}

// Erase removes key from the set, reporting whether it was present. It is a
// noop to erase a non-existent key.
func (s *Set[K]) Erase(key K) bool {
	e, i := s.locate(key)
	if e == nil {
		return false
	}
	s.remove(e, i)
	s.checkInvariants()
	return true
}

// EraseAt removes the element at it and returns an iterator to the element
// that followed it. Only iterators to the erased element are invalidated.
func (s *Set[K]) EraseAt(it Iterator[K]) Iterator[K] {
	switch {
	case it.root != s.root:
		panic("hashset: iterator does not belong to this set")
	case it.e == s.root:
		panic("hashset: erase of end iterator")
	case it.e.next == nil:
		panic("hashset: use of erased iterator")
	}
	next := it.e.next
	s.remove(it.e, s.bucketOf(it.e.key))
	s.checkInvariants()
	return s.iter(next)
}

// Clear removes every element, keeping the current bucket count.
func (s *Set[K]) Clear() {
	s.dropElements()
	clear(s.index)
	s.checkInvariants()
}

// Begin returns an iterator to the first element, or End if the set is
// empty.
func (s *Set[K]) Begin() Iterator[K] {
	return s.iter(s.root.next)
}

// End returns the iterator one past the last element.
func (s *Set[K]) End() Iterator[K] {
	return s.iter(s.root)
}

// All calls yield sequentially for each key in the set, in sequence order.
// If yield returns false, iteration stops. yield may erase the key it was
// passed; any other mutation during iteration leaves it unspecified which
// keys are visited.
func (s *Set[K]) All(yield func(key K) bool) {
	for e := s.root.next; e != s.root; {
		next := e.next
		if !yield(e.key) {
			return
		}
		e = next
	}
}

// Empty reports whether the set has no elements.
func (s *Set[K]) Empty() bool {
	return s.used == 0
}

// Len returns the number of elements in the set.
func (s *Set[K]) Len() int {
	return s.used
}

// BucketCount returns the number of buckets in the bucket index.
func (s *Set[K]) BucketCount() int {
	return len(s.index)
}

// LoadFactor returns Len()/BucketCount().
func (s *Set[K]) LoadFactor() float64 {
	return float64(s.used) / float64(len(s.index))
}

// MaxLoadFactor returns the load factor above which an insert grows the
// set.
func (s *Set[K]) MaxLoadFactor() float64 {
	return s.maxLoad
}

// SetMaxLoadFactor sets the maximum load factor, which must be > 0. If the
// current load exceeds f the set is rehashed immediately. If that rehash
// panics (f requires more buckets than the size sequence provides, or the
// allocator fails) the set, including its maximum load factor, is
// unchanged.
func (s *Set[K]) SetMaxLoadFactor(f float64) {
	if !(f > 0) {
		panic(fmt.Sprintf("hashset: invalid max load factor %v", f))
	}
	if s.LoadFactor() > f {
		s.resize(nextSize(bucketsFor(s.used, f)))
	}
	s.maxLoad = f
	s.checkInvariants()
}

// Rehash resizes the set to the smallest bucket count in its size sequence
// that is >= newSize and keeps the load factor within the maximum. It is a
// noop if the current bucket count already satisfies both. Rehash never
// shrinks the set. It panics if the required bucket count exceeds the
// largest size in the sequence, leaving the set unchanged.
func (s *Set[K]) Rehash(newSize int) {
	want := bucketsFor(s.used, s.maxLoad)
	if newSize > 0 && uint64(newSize) > want {
		want = uint64(newSize)
	}
	s.growTo(want)
}

// Reserve rehashes the set so that it can hold n elements without exceeding
// the maximum load factor. Like Rehash, it panics if the required bucket
// count exceeds the largest size in the sequence.
func (s *Set[K]) Reserve(n int) {
	s.growTo(bucketsFor(max(n, s.used), s.maxLoad))
}

// Bucket returns the index of the bucket key maps to, whether or not key is
// present.
func (s *Set[K]) Bucket(key K) int {
	return s.bucketOf(key)
}

// BucketSize returns the number of elements in bucket i. It panics if i is
// not in [0, BucketCount()).
func (s *Set[K]) BucketSize(i int) int {
	if i < 0 || i >= len(s.index) {
		panic(fmt.Sprintf("hashset: bucket %d out of range [0,%d)", i, len(s.index)))
	}
	var n int
	for e := s.index[i]; e != nil && e != s.root && s.bucketOf(e.key) == i; e = e.next {
		n++
	}
	return n
}

// Clone returns a deep copy of the set. The copy shares no elements with s
// and uses the same hash function, allocator and maximum load factor.
func (s *Set[K]) Clone() *Set[K] {
	c := &Set[K]{
		hash:      s.hash,
		allocator: s.allocator,
		root:      newRoot[K](),
		maxLoad:   s.maxLoad,
	}
	c.index = c.allocator.AllocIndex(len(s.index))
	clear(c.index)

	// s's sequence is already in bucket order, so copying it verbatim keeps
	// runs contiguous. The first copy seen for a bucket is its head.
	for e := s.root.next; e != s.root; e = e.next {
		n := &Element[K]{key: e.key}
		insertBefore(n, c.root)
		if i := c.bucketOf(n.key); c.index[i] == nil {
			c.index[i] = n
		}
	}
	c.used = s.used

	c.checkInvariants()
	return c
}

// Assign replaces the contents of s with a copy of other. The configuration
// is copied too: s takes other's hash function, allocator and maximum load
// factor. The copy is built completely before s is modified, so assigning a
// set to itself is safe. Iterators into s's previous contents are
// invalidated.
func (s *Set[K]) Assign(other *Set[K]) {
	c := other.Clone()
	*s, *c = *c, *s
	c.Close()
}

func (s *Set[K]) iter(e *Element[K]) Iterator[K] {
	return Iterator[K]{e: e, root: s.root}
}

func (s *Set[K]) bucketOf(key K) int {
	return int(s.hash(key) % uint64(len(s.index)))
}

// locate returns the element holding key, or nil, along with key's bucket.
func (s *Set[K]) locate(key K) (*Element[K], int) {
	i := s.bucketOf(key)
	for e := s.index[i]; e != nil && e != s.root; e = e.next {
		if e.key == key {
			return e, i
		}
		if e.next != s.root && s.bucketOf(e.next.key) != i {
			break
		}
	}
	return nil, i
}

// successor returns the head of the first non-empty bucket after i, or the
// root if there is none. A new run for bucket i is linked before it.
func (s *Set[K]) successor(i int) *Element[K] {
	for j := i + 1; j < len(s.index); j++ {
		if s.index[j] != nil {
			return s.index[j]
		}
	}
	return s.root
}

// remove unlinks e, which belongs to bucket i, fixing up the bucket's head.
func (s *Set[K]) remove(e *Element[K], i int) {
	if s.index[i] == e {
		if next := e.next; next != s.root && s.bucketOf(next.key) == i {
			s.index[i] = next
		} else {
			s.index[i] = nil
		}
	}
	if debug {
		fmt.Printf("erase(%v): bucket=%d used=%d\n", e.key, i, s.used-1)
	}
	unlink(e)
	s.used--
}

// dropElements detaches every element from the sequence, clearing their
// links so that outstanding iterators cannot be used to walk them.
func (s *Set[K]) dropElements() {
	for e := s.root.next; e != s.root; {
		next := e.next
		e.next = nil
		e.prev = nil
		e = next
	}
	s.root.next = s.root
	s.root.prev = s.root
	s.used = 0
}

func (s *Set[K]) growTo(want uint64) {
	if uint64(len(s.index)) >= want {
		return
	}
	s.resize(nextSize(want))
	s.checkInvariants()
}

// resize rebuilds the bucket index with newBuckets buckets and relinks the
// element sequence into the new bucket order.
func (s *Set[K]) resize(newBuckets int) {
	// Both allocations happen before the sequence is touched. If either
	// panics the set is still intact.
	index := s.allocator.AllocIndex(newBuckets)
	clear(index)
	tails := make([]*Element[K], newBuckets)

	if debug {
		fmt.Printf("resize: buckets=%d->%d used=%d\n", len(s.index), newBuckets, s.used)
	}

	// Thread every element onto the chain of its new bucket through its next
	// link, preserving relative order within each bucket. The prev links are
	// rebuilt below.
	for e := s.root.next; e != s.root; {
		next := e.next
		j := int(s.hash(e.key) % uint64(newBuckets))
		e.next = nil
		if tails[j] == nil {
			index[j] = e
		} else {
			tails[j].next = e
		}
		tails[j] = e
		e = next
	}

	// Splice the chains back onto the root in ascending bucket order.
	s.root.next = s.root
	s.root.prev = s.root
	for j := range index {
		for e := index[j]; e != nil; {
			next := e.next
			insertBefore(e, s.root)
			e = next
		}
	}

	old := s.index
	s.index = index
	s.allocator.FreeIndex(old)
}

func (s *Set[K]) checkInvariants() {
	if invariants {
		if err := s.validate(); err != nil {
			panic(fmt.Sprintf("invariant failed: %v\n%s", err, s.debugString()))
		}
	}
}

// validate checks the structural invariants of the set, returning an error
// describing the first violation found.
func (s *Set[K]) validate() error {
	if len(s.index) == 0 {
		return fmt.Errorf("empty bucket index")
	}
	if s.LoadFactor() > s.maxLoad {
		return fmt.Errorf("load factor %.3f exceeds maximum %.3f", s.LoadFactor(), s.maxLoad)
	}

	seen := make(map[K]struct{}, s.used)
	var count, runs int
	prevBucket := -1
	for e := s.root.next; e != s.root; e = e.next {
		if e.next == nil || e.next.prev != e {
			return fmt.Errorf("element %v: broken next link", e.key)
		}
		if _, ok := seen[e.key]; ok {
			return fmt.Errorf("element %v: duplicate key", e.key)
		}
		seen[e.key] = struct{}{}
		count++

		b := s.bucketOf(e.key)
		switch {
		case b < prevBucket:
			return fmt.Errorf("element %v: bucket %d follows bucket %d", e.key, b, prevBucket)
		case b > prevBucket:
			if s.index[b] != e {
				return fmt.Errorf("element %v: starts run of bucket %d but index points elsewhere", e.key, b)
			}
			runs++
			prevBucket = b
		}
	}
	if s.root.next.prev != s.root {
		return fmt.Errorf("broken root link")
	}
	if count != s.used {
		return fmt.Errorf("found %d elements, but used count is %d", count, s.used)
	}

	var heads int
	for _, e := range s.index {
		if e != nil {
			heads++
		}
	}
	if heads != runs {
		return fmt.Errorf("found %d runs, but %d non-empty index entries", runs, heads)
	}
	return nil
}

func (s *Set[K]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "buckets=%d  used=%d  max-load=%.3f\n", len(s.index), s.used, s.maxLoad)
	for i, head := range s.index {
		if head == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for e := head; e != s.root && e != nil && s.bucketOf(e.key) == i; e = e.next {
			fmt.Fprintf(&buf, " %v", e.key)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
