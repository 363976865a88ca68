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

import "golang.org/x/exp/constraints"

// Element is a node of the element sequence. Every key in a Set lives in
// exactly one Element, which is allocated on insert and relinked (never
// copied) by rehash.
type Element[K constraints.Integer] struct {
	next, prev *Element[K]
	key        K
}

// Key returns the key held by the element.
func (e *Element[K]) Key() K {
	return e.key
}

// The element sequence is a circular doubly linked list threaded through a
// root sentinel. root.next is the first element and root.prev the last; an
// empty sequence has root.next == root.prev == root.

func newRoot[K constraints.Integer]() *Element[K] {
	r := &Element[K]{}
	r.next = r
	r.prev = r
	return r
}

// insertBefore links e immediately before at.
func insertBefore[K constraints.Integer](e, at *Element[K]) {
	e.prev = at.prev
	e.next = at
	at.prev.next = e
	at.prev = e
}

// unlink detaches e from its neighbours and clears its links so that stale
// references fail loudly.
func unlink[K constraints.Integer](e *Element[K]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
}

// Iterator is a position in a Set's element sequence. The zero Iterator is
// not valid. Iterators are comparable: two iterators are equal iff they
// refer to the same position.
//
// An Iterator stays valid across every operation except the erasure of the
// element it refers to. Rehash relinks elements, so an iterator survives it
// but the elements that follow it may change.
type Iterator[K constraints.Integer] struct {
	e    *Element[K]
	root *Element[K]
}

// Key returns the key at the iterator's position. It panics if the iterator
// is at End.
func (it Iterator[K]) Key() K {
	if it.e == it.root {
		panic("hashset: dereference of end iterator")
	}
	return it.e.key
}

// Element returns the element at the iterator's position, or nil at End.
func (it Iterator[K]) Element() *Element[K] {
	if it.e == it.root {
		return nil
	}
	return it.e
}

// Next returns the iterator following it. Next of the last element is End.
func (it Iterator[K]) Next() Iterator[K] {
	if it.e == it.root {
		panic("hashset: increment of end iterator")
	}
	if it.e.next == nil {
		panic("hashset: use of erased iterator")
	}
	return Iterator[K]{e: it.e.next, root: it.root}
}

// Prev returns the iterator preceding it. Prev of End is the last element.
// It panics if it is the first element.
func (it Iterator[K]) Prev() Iterator[K] {
	if it.e.prev == nil {
		panic("hashset: use of erased iterator")
	}
	if it.e.prev == it.root {
		panic("hashset: decrement of begin iterator")
	}
	return Iterator[K]{e: it.e.prev, root: it.root}
}
