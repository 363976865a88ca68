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
	"testing"

	"github.com/stretchr/testify/require"
)

func listKeys(t *testing.T, root *Element[int]) []int {
	var r []int
	for e := root.next; e != root; e = e.next {
		require.Same(t, e, e.next.prev)
		r = append(r, e.key)
	}
	return r
}

func TestListRelink(t *testing.T) {
	root := newRoot[int]()
	require.Empty(t, listKeys(t, root))

	a := &Element[int]{key: 1}
	b := &Element[int]{key: 2}
	c := &Element[int]{key: 3}
	insertBefore(a, root)
	insertBefore(c, root)
	insertBefore(b, c)
	require.Equal(t, []int{1, 2, 3}, listKeys(t, root))
	require.Same(t, a, root.next)
	require.Same(t, c, root.prev)

	unlink(b)
	require.Nil(t, b.next)
	require.Nil(t, b.prev)
	require.Equal(t, []int{1, 3}, listKeys(t, root))

	// A detached element can be relinked elsewhere.
	insertBefore(b, a)
	require.Equal(t, []int{2, 1, 3}, listKeys(t, root))

	unlink(a)
	unlink(b)
	unlink(c)
	require.Same(t, root, root.next)
	require.Same(t, root, root.prev)
}

func TestIteratorEquality(t *testing.T) {
	s := New[int](0)
	it, _ := s.Insert(4)
	require.Equal(t, s.Begin(), it)
	require.Equal(t, s.End(), it.Next())
	require.Equal(t, it, it.Next().Prev())
	require.Equal(t, 4, it.Element().Key())

	other := New[int](0)
	require.NotEqual(t, s.End(), other.End())
}
