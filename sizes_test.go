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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	for d := uint64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

func TestBucketSizes(t *testing.T) {
	require.EqualValues(t, 8, bucketSizes[0])
	// Primality is checked by trial division, so only the smaller entries.
	for i := 1; i < len(bucketSizes); i++ {
		require.Greater(t, bucketSizes[i], 2*bucketSizes[i-1], "entry %d", i)
		if bucketSizes[i] < 1<<32 {
			require.True(t, isPrime(bucketSizes[i]), "entry %d: %d", i, bucketSizes[i])
		}
	}
}

func TestNextSize(t *testing.T) {
	testCases := []struct {
		n        uint64
		expected int
	}{
		{0, 8},
		{1, 8},
		{8, 8},
		{9, 17},
		{17, 17},
		{18, 37},
		{163, 163},
		{164, 331},
		{1 << 20, 1403641},
	}
	for _, c := range testCases {
		require.Equal(t, c.expected, nextSize(c.n), "n=%d", c.n)
	}
	require.Panics(t, func() { nextSize(math.MaxUint64) })
}

func TestBucketsFor(t *testing.T) {
	testCases := []struct {
		n        int
		maxLoad  float64
		expected uint64
	}{
		{0, 1, 0},
		{1, 1, 1},
		{8, 1, 8},
		{9, 1, 9},
		{5, 0.5, 10},
		{33, 4, 9},
		{10, 0.1, 100},
		{7, 0.3, 24},
	}
	for _, c := range testCases {
		got := bucketsFor(c.n, c.maxLoad)
		require.Equal(t, c.expected, got, "n=%d maxLoad=%v", c.n, c.maxLoad)
		require.LessOrEqual(t, float64(c.n)/float64(max(got, 1)), c.maxLoad)
	}
}
