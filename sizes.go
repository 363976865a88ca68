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
	"fmt"
	"math"
	"sort"
)

// bucketSizes is the ascending sequence of bucket counts a Set may use. The
// first entry is the minimum table size. Every following entry is the
// smallest prime >= 2*prev+1.
var bucketSizes = [...]uint64{
	8, 17, 37, 79, 163, 331, 673, 1361, 2729, 5471, 10949, 21911, 43853,
	87719, 175447, 350899, 701819, 1403641, 2807303, 5614657, 11229331,
	22458671, 44917381, 89834777, 179669557, 359339171, 718678369,
	1437356741, 2874713497, 5749427029, 11498854069, 22997708177,
	45995416409, 91990832831, 183981665689, 367963331389, 735926662813,
	1471853325643, 2943706651297, 5887413302609, 11774826605231,
	23549653210463, 47099306420939, 94198612841897, 188397225683869,
}

// nextSize returns the smallest entry of bucketSizes that is >= n.
func nextSize(n uint64) int {
	i := sort.Search(len(bucketSizes), func(i int) bool {
		return bucketSizes[i] >= n
	})
	if i == len(bucketSizes) || bucketSizes[i] > math.MaxInt {
		panic(fmt.Sprintf("hashset: bucket count %d exceeds maximum table size", n))
	}
	return int(bucketSizes[i])
}

// bucketsFor returns the number of buckets needed to hold n elements without
// the load factor exceeding maxLoad.
func bucketsFor(n int, maxLoad float64) uint64 {
	if n <= 0 {
		return 0
	}
	b := math.Ceil(float64(n) / maxLoad)
	if b >= math.MaxUint64 {
		return math.MaxUint64
	}
	r := uint64(b)
	// Guard against float rounding leaving n/r a hair above maxLoad.
	for float64(n)/float64(r) > maxLoad {
		r++
	}
	return r
}
