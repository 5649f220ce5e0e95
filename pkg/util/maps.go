package util

import (
	"hash/fnv"
	"math/rand"
	"sort"
)

// KeySorter is a type for a function that sorts integer keys based on their values in a map.
type KeySorter func(map[int]int) []int

// SortedKeys returns the keys of the argument, sorted in ascending order.
func SortedKeys(input map[int]int) []int {
	keys := make([]int, 0, len(input))

	for key := range input {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	return keys
}

// ShuffledKeys returns a shuffled version of the keys in the argument map. The provided seedStr
// is hashed and used to seed the random number generator, so the same seed always produces
// the same order.
func ShuffledKeys(input map[int]int, seedStr string) []int {
	keys := SortedKeys(input)

	hash := fnv.New64()
	hash.Write([]byte(seedStr))

	random := rand.New(rand.NewSource(int64(hash.Sum64())))
	random.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	return keys
}

// SortedKeysByValue returns the keys in a map, sorted by the map values. Keys with equal
// values keep the order given by keySorter.
func SortedKeysByValue(input map[int]int, asc bool, keySorter KeySorter) []int {
	keys := keySorter(input)

	sort.SliceStable(
		keys, func(a, b int) bool {
			if asc {
				return input[keys[a]] < input[keys[b]]
			}
			return input[keys[a]] > input[keys[b]]
		},
	)

	return keys
}

// SortedStringKeys returns the keys of a string-keyed map in ascending order.
func SortedStringKeys[V any](input map[string]V) []string {
	keys := make([]string, 0, len(input))

	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
