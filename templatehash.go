package corelog

import "hash/fnv"

// templateHash computes FNV-1a 32-bit of the raw template string. Every
// entry sharing a template carries the same hash, letting formatters (CLEF's
// `@i`) identify a template without repeating its text.
func templateHash(template string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(template))
	return h.Sum32()
}
