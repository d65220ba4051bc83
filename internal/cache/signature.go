package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"ratebridge/internal/analyze"
)

// Signature digests the sorted (field name, type) pairs of the profiles.
// Row content and row count do not contribute, so datasets with the same
// layout share a signature whatever order their fields are enumerated in.
func Signature(profiles []analyze.ColumnProfile) string {
	types := make(map[string]string, len(profiles))
	for _, p := range profiles {
		types[p.Name] = p.Type.String()
	}

	return SignatureOf(types)
}

// SignatureOf digests field name -> type name pairs.
func SignatureOf(types map[string]string) string {
	names := make([]string, 0, len(types))
	for n := range types {
		names = append(names, n)
	}

	sort.Strings(names)

	h := sha256.New()
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte{0})
		h.Write([]byte(types[n]))
		h.Write([]byte{'\n'})
	}

	return hex.EncodeToString(h.Sum(nil))
}
