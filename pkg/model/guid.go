package model

import "github.com/google/uuid"

// ifcAlphabet is the 64-character alphabet of compressed IFC GUIDs.
const ifcAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// guidNamespace scopes the deterministic element ids of this module.
var guidNamespace = uuid.MustParse("8c5ae372-20f5-45c8-8f3e-76f93d4a7e21")

// DeriveGlobalID returns a deterministic 22-character IFC GUID for an
// element, derived from its type and name via UUIDv5. Determinism keeps
// ids stable across re-parses of the same source, which clash results
// are keyed on.
func DeriveGlobalID(ifcType, name string) string {
	u := uuid.NewSHA1(guidNamespace, []byte(ifcType+"/"+name))
	return CompressGUID(u)
}

// CompressGUID encodes a UUID as the 22-character base-64 form used by
// IFC GlobalId attributes: the 128 bits are left-padded with 4 zero
// bits and emitted most significant digit first, so the first character
// is always one of "0123".
func CompressGUID(u uuid.UUID) string {
	b := [16]byte(u)
	var out [22]byte

	// First byte -> 2 characters.
	n := uint32(b[0])
	out[1] = ifcAlphabet[n%64]
	out[0] = ifcAlphabet[n/64]

	// Remaining 15 bytes -> 5 groups of 3 bytes -> 4 characters each.
	for g := 0; g < 5; g++ {
		n = uint32(b[1+3*g])<<16 | uint32(b[2+3*g])<<8 | uint32(b[3+3*g])
		for j := 3; j >= 0; j-- {
			out[2+4*g+j] = ifcAlphabet[n%64]
			n /= 64
		}
	}
	return string(out[:])
}
