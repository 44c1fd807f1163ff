package index

// Position lists are stored delta-encoded on disk: the first position
// verbatim, then the gap to each successor. Gaps are small for frequent
// terms, which keeps the serialized integers short.

// EncodeDelta converts an ascending position list into its delta form.
// The empty list maps to the empty list.
func EncodeDelta(positions []int) []int {
	if len(positions) == 0 {
		return []int{}
	}
	encoded := make([]int, len(positions))
	encoded[0] = positions[0]
	for i := 1; i < len(positions); i++ {
		encoded[i] = positions[i] - positions[i-1]
	}
	return encoded
}

// DecodeDelta is the inverse prefix sum of EncodeDelta.
func DecodeDelta(encoded []int) []int {
	if len(encoded) == 0 {
		return []int{}
	}
	positions := make([]int, len(encoded))
	positions[0] = encoded[0]
	for i := 1; i < len(encoded); i++ {
		positions[i] = positions[i-1] + encoded[i]
	}
	return positions
}
