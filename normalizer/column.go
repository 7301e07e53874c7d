package normalizer

import "strconv"

// InvalidColumn is returned by ResolveColumnIndex for unusable references.
const InvalidColumn = -1

// ResolveColumnIndex converts a column reference ("A".."ZZ" or a numeric
// string) into a zero-based index. Letters are read as a base-26 spreadsheet
// column; numeric strings are taken as the index itself.
func ResolveColumnIndex(ref string) int {
	if ref == "" {
		return InvalidColumn
	}

	if isUpperLetters(ref) {
		result := 0
		for _, r := range ref {
			result = result*26 + int(r-'A'+1)
		}
		return result - 1
	}

	index, err := strconv.Atoi(ref)
	if err != nil || index < 0 {
		return InvalidColumn
	}
	return index
}

// ColumnLetters is the inverse of ResolveColumnIndex for letter references.
func ColumnLetters(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

func isUpperLetters(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < 'A' || value[i] > 'Z' {
			return false
		}
	}
	return true
}
