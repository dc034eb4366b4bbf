package extract

import "strings"

// extractPlain treats content as UTF-8 text, replacing any invalid byte
// sequences with the replacement character.
func extractPlain(content []byte) (string, error) {
	return strings.ToValidUTF8(string(content), "�"), nil
}
