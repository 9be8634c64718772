package ir

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Domain prefixes for fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainResponse = "wikisparql/response/v1"
	DomainQuery    = "wikisparql/query/v1"
)

// Fingerprint computes a stable 128-bit xxh3 digest of parts with domain
// separation, hex encoded.
// Format: XXH3-128(domain + 0x00 + part1 + 0x00 + part2 ...)
// The null byte separator prevents part boundary ambiguity.
func Fingerprint(domain string, parts ...string) string {
	n := len(domain)
	for _, p := range parts {
		n += len(p) + 1
	}
	buf := make([]byte, 0, n)
	buf = append(buf, domain...)
	for _, p := range parts {
		buf = append(buf, 0x00)
		buf = append(buf, p...)
	}
	sum := xxh3.Hash128(buf).Bytes()
	return hex.EncodeToString(sum[:])
}
