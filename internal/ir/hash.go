package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainManifest = "convene/manifest/v1"
	DomainOrdering = "convene/ordering/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestHash computes a stable identity for a set of declarations.
// Declaration order is significant because it drives tie-breaking.
func ManifestHash(decls []Declared) (string, error) {
	list := make([]any, len(decls))
	for i := range decls {
		list[i] = decls[i].Canonical()
	}
	canonical, err := MarshalCanonical(map[string]any{
		"ir_version":  IRVersion,
		"conventions": list,
	})
	if err != nil {
		return "", fmt.Errorf("ManifestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

// OrderingHash computes a stable identity for a resolved ordering, so two
// resolutions can be compared without diffing their entries.
func OrderingHash(host HostType, names []string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"host_type": host.String(),
		"order":     names,
	})
	if err != nil {
		return "", fmt.Errorf("OrderingHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOrdering, canonical), nil
}

// MustOrderingHash is like OrderingHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustOrderingHash(host HostType, names []string) string {
	h, err := OrderingHash(host, names)
	if err != nil {
		panic(err)
	}
	return h
}
