/*

This is a custom type for assets which identifies a fungible token on the
ledger: either the ledger's native currency, or a (code, issuer) pair.

*/

package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidAsset = errors.New("invalid asset")

// Asset identifies a fungible token. The zero value is not a valid asset;
// use NativeAsset or NewAsset. Equality is structural.
type Asset struct {
	Code   string `json:"code,omitempty"`
	Issuer string `json:"issuer,omitempty"`
	Native bool   `json:"native,omitempty"`
}

// NativeAsset returns the ledger's native currency.
func NativeAsset() Asset {
	return Asset{Native: true}
}

// NewAsset returns an issued asset identified by (code, issuer).
func NewAsset(code, issuer string) (Asset, error) {
	if strings.TrimSpace(code) == "" {
		return Asset{}, fmt.Errorf("%w: asset code cannot be empty", ErrInvalidAsset)
	}
	if strings.TrimSpace(issuer) == "" {
		return Asset{}, fmt.Errorf("%w: asset issuer cannot be empty", ErrInvalidAsset)
	}
	return Asset{Code: code, Issuer: issuer}, nil
}

// ParseAsset parses the canonical string form produced by Asset.String:
// "native" for the native currency, "CODE:ISSUER" otherwise.
func ParseAsset(s string) (Asset, error) {
	if s == "native" {
		return NativeAsset(), nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Asset{}, fmt.Errorf("%w: %q is neither \"native\" nor \"CODE:ISSUER\"", ErrInvalidAsset, s)
	}
	return NewAsset(parts[0], parts[1])
}

// String returns the canonical string form of the asset.
func (a Asset) String() string {
	if a.Native {
		return "native"
	}
	return a.Code + ":" + a.Issuer
}

// Equal reports structural equality.
func (a Asset) Equal(other Asset) bool {
	return a == other
}

// Less defines the canonical asset ordering used everywhere a pool id is
// derived: the native asset sorts first, issued assets sort lexicographically
// by code, then by issuer.
func (a Asset) Less(other Asset) bool {
	if a.Native != other.Native {
		return a.Native
	}
	if a.Code != other.Code {
		return a.Code < other.Code
	}
	return a.Issuer < other.Issuer
}

// SortAssets returns the pair in canonical order and whether the inputs were
// swapped to get there.
func SortAssets(a, b Asset) (Asset, Asset, bool) {
	if b.Less(a) {
		return b, a, true
	}
	return a, b, false
}

// DerivePoolID derives the deterministic pool identifier for an unordered
// asset pair at a given fee tier. The same pair at the same fee always yields
// the same id regardless of argument order; a different fee yields a
// different id.
func DerivePoolID(a, b Asset, feeBps int) string {
	first, second, _ := SortAssets(a, b)
	sum := sha256.Sum256([]byte(first.String() + "|" + second.String() + "|" + strconv.Itoa(feeBps)))
	return hex.EncodeToString(sum[:])
}
