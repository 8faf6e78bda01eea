package domain

import "strings"

// RefKind discriminates the two resolution backends.
type RefKind int

const (
	// RefStore routes to the store directory.
	RefStore RefKind = iota
	// RefPlace routes to the external location provider.
	RefPlace
)

// storePrefix marks store-backed refs on the wire. The remainder is the
// store name with spaces replaced by storeSeparator.
const (
	storePrefix    = "store_"
	storeSeparator = "_"
)

// Ref identifies a location candidate across one lookup interaction. It is
// a closed sum: exactly one of the two variants is populated, decided at
// search time, so resolve-side dispatch never re-inspects string prefixes.
type Ref struct {
	kind  RefKind
	store string // exact store name, RefStore only
	token string // provider-native token, RefPlace only
}

// StoreRef builds a reference to a directory store by exact name.
func StoreRef(name string) Ref {
	return Ref{kind: RefStore, store: name}
}

// PlaceRef builds a reference holding a provider-native token.
func PlaceRef(token string) Ref {
	return Ref{kind: RefPlace, token: token}
}

// Kind reports which backend the ref routes to.
func (r Ref) Kind() RefKind { return r.kind }

// StoreName returns the exact store name for RefStore refs, else "".
func (r Ref) StoreName() string { return r.store }

// Token returns the provider token for RefPlace refs, else "".
func (r Ref) Token() string { return r.token }

// Encode renders the ref as an opaque wire string. Store names containing
// the separator character do not survive a decode; see the package doc.
func (r Ref) Encode() string {
	if r.kind == RefStore {
		return storePrefix + strings.ReplaceAll(r.store, " ", storeSeparator)
	}
	return r.token
}

// MarshalText implements encoding.TextMarshaler using the wire encoding.
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.Encode()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseRef.
func (r *Ref) UnmarshalText(b []byte) error {
	*r = ParseRef(string(b))
	return nil
}

// ParseRef decodes a wire string back into a Ref. This is the only place
// the store prefix is inspected; everything downstream switches on Kind.
func ParseRef(s string) Ref {
	if rest, ok := strings.CutPrefix(s, storePrefix); ok {
		return StoreRef(strings.ReplaceAll(rest, storeSeparator, " "))
	}
	return PlaceRef(s)
}
