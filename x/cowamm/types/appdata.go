package types

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

// AppData is opaque 32-byte order metadata used by downstream systems for correlation.
type AppData [32]byte

// ParseAppData decodes a hex string, with or without 0x prefix. The empty string is the zero value.
func ParseAppData(s string) (AppData, error) {
	var out AppData
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return out, nil
	}
	bz, err := hex.DecodeString(s)
	if err != nil {
		return out, ErrInvalidConfiguration.Wrapf("app data: %v", err)
	}
	if len(bz) != len(out) {
		return out, ErrInvalidConfiguration.Wrapf("app data must be %d bytes, got %d", len(out), len(bz))
	}
	copy(out[:], bz)
	return out, nil
}

// IsZero reports whether no metadata is set.
func (a AppData) IsZero() bool {
	return a == AppData{}
}

func (a AppData) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AppData) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AppData) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	parsed, err := ParseAppData(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
