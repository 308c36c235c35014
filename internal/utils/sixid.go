package utils

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
)

// SixID is a 6-byte random identifier rendered as 10 Crockford Base32
// characters. It tags requests in logs and response headers.
type SixID [6]byte

const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var crockford = base32.NewEncoding(crockfordAlphabet).WithPadding(base32.NoPadding)

// NewSixIDHook lets tests force the next generated id.
var NewSixIDHook func() (id SixID, override bool)

// NewSixID returns a random SixID.
func NewSixID() SixID {
	if NewSixIDHook != nil {
		if id, ok := NewSixIDHook(); ok {
			return id
		}
	}
	var id SixID
	_, _ = rand.Read(id[:])
	return id
}

func (id SixID) String() string {
	return crockford.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value.
func (id SixID) IsZero() bool {
	return id == SixID{}
}

var lenientCrockford = strings.NewReplacer("O", "0", "I", "1", "L", "1", "-", "", " ", "")

// ParseSixID decodes a SixID, accepting lowercase input, hyphens and the
// commonly confused letters O, I and L.
func ParseSixID(s string) (SixID, error) {
	s = lenientCrockford.Replace(strings.ToUpper(s))
	if len(s) != 10 {
		return SixID{}, errors.New("invalid SixID: must be 10 characters")
	}
	raw, err := crockford.DecodeString(s)
	if err != nil || len(raw) != 6 {
		return SixID{}, errors.New("invalid SixID: not Crockford Base32")
	}
	var id SixID
	copy(id[:], raw)
	return id, nil
}
