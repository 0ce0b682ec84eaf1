package slint

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UUID is a canonical-form UUID string, used as the build identity of a
// compiled unit. Unmarshalling validates the shape so a corrupted unit
// file is rejected early.
type UUID string

// NewUUID returns a fresh random UUID.
func NewUUID() UUID {
	return UUID(uuid.NewString())
}

const uuidLength = 36

func (u *UUID) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err == nil {
		v := ParseUUID(j)
		if v != "" {
			*u = v
			return nil
		}
	}
	return fmt.Errorf("Bad UUID: %v", string(b))
}

// ParseUUID validates the canonical 8-4-4-4-12 form, returning the empty
// UUID when the text does not match.
func ParseUUID(text string) UUID {
	if len(text) != uuidLength {
		return UUID("")
	}
	if text[8] != '-' || text[13] != '-' || text[18] != '-' || text[23] != '-' {
		return ""
	}
	return UUID(text)
}
