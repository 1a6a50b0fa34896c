package model

import (
	"bytes"
	"fmt"
	"strconv"
)

// Flag is a boolean that travels as 0/1 on the wire and in SQLite, for
// compatibility with the original REST payloads. Go code treats it as a bool.
//
// Unmarshaling is permissive: 0/1, true/false and "0"/"1" are all accepted,
// since hand-written clients send whichever is convenient.
type Flag bool

func (f Flag) Bool() bool { return bool(f) }

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	switch s {
	case "0", "false":
		*f = false
		return nil
	case "1", "true":
		*f = true
		return nil
	}
	// Quoted variants ("0", "true", ...).
	if unq, err := strconv.Unquote(s); err == nil {
		switch unq {
		case "0", "false":
			*f = false
			return nil
		case "1", "true":
			*f = true
			return nil
		}
	}
	return fmt.Errorf("invalid boolean flag: %s", s)
}
