// Package idgen provides pluggable ID generation.
//
// Snippets and history records only need ids that are unique within one
// session, so the default strategy is a millisecond time prefix plus a short
// random suffix. Collisions are possible in principle and tolerated.
package idgen

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces string identifiers.
type Generator func() string

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NanoID returns a Generator that produces base-36 random strings of the given length.
func NanoID(length int) Generator {
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(buf)
	}
}

// UUIDv7 returns a Generator that produces time-sortable RFC 9562 UUIDs.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Timestamped returns a Generator producing "<unix millis><suffix>" where
// suffix comes from the inner generator.
func Timestamped(gen Generator) Generator {
	return func() string {
		return strconv.FormatInt(time.Now().UnixMilli(), 10) + gen()
	}
}

// Default returns the session-scoped strategy used for snippets and history records.
func Default() Generator {
	return Timestamped(NanoID(9))
}

// Strategy names accepted by ByName.
const (
	StrategyDefault = "default"
	StrategyUUIDv7  = "uuidv7"
)

// ByName returns the generator for a configured strategy name. An empty name
// selects the default.
func ByName(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyDefault:
		return Default(), nil
	case StrategyUUIDv7:
		return UUIDv7(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", name)
	}
}
