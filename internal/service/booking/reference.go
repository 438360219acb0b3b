package booking

import (
	"math/rand"
	"strconv"
	"time"
)

const (
	referencePrefix   = "KW"
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newReference builds a human-readable booking reference: fixed prefix, the
// last eight digits of the current unix-millisecond clock, and four random
// characters. Collisions are rare but possible, so inserts retry on the
// unique constraint.
func newReference() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}
	return referencePrefix + ts + randomUpper(4)
}

func newConfirmationCode() string {
	return randomUpper(6)
}

func randomUpper(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = referenceAlphabet[rand.Intn(len(referenceAlphabet))]
	}
	return string(b)
}
