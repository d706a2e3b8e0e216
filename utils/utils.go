package utils

import (
	"math/rand"
	"os"
	"time"

	"github.com/eventatlas/portalfeed/utils/dotenv"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// Min returns the smaller of two ints.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RandomAlphabetString returns a random lowercase string of the given length,
// used for throwaway database names and the like.
func RandomAlphabetString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// DateOnly drops the wall-clock part of an instant, normalized to UTC
// midnight, so values stored in any zone compare by calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsProdEnv returns true iff the current process runs in the production
// environment.
func IsProdEnv() bool {
	return os.Getenv("PORTALFEED_ENV") == dotenv.ProdEnv
}
