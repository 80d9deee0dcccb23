package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomAlphaNumeric generates a random alphanumeric string of the
// given length. Non-cryptographic; identifiers only.
func GenerateRandomAlphaNumeric(length int) string {
	if length <= 0 {
		return ""
	}

	const chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(chars[rand.IntN(len(chars))])
	}

	return builder.String()
}

// GenerateTrackingID generates a shipment tracking ID in the "TRK-" format.
// The console's timeline endpoints fill one in when a request omits it.
func GenerateTrackingID() string {
	return "TRK-" + GenerateRandomAlphaNumeric(10)
}
