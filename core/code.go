package core

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// generateCode returns a fixed-width numeric code with no leading zero,
// uniform over the width's range: 6 digits gives [100000, 999999].
func generateCode(width int) string {
	if width < 1 {
		width = DefaultCodeLength
	}
	lo := int64(1)
	for i := 1; i < width; i++ {
		lo *= 10
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9*lo))
	if err != nil {
		// rand.Reader failing means the platform entropy source is broken.
		panic(err)
	}
	return strconv.FormatInt(lo+n.Int64(), 10)
}
