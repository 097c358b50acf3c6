package orders

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const idPrefix = "CMB-"

// NewOrderID produces an identifier like CMB-MFKJ3A2Q7X91Z: a base36
// millisecond timestamp plus a random base36 suffix, upper-cased. Collisions
// are exceedingly rare but not impossible; Service.Create retries against the
// store's duplicate check.
func NewOrderID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return idPrefix + strings.ToUpper(ts+randomBase36(6))
}

func randomBase36(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to a timestamp-derived digit rather than panic.
			b[i] = alphabet[time.Now().UnixNano()%36]
			continue
		}
		b[i] = alphabet[v.Int64()]
	}
	return string(b)
}
