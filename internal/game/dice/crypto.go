package dice

import (
	"crypto/rand"
	"math/big"
)

// cryptoSource draws from the operating system's CSPRNG. It only picks seeds.
type cryptoSource struct{}

// NewCryptoSource returns a non-reproducible Source.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics if n <= 0 or if the system randomness source fails.
func (cryptoSource) Intn(n int) int {
	mustBePositive(n)
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: reading system randomness: " + err.Error())
	}
	return int(v.Int64())
}

func mustBePositive(n int) {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
}
