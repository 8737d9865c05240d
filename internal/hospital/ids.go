package hospital

import (
	"fmt"
	"math/rand"
	"strings"
)

// DefaultPatientPassword is issued to every admitted patient and shown once
// on the admission receipt.
const DefaultPatientPassword = "Hospice2025"

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewPatientID returns an identifier in the PAT+6-digits format.
func NewPatientID() string {
	return fmt.Sprintf("PAT%d", 100000+rand.Intn(900000))
}

// NewToken returns a 9-character base-36 token used for notification ids.
func NewToken() string {
	var b strings.Builder
	b.Grow(9)
	for i := 0; i < 9; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return b.String()
}
