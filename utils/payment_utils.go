package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

var newOrderID func() string

func init() {
	gen, err := nanoid.CustomASCII("0123456789", 6)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize order id generator: %v", err))
	}
	newOrderID = gen
}

// GenerateTxnID mints a transaction id unique per call. The id is URL-safe
// and contains no "|" so it can participate in the signed field chain.
func GenerateTxnID() string {
	entropy := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("T%d%s", time.Now().UnixMilli(), entropy)
}

// GenerateOrderID mints a 6-digit merchant order id.
func GenerateOrderID() string {
	return newOrderID()
}

// FormatAmount renders an amount with exactly two fractional digits. The
// formatted string, not the numeric value, participates in signing.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
