package utils

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// The gateway contract signs a pipe-joined field chain with SHA-512. The
// field count is part of the contract: absent optional fields are encoded as
// empty strings, never omitted. Gateway documentation disagrees on whether
// the forward chain carries five or six trailing empty placeholders before
// the salt, so both are supported as candidates on the verify side.

// HashChain joins the fields with "|" in the exact order given and returns
// the lowercase hex SHA-512 digest of the result.
func HashChain(fields ...string) string {
	sum := sha512.Sum512([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

// PaymentFields holds the signed fields of a gateway exchange. UDF values
// are opaque pass-throughs echoed back by the gateway in its callback.
type PaymentFields struct {
	Key         string
	TxnID       string
	Amount      string
	ProductInfo string
	Firstname   string
	Email       string
	UDF         [5]string
}

// RequestHash computes the forward (request) signature with the given number
// of trailing empty placeholders before the salt.
func RequestHash(f PaymentFields, salt string, placeholders int) string {
	fields := make([]string, 0, 12+placeholders)
	fields = append(fields, f.Key, f.TxnID, f.Amount, f.ProductInfo, f.Firstname, f.Email)
	fields = append(fields, f.UDF[:]...)
	for i := 0; i < placeholders; i++ {
		fields = append(fields, "")
	}
	fields = append(fields, salt)
	return HashChain(fields...)
}

// RequestHashCandidates returns the forward signatures for both documented
// placeholder conventions, five empties first.
func RequestHashCandidates(f PaymentFields, salt string) []string {
	return []string{
		RequestHash(f, salt, 5),
		RequestHash(f, salt, 6),
	}
}

// CallbackHash computes the reverse (callback) signature: the forward chain
// reversed field-for-field, with the salt first and the status inserted after
// it. When withPlaceholders is set, an empty placeholder block follows the
// status, mirroring the forward variant that carries extra empties.
func CallbackHash(f PaymentFields, status, salt string, withPlaceholders bool) string {
	fields := make([]string, 0, 18)
	fields = append(fields, salt, status)
	if withPlaceholders {
		fields = append(fields, "", "", "", "", "")
	}
	fields = append(fields, f.UDF[4], f.UDF[3], f.UDF[2], f.UDF[1], f.UDF[0])
	fields = append(fields, f.Email, f.Firstname, f.ProductInfo, f.Amount, f.TxnID, f.Key)
	return HashChain(fields...)
}

// CallbackHashCandidates returns both reverse variants.
func CallbackHashCandidates(f PaymentFields, status, salt string) []string {
	return []string{
		CallbackHash(f, status, salt, false),
		CallbackHash(f, status, salt, true),
	}
}

// VerifyCallbackHash reports whether the hash posted by the gateway matches
// any supported reverse variant.
func VerifyCallbackHash(f PaymentFields, status, salt, received string) bool {
	if received == "" {
		return false
	}
	for _, candidate := range CallbackHashCandidates(f, status, salt) {
		if received == candidate {
			return true
		}
	}
	return false
}
