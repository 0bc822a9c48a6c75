package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rahulkv7/StyleKart/config"
	"github.com/rahulkv7/StyleKart/models"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the caller identity carried in a bearer token.
type Identity struct {
	ID    string
	Phone string
	Email string
	Role  string
}

// GenerateToken creates a JWT for a verified user
func GenerateToken(user *models.User) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["id"] = strconv.FormatUint(uint64(user.ID), 10)
	claims["phone"] = user.Phone
	claims["email"] = user.Email
	claims["role"] = user.Role
	claims["exp"] = time.Now().Add(7 * 24 * time.Hour).Unix()

	return token.SignedString([]byte(config.App.JWTSecret))
}

// ParseIdentity verifies a bearer token and extracts the identity claims.
// A token carrying neither id nor phone still parses; the caller decides
// whether an empty identity is an error.
func ParseIdentity(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.App.JWTSecret), nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	ident := Identity{}
	if v, ok := claims["id"].(string); ok {
		ident.ID = v
	}
	if v, ok := claims["phone"].(string); ok {
		ident.Phone = v
	}
	if v, ok := claims["email"].(string); ok {
		ident.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		ident.Role = v
	}
	return ident, nil
}

// GenerateOTP creates a 4-digit OTP with its expiry
func GenerateOTP(ttl time.Duration) (string, time.Time) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		// crypto/rand failing means the process has bigger problems
		panic(fmt.Sprintf("Failed to generate OTP: %v", err))
	}
	otp := strconv.FormatInt(1000+n.Int64(), 10)
	return otp, time.Now().Add(ttl)
}

// HashOTP creates a bcrypt hash of the OTP for storage at rest
func HashOTP(otp string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckOTP compares an OTP against its stored hash
func CheckOTP(otp, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(otp)) == nil
}
