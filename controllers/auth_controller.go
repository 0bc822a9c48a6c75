package controllers

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulkv7/StyleKart/config"
	"github.com/rahulkv7/StyleKart/metrics"
	"github.com/rahulkv7/StyleKart/models"
	"github.com/rahulkv7/StyleKart/utils"
	"gorm.io/gorm"
)

const (
	maxOTPAttempts  = 3
	otpLockDuration = 2 * time.Hour
)

// issueOTP stores a fresh OTP on the user row and returns the plaintext code
// for delivery. The code itself is persisted bcrypt-hashed only.
func issueOTP(user *models.User, ttl time.Duration) (string, error) {
	otp, expiry := utils.GenerateOTP(ttl)
	hash, err := utils.HashOTP(otp)
	if err != nil {
		return "", err
	}
	user.OTPHash = hash
	user.OTPExpires = &expiry
	user.OTPAttempts = 0
	return otp, nil
}

// deliverOTP pushes the code to the account's email when one exists. SMS is
// handled by an external sender; in non-production the code is echoed in the
// response instead.
func deliverOTP(user *models.User, otp string) {
	metrics.OTPRequestsTotal.Inc()
	if user.Email == "" {
		return
	}
	go func(email, code string) {
		if err := utils.SendOTPEmail(email, code); err != nil {
			utils.LogError("Failed to email OTP to %s: %v", email, err)
		}
	}(user.Email, otp)
}

func otpResponse(message, phone, otp string) gin.H {
	data := gin.H{"phone": phone}
	if config.App.Env != "production" {
		data["otp"] = otp
	}
	data["message"] = message
	return data
}

// RegisterRequest is the new-account payload. Only phone is mandatory.
type RegisterRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	InviteCode string `json:"inviteCode"`
	Gender     string `json:"gender"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	utils.LogInfo("Register called")

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	if req.Phone == "" {
		utils.BadRequest(c, "Phone is required", nil)
		return
	}

	db := config.DB
	var user models.User
	err := db.Where("phone = ?", req.Phone).First(&user).Error
	if err == nil {
		otp, err := issueOTP(&user, 2*time.Minute)
		if err != nil {
			utils.RespondError(c, utils.StorageError("Failed to issue OTP", err))
			return
		}
		if err := db.Save(&user).Error; err != nil {
			utils.RespondError(c, utils.StorageError("Failed to update user", err))
			return
		}
		deliverOTP(&user, otp)
		utils.LogInfo("Existing user %s re-sent OTP on register", req.Phone)
		utils.Success(c, "User already exists. OTP sent for login.", otpResponse("User already exists. OTP sent for login.", req.Phone, otp))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, utils.StorageError("Failed to look up user", err))
		return
	}

	user = models.User{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Role:       req.Role,
		InviteCode: req.InviteCode,
		Gender:     req.Gender,
	}
	if user.Role == "" {
		user.Role = "user"
	}
	otp, otpErr := issueOTP(&user, 2*time.Minute)
	if otpErr != nil {
		utils.RespondError(c, utils.StorageError("Failed to issue OTP", otpErr))
		return
	}
	if err := db.Create(&user).Error; err != nil {
		utils.RespondError(c, utils.StorageError("Failed to create user", err))
		return
	}
	deliverOTP(&user, otp)
	utils.LogInfo("User registered with phone %s", req.Phone)
	utils.Created(c, "User registered. OTP sent.", otpResponse("User registered. OTP sent.", req.Phone, otp))
}

// PhoneRequest carries the phone-only payloads of login and send-otp
type PhoneRequest struct {
	Phone string `json:"phone"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	utils.LogInfo("Login called")

	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
		utils.BadRequest(c, "Phone required", nil)
		return
	}

	db := config.DB
	var user models.User
	if err := db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogInfo("Login attempt for unknown phone %s", req.Phone)
			utils.Success(c, "User not found", gin.H{"exists": false, "phone": req.Phone})
			return
		}
		utils.RespondError(c, utils.StorageError("Failed to look up user", err))
		return
	}

	otp, err := issueOTP(&user, 2*time.Minute)
	if err != nil {
		utils.RespondError(c, utils.StorageError("Failed to issue OTP", err))
		return
	}
	if err := db.Save(&user).Error; err != nil {
		utils.RespondError(c, utils.StorageError("Failed to update user", err))
		return
	}
	deliverOTP(&user, otp)

	data := otpResponse("OTP sent", req.Phone, otp)
	data["exists"] = true
	utils.Success(c, "OTP sent", data)
}

// POST /api/auth/send-otp
//
// Issues an OTP for the phone, creating the account on first contact.
func SendOTP(c *gin.Context) {
	utils.LogInfo("SendOTP called")

	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
		utils.BadRequest(c, "Phone required", nil)
		return
	}

	db := config.DB
	var user models.User
	err := db.Where("phone = ?", req.Phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Phone: req.Phone, Role: "user"}
		otp, otpErr := issueOTP(&user, 5*time.Minute)
		if otpErr != nil {
			utils.RespondError(c, utils.StorageError("Failed to issue OTP", otpErr))
			return
		}
		if err := db.Create(&user).Error; err != nil {
			utils.RespondError(c, utils.StorageError("Failed to create user", err))
			return
		}
		deliverOTP(&user, otp)
		utils.Success(c, "OTP sent successfully", otpResponse("OTP sent successfully", req.Phone, otp))
		return
	}
	if err != nil {
		utils.RespondError(c, utils.StorageError("Failed to look up user", err))
		return
	}

	otp, otpErr := issueOTP(&user, 5*time.Minute)
	if otpErr != nil {
		utils.RespondError(c, utils.StorageError("Failed to issue OTP", otpErr))
		return
	}
	if err := db.Save(&user).Error; err != nil {
		utils.RespondError(c, utils.StorageError("Failed to update user", err))
		return
	}
	deliverOTP(&user, otp)
	utils.Success(c, "OTP sent successfully", otpResponse("OTP sent successfully", req.Phone, otp))
}

// VerifyOTPRequest carries the phone/OTP pair
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// POST /api/auth/verify-otp
//
// Checks the OTP with a three-attempt lockout, clears the OTP state on
// success and issues the session JWT.
func VerifyOTP(c *gin.Context) {
	utils.LogInfo("VerifyOTP called")

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.OTP == "" {
		utils.BadRequest(c, "Phone & OTP required", nil)
		return
	}

	db := config.DB
	var user models.User
	if err := db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		utils.RespondError(c, utils.StorageError("Failed to look up user", err))
		return
	}

	now := time.Now()
	if user.OTPLockedUntil != nil && user.OTPLockedUntil.After(now) {
		remaining := int(math.Ceil(user.OTPLockedUntil.Sub(now).Minutes()))
		utils.LogError("Locked account %s attempted OTP verify", req.Phone)
		utils.Forbidden(c, fmt.Sprintf("Account locked due to %d failed OTP attempts. Try again in %d minutes", maxOTPAttempts, remaining))
		return
	}

	if user.OTPHash == "" || !utils.CheckOTP(req.OTP, user.OTPHash) {
		user.OTPAttempts++
		if user.OTPAttempts >= maxOTPAttempts {
			lockedUntil := now.Add(otpLockDuration)
			user.OTPLockedUntil = &lockedUntil
			user.OTPAttempts = 0
			if err := db.Save(&user).Error; err != nil {
				utils.RespondError(c, utils.StorageError("Failed to update user", err))
				return
			}
			utils.LogError("Account %s locked after %d failed OTP attempts", req.Phone, maxOTPAttempts)
			utils.Forbidden(c, fmt.Sprintf("Account locked due to %d failed OTP attempts. Try again after 2 hours", maxOTPAttempts))
			return
		}
		if err := db.Save(&user).Error; err != nil {
			utils.RespondError(c, utils.StorageError("Failed to update user", err))
			return
		}
		utils.BadRequest(c, fmt.Sprintf("Invalid OTP. %d attempts left", maxOTPAttempts-user.OTPAttempts), nil)
		return
	}

	if user.OTPExpires != nil && user.OTPExpires.Before(now) {
		utils.BadRequest(c, "OTP expired", nil)
		return
	}

	user.OTPHash = ""
	user.OTPExpires = nil
	user.OTPAttempts = 0
	user.OTPLockedUntil = nil
	if err := db.Save(&user).Error; err != nil {
		utils.RespondError(c, utils.StorageError("Failed to update user", err))
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for %s: %v", req.Phone, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.LogInfo("User %s logged in", req.Phone)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// GET /api/auth/me
func GetMe(c *gin.Context) {
	v, exists := c.Get("identity")
	if !exists {
		utils.Unauthorized(c, "Not authenticated")
		return
	}
	ident := v.(utils.Identity)
	utils.Success(c, "Identity retrieved", gin.H{
		"id":    ident.ID,
		"phone": ident.Phone,
		"email": ident.Email,
		"role":  ident.Role,
	})
}
