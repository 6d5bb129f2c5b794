package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// ErrTooWeak 密码不满足强度要求，具体原因在包装消息里
var ErrTooWeak = errors.New("password too weak")

const specialChars = "!@#$%^&*()-_=+[]{}|;:,.<>?/"

// Hash 加密密码
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 验证密码
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckStrength 校验密码强度
// 至少8位，包含数字、大写字母和特殊字符
func CheckStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", ErrTooWeak)
	}

	var hasDigit, hasUpper bool
	for _, ch := range password {
		if unicode.IsDigit(ch) {
			hasDigit = true
		}
		if unicode.IsUpper(ch) {
			hasUpper = true
		}
	}
	if !hasDigit {
		return fmt.Errorf("%w: must contain at least one number", ErrTooWeak)
	}
	if !hasUpper {
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrTooWeak)
	}
	if !strings.ContainsAny(password, specialChars) {
		return fmt.Errorf("%w: must contain at least one special character", ErrTooWeak)
	}
	return nil
}
