package security

import "golang.org/x/crypto/bcrypt"

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Access codes for private contests reuse the same bcrypt scheme as passwords.
func HashAccessCode(code string) (string, error) {
	return HashPassword(code)
}

func CheckAccessCode(code, hash string) bool {
	return CheckPasswordHash(code, hash)
}
