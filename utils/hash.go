package utils

import "golang.org/x/crypto/bcrypt"

// HashSecret is used for both passwords and one-time reset codes; the reset
// code store is queried by user id, never by code, so the hash costs nothing
// on lookup while keeping plaintext codes out of the database.
func HashSecret(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(b), err
}

func CheckSecret(hashed, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
