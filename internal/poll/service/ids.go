package service

import (
	"crypto/rand"
	"encoding/base64"
	"regexp"
)

const idBytes = 6

var (
	pollIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{4,32}$`)
	optionIDPattern = regexp.MustCompile(`^o[0-9]{1,3}$`)
)

// randomID draws an 8 character base64url token.
func randomID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func validPollID(id string) bool {
	return pollIDPattern.MatchString(id)
}

func validOptionID(id string) bool {
	return optionIDPattern.MatchString(id)
}
