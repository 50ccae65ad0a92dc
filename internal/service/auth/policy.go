package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// minSimilarityLength is the shortest user attribute checked for similarity.
const minSimilarityLength = 3

var commonPasswords = map[string]struct{}{
	"000000": {}, "111111": {}, "123123": {}, "123456": {}, "1234567": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "654321": {},
	"1q2w3e4r": {}, "abc123": {}, "admin": {}, "baseball": {}, "dragon": {},
	"football": {}, "iloveyou": {}, "letmein": {}, "master": {}, "michael": {},
	"monkey": {}, "passw0rd": {}, "password": {}, "password1": {}, "princess": {},
	"qwerty": {}, "qwerty123": {}, "shadow": {}, "sunshine": {}, "superman": {},
	"trustno1": {}, "welcome": {},
}

// PasswordPolicy checks new passwords. Zero lengths disable the matching rule.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

// Validate returns one message per rule password breaks, in a stable order.
// username and email feed the similarity check.
func (p PasswordPolicy) Validate(password, username, email string) []string {
	var problems []string

	if p.MinLength > 0 && len([]rune(password)) < p.MinLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	// bcrypt only looks at the first 72 bytes.
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too long. It must contain no more than %d characters.", p.MaxLength))
	}

	lower := strings.ToLower(password)
	if similarTo(lower, username) {
		problems = append(problems, "The password is too similar to the username.")
	} else if local, _, ok := strings.Cut(email, "@"); ok && similarTo(lower, local) {
		problems = append(problems, "The password is too similar to the email address.")
	}

	if _, ok := commonPasswords[lower]; ok {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

func similarTo(lowerPassword, attribute string) bool {
	attribute = strings.ToLower(strings.TrimSpace(attribute))
	if len(attribute) < minSimilarityLength || len(lowerPassword) < minSimilarityLength {
		return false
	}
	return strings.Contains(lowerPassword, attribute) || strings.Contains(attribute, lowerPassword)
}
