// ABOUTME: Password strength estimate shown under password fields
// ABOUTME: Advisory only; the backend enforces the real policy

package validate

import (
	"strings"
	"unicode"
)

// Strength is a 0-4 password score with a display label
type Strength struct {
	Score int
	Label string
}

var strengthLabels = [...]string{"Very weak", "Weak", "Fair", "Good", "Strong"}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "123456": {}, "12345678": {},
	"123456789": {}, "1234567890": {}, "qwerty": {}, "qwerty123": {}, "letmein": {},
	"welcome": {}, "admin": {}, "administrator": {}, "iloveyou": {}, "monkey": {},
	"dragon": {}, "football": {}, "baseball": {}, "sunshine": {}, "princess": {},
	"trustno1": {}, "changeme": {}, "passw0rd": {}, "p@ssw0rd": {}, "fanzones": {},
}

// PasswordStrength scores pw from length, character variety and obvious
// patterns
func PasswordStrength(pw string) Strength {
	if pw == "" {
		return newStrength(0)
	}
	if _, common := commonPasswords[strings.ToLower(pw)]; common {
		return newStrength(0)
	}

	length := len([]rune(pw))
	score := 0
	if length >= 8 {
		score++
	}
	if length >= MinPasswordLength {
		score++
	}
	if length >= 16 {
		score++
	}

	switch classes := characterClasses(pw); {
	case classes >= 4:
		score += 2
	case classes == 3:
		score++
	case classes <= 1:
		score--
	}

	if hasRun(pw, 3) {
		score--
	}
	if length < 8 && score > 1 {
		score = 1
	}
	return newStrength(score)
}

func newStrength(score int) Strength {
	score = max(0, min(score, len(strengthLabels)-1))
	return Strength{Score: score, Label: strengthLabels[score]}
}

func characterClasses(pw string) int {
	var lower, upper, digit, other bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	n := 0
	for _, b := range []bool{lower, upper, digit, other} {
		if b {
			n++
		}
	}
	return n
}

// hasRun reports n or more repeated ("aaa") or consecutive ("abc", "321")
// characters in a row
func hasRun(pw string, n int) bool {
	runes := []rune(strings.ToLower(pw))
	same, up, down := 1, 1, 1
	for i := 1; i < len(runes); i++ {
		same, up, down = next(same, runes[i] == runes[i-1]), next(up, runes[i] == runes[i-1]+1), next(down, runes[i] == runes[i-1]-1)
		if same >= n || up >= n || down >= n {
			return true
		}
	}
	return false
}

func next(count int, cont bool) int {
	if cont {
		return count + 1
	}
	return 1
}
