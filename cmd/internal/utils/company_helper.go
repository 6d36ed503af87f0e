package utils

import "strings"

const NITMaxDigits = 15

// DIAN weights, applied from the rightmost digit of the base number.
var nitWeights = []int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// NormalizeNIT strips dots and spaces, so "900.123.456-8" becomes "900123456-8".
func NormalizeNIT(nit string) string {
	return strings.NewReplacer(".", "", " ", "").Replace(strings.TrimSpace(nit))
}

// IsNITValid checks a Colombian tax id. The verification digit after the
// dash is optional, but when present it must match.
func IsNITValid(nit string) bool {
	base, dv, hasDV := strings.Cut(NormalizeNIT(nit), "-")
	if base == "" || len(base) > NITMaxDigits || !IsOnlyNumbers(base) {
		return false
	}

	if !hasDV {
		return true
	}
	if len(dv) != 1 || !IsOnlyNumbers(dv) {
		return false
	}
	return CalculateNITDigit(base) == int(dv[0]-'0')
}

func CalculateNITDigit(base string) int {
	sum := 0
	for i := 0; i < len(base); i++ {
		digit := int(base[len(base)-1-i] - '0')
		sum += digit * nitWeights[i]
	}

	remainder := sum % 11
	if remainder < 2 {
		return remainder
	}
	return 11 - remainder
}

func IsOnlyNumbers(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
