package devbackend

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	minPicks  = 6
	maxPicks  = 10
	minNumber = 1
	maxNumber = 45

	maxOwnerIDLength = 20
)

// ValidationError carries the detail message returned with a 400.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func invalid(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// ValidateOwnerID checks the identity document number length.
func ValidateOwnerID(ownerID string) error {
	n := utf8.RuneCountInString(ownerID)
	if n < 1 || n > maxOwnerIDLength {
		return invalid("Broj osobne iskaznice ili putovnice mora imati od 1 do %d znakova", maxOwnerIDLength)
	}
	return nil
}

// ParseNumbers parses a comma-separated pick of 6 to 10 distinct numbers between 1 and 45.
// Blank entries are skipped.
func ParseNumbers(csv string) ([]int, error) {
	var nums []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, invalid("Neispravan broj: %q", part)
		}
		if seen[n] {
			return nil, invalid("Broj %d je odabran više puta", n)
		}
		seen[n] = true
		nums = append(nums, n)
	}

	if len(nums) < minPicks || len(nums) > maxPicks {
		return nil, invalid("Potrebno je odabrati od %d do %d brojeva", minPicks, maxPicks)
	}
	for _, n := range nums {
		if n < minNumber || n > maxNumber {
			return nil, invalid("Broj %d nije valjan", n)
		}
	}
	return nums, nil
}
