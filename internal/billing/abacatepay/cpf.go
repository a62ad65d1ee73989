package abacatepay

import (
	"fmt"
	"math/rand"
)

// GenerateTestCPF produces a randomly generated but checksum-valid CPF
// in the ###.###.###-## format. The provider's sandbox requires a valid
// taxId even for test customers.
func GenerateTestCPF() string {
	digits := make([]int, 9, 11)
	for i := range digits {
		digits[i] = rand.Intn(10)
	}

	digits = append(digits, cpfCheckDigit(digits, 10))
	digits = append(digits, cpfCheckDigit(digits, 11))

	return fmt.Sprintf("%d%d%d.%d%d%d.%d%d%d-%d%d",
		digits[0], digits[1], digits[2],
		digits[3], digits[4], digits[5],
		digits[6], digits[7], digits[8],
		digits[9], digits[10])
}

func cpfCheckDigit(digits []int, weight int) int {
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
	}

	digit := 11 - (sum % 11)
	if digit > 9 {
		return 0
	}
	return digit
}
