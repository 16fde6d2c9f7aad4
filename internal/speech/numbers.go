package speech

import "strings"

var onesWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen",
	"sixteen", "seventeen", "eighteen", "nineteen",
}

var tensWords = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
	"eighty", "ninety",
}

// indianNumberWords verbalizes a non-negative integer in the Indian system:
// crore (1e7) and lakh (1e5) instead of million and billion. Fee figures in
// admissions material are always quoted this way.
func indianNumberWords(n int64) string {
	if n < 0 {
		return "minus " + indianNumberWords(-n)
	}
	if n < 20 {
		return onesWords[n]
	}

	var parts []string
	appendScale := func(value int64, unit string) int64 {
		if q := n / value; q > 0 {
			parts = append(parts, indianNumberWords(q)+" "+unit)
			n %= value
		}
		return n
	}
	n = appendScale(10_000_000, "crore")
	n = appendScale(100_000, "lakh")
	n = appendScale(1_000, "thousand")
	n = appendScale(100, "hundred")

	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	word := tensWords[n/10]
	if rem := n % 10; rem > 0 {
		return word + " " + onesWords[rem]
	}
	return word
}
