package security

import (
	"crypto/rand"
	"errors"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
	errLongAlphabet   = errors.New("alphabet must not exceed 256 characters")
)

// RandomString draws length characters uniformly from alphabet using
// crypto/rand. Bytes that would bias the distribution are discarded.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", errEmptyAlphabet
	case len(alphabet) > 256:
		return "", errLongAlphabet
	}

	size := len(alphabet)
	ceiling := 256 - 256%size
	out := make([]byte, 0, length)
	buffer := make([]byte, length+length/2+1)
	for len(out) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, b := range buffer {
			if int(b) >= ceiling {
				continue
			}
			out = append(out, alphabet[int(b)%size])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
