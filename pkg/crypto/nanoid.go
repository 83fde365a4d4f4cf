package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	// URL- and path-safe, so ids can be used in object keys as they are.
	defaultAlphabet string = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	defaultSize     int    = 21
	maxAlphabetSize int    = 255
	minAlphabetSize int    = 8
)

var (
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidLength    = errors.New("id length must be positive")
)

// NanoID generates random ids over a fixed alphabet
type NanoID struct {
	alphabet string
	mask     int
	size     int
}

func getMask(alphabetLen int) int {
	for i := 1; i <= 8; i++ {
		mask := (2 << uint(i)) - 1
		if mask > alphabetLen-1 {
			return mask
		}
	}
	return maxAlphabetSize
}

// NewNanoID creates a generator of size-character ids. An empty alphabet
// selects the default one, size 0 selects 21 characters.
func NewNanoID(alphabet string, size int) (*NanoID, error) {
	if alphabet == "" {
		alphabet = defaultAlphabet
	}
	if size == 0 {
		size = defaultSize
	}
	if size < 0 {
		return nil, ErrInvalidLength
	}

	// Generate indexes by byte position
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}

	return &NanoID{alphabet: alphabet, mask: getMask(len(alphabet)), size: size}, nil
}

// MustNanoID is NewNanoID with the defaults, which cannot fail.
func MustNanoID() *NanoID {
	n, err := NewNanoID("", 0)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *NanoID) Generate() (string, error) {
	alphabetLen := len(n.alphabet)
	step := int(math.Ceil(1.6 * float64(n.mask*n.size) / float64(alphabetLen)))

	id := make([]byte, n.size)
	buffer := make([]byte, step)

	for position := 0; position < n.size; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}

		// Rejection sampling keeps the distribution uniform
		for i := 0; i < step && position < n.size; i++ {
			index := buffer[i] & byte(n.mask)
			if int(index) < alphabetLen {
				id[position] = n.alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}
