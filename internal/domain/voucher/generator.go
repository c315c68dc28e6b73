package voucher

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// DefaultAlphabet omits visually ambiguous characters (0/O, 1/I/L) so codes
// survive being read over the phone or typed from a printout.
const DefaultAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const DefaultCodeLength = 8

var (
	ErrEmptyAlphabet    = errors.New("voucher alphabet cannot be empty")
	ErrAmbiguousChar    = errors.New("voucher alphabet contains ambiguous characters")
	ErrInvalidLength    = errors.New("voucher code length must be positive")
	ErrRandomSourceRead = errors.New("failed to read random source")
)

var ambiguous = "0O1IL"

type Generator struct {
	alphabet string
	length   int
}

func NewGenerator(alphabet string, length int) (*Generator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if strings.ContainsAny(alphabet, ambiguous) {
		return nil, ErrAmbiguousChar
	}
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	return &Generator{alphabet: alphabet, length: length}, nil
}

func (g *Generator) Alphabet() string { return g.alphabet }
func (g *Generator) Length() int      { return g.length }

// Generate draws one uniformly random code. Uniqueness is not guaranteed
// here; the caller resolves collisions against the store's unique index.
func (g *Generator) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(g.length)
	max := big.NewInt(int64(len(g.alphabet)))
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", ErrRandomSourceRead
		}
		sb.WriteByte(g.alphabet[n.Int64()])
	}
	return sb.String(), nil
}
