package idx

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultAlphabet is the 62 ASCII letters and digits.
	DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	DefaultCodeLength  = 8
	DefaultMaxAttempts = 100
)

var (
	// ErrExhausted reports that every draw collided with the registry. The
	// caller decides whether to retry, typically with a longer code.
	ErrExhausted = errors.New("idx: short code space exhausted")

	ErrAlphabet = errors.New("idx: alphabet must have between 1 and 256 symbols")
)

// Registry reports whether a short code is already in use.
type Registry interface {
	Has(code string) (bool, error)
}

// RegistryFunc adapts a plain function to a Registry.
type RegistryFunc func(code string) (bool, error)

func (f RegistryFunc) Has(code string) (bool, error) { return f(code) }

// Set is a read-only snapshot registry.
type Set map[string]struct{}

func (s Set) Has(code string) (bool, error) {
	_, ok := s[code]
	return ok, nil
}

// Generator draws random codes. The zero value uses DefaultAlphabet,
// DefaultCodeLength, DefaultMaxAttempts and crypto/rand.
type Generator struct {
	Alphabet    string
	Length      int
	MaxAttempts int

	// Rand is the entropy source. Nil means crypto/rand.Reader.
	Rand io.Reader
}

// NewCode returns a default-shaped code absent from reg.
func NewCode(reg Registry) (string, error) {
	return Generator{}.Generate(reg)
}

// Generate draws codes until one is absent from reg, giving up with
// ErrExhausted after MaxAttempts collisions. The returned code is only
// guaranteed free at the instant of the check; callers insert it with an
// insert-if-absent primitive and call Generate again if they lose a race.
func (g Generator) Generate(reg Registry) (string, error) {
	alphabet := g.alphabet()
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", ErrAlphabet
	}
	length := g.length()
	attempts := g.attempts()

	src := g.Rand
	if src == nil {
		src = rand.Reader
	}
	r := bufio.NewReaderSize(src, 64)

	buf := make([]byte, length)
	for range attempts {
		if err := draw(r, alphabet, buf); err != nil {
			return "", fmt.Errorf("idx: read entropy: %w", err)
		}
		code := string(buf)

		taken, err := reg.Has(code)
		if err != nil {
			return "", fmt.Errorf("idx: registry lookup: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: %d attempts at length %d", ErrExhausted, attempts, length)
}

// draw fills buf with symbols chosen uniformly from alphabet. Bytes at or
// above the largest multiple of len(alphabet) are rejected so no symbol is
// favoured by the modulo.
func draw(r io.ByteReader, alphabet string, buf []byte) error {
	n := len(alphabet)
	limit := 256 - 256%n
	for i := 0; i < len(buf); {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if int(b) >= limit {
			continue
		}
		buf[i] = alphabet[int(b)%n]
		i++
	}
	return nil
}

func (g Generator) alphabet() string {
	if g.Alphabet == "" {
		return DefaultAlphabet
	}
	return g.Alphabet
}

func (g Generator) length() int {
	if g.Length <= 0 {
		return DefaultCodeLength
	}
	return g.Length
}

func (g Generator) attempts() int {
	if g.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return g.MaxAttempts
}
