package idx_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/tinylink/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewCodeShape(t *testing.T) {
	code, err := idx.NewCode(idx.Set{})
	require.NoError(t, err)
	require.Len(t, code, idx.DefaultCodeLength)

	for _, c := range code {
		require.True(t, strings.ContainsRune(idx.DefaultAlphabet, c), "unexpected symbol %q", c)
	}
}

func TestGenerateCustomShape(t *testing.T) {
	g := idx.Generator{Alphabet: "xyz", Length: 12}

	code, err := g.Generate(idx.Set{})
	require.NoError(t, err)
	require.Len(t, code, 12)
	require.Empty(t, strings.Trim(code, "xyz"))
}

func TestGenerateSkipsTakenCodes(t *testing.T) {
	// Two symbols, length one: with "0" taken the only answer is "1".
	g := idx.Generator{Alphabet: "01", Length: 1, MaxAttempts: 1000}

	for range 20 {
		code, err := g.Generate(idx.Set{"0": {}})
		require.NoError(t, err)
		require.Equal(t, "1", code)
	}
}

func TestGenerateExhausted(t *testing.T) {
	g := idx.Generator{Alphabet: "01", Length: 1, MaxAttempts: 100}

	_, err := g.Generate(idx.Set{"0": {}, "1": {}})
	require.ErrorIs(t, err, idx.ErrExhausted)
}

func TestGenerateRegistryError(t *testing.T) {
	boom := errors.New("boom")

	_, err := idx.NewCode(idx.RegistryFunc(func(string) (bool, error) { return false, boom }))
	require.ErrorIs(t, err, boom)
}

func TestGenerateEntropyError(t *testing.T) {
	g := idx.Generator{Rand: bytes.NewReader([]byte{1, 2, 3})}

	_, err := g.Generate(idx.Set{})
	require.Error(t, err)
	require.NotErrorIs(t, err, idx.ErrExhausted)
}

func TestGenerateRejectsBiasedBytes(t *testing.T) {
	// 256 % 62 = 8, so bytes 248..255 must be discarded rather than mapped.
	src := []byte{255, 248, 0, 61, 62, 249, 1, 2, 3, 4, 5, 6}
	g := idx.Generator{Length: 8, Rand: bytes.NewReader(src)}

	code, err := g.Generate(idx.Set{})
	require.NoError(t, err)
	alpha := idx.DefaultAlphabet
	require.Equal(t, string([]byte{alpha[0], alpha[61], alpha[0], alpha[1], alpha[2], alpha[3], alpha[4], alpha[5]}), code)
}

func TestGenerateAlphabetTooLarge(t *testing.T) {
	g := idx.Generator{Alphabet: strings.Repeat("a", 257)}

	_, err := g.Generate(idx.Set{})
	require.ErrorIs(t, err, idx.ErrAlphabet)
}

func TestMemoryRegistryInsert(t *testing.T) {
	r := idx.NewMemoryRegistry()

	require.True(t, r.Insert("abc"))
	require.False(t, r.Insert("abc"))

	has, err := r.Has("abc")
	require.NoError(t, err)
	require.True(t, has)

	r.Remove("abc")
	require.Equal(t, 0, r.Len())
}

func TestMemoryRegistryClaimConcurrent(t *testing.T) {
	const (
		workers   = 100
		perWorker = 1000
	)

	r := idx.NewMemoryRegistry()
	results := make([][]string, workers)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes := make([]string, 0, perWorker)
			for range perWorker {
				code, err := r.Claim(idx.Generator{})
				if err != nil {
					t.Errorf("claim: %v", err)
					return
				}
				codes = append(codes, code)
			}
			results[w] = codes
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers*perWorker)
	for _, codes := range results {
		for _, code := range codes {
			_, dup := seen[code]
			require.False(t, dup, "duplicate code %q", code)
			seen[code] = struct{}{}
		}
	}
	require.Len(t, seen, workers*perWorker)
	require.Equal(t, workers*perWorker, r.Len())
}

func TestMemoryRegistryClaimExhausted(t *testing.T) {
	r := idx.NewMemoryRegistry()
	g := idx.Generator{Alphabet: "01", Length: 1, MaxAttempts: 200}

	first, err := r.Claim(g)
	require.NoError(t, err)
	second, err := r.Claim(g)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = r.Claim(g)
	require.ErrorIs(t, err, idx.ErrExhausted)
}
