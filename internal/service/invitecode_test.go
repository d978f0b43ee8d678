package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInviteCodeGenerator(t *testing.T) {
	gen := NewInviteCodeGenerator()

	t.Run("код имеет фиксированную длину и алфавит", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code := gen.Generate()

			assert.Len(t, code, inviteCodeLength)
			for _, c := range code {
				assert.True(t, strings.ContainsRune(inviteCodeAlphabet, c),
					"unexpected character %q in code %q", c, code)
			}
		}
	})

	t.Run("последовательные коды практически не повторяются", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			seen[gen.Generate()] = true
		}

		assert.Greater(t, len(seen), 95)
	})
}
