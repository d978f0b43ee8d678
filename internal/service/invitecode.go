package service

import (
	"math/rand"
	"strings"
	"time"
)

// inviteCodeAlphabet and inviteCodeLength define the shape of invite codes:
// six characters, uppercase letters and digits.
const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 6
)

// InviteCodeGenerator produces random team invite codes
type InviteCodeGenerator struct {
	rng *rand.Rand
}

// NewInviteCodeGenerator creates an InviteCodeGenerator with its own random source
func NewInviteCodeGenerator() *InviteCodeGenerator {
	return &InviteCodeGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns a fresh invite code. Codes are not re-checked for
// collisions against existing teams.
func (g *InviteCodeGenerator) Generate() string {
	var b strings.Builder
	b.Grow(inviteCodeLength)
	for i := 0; i < inviteCodeLength; i++ {
		b.WriteByte(inviteCodeAlphabet[g.rng.Intn(len(inviteCodeAlphabet))])
	}
	return b.String()
}
