package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	publicIDPrefix    = "ORD-"
	publicIDHexLength = 10
)

// PublicIDChecker reports whether a public id is already taken.
type PublicIDChecker func(ctx context.Context, publicID string) (bool, error)

type PublicIDGenerator struct {
	random func() uuid.UUID
}

func NewPublicIDGenerator() *PublicIDGenerator {
	return &PublicIDGenerator{random: uuid.New}
}

func (g *PublicIDGenerator) candidate() string {
	id := g.random()
	return publicIDPrefix + strings.ToUpper(hex.EncodeToString(id[:]))[:publicIDHexLength]
}

// Generate draws candidates until exists reports one as free.
func (g *PublicIDGenerator) Generate(ctx context.Context, exists PublicIDChecker) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := g.candidate()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check public id: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
