package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
)

// TestDataGenerator provides methods to create test data for tests
type TestDataGenerator struct {
	faker  *gofakeit.Faker
	seed   int64
	nextID int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker:  gofakeit.New(uint64(s)),
		seed:   s,
		nextID: int64(gofakeit.New(uint64(s)).Number(100_000, 900_000)),
	}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// GenerateCaller creates a caller with a unique id.
func (g *TestDataGenerator) GenerateCaller() rulerdomain.Caller {
	g.nextID++
	username := g.faker.Username()
	return rulerdomain.Caller{
		ID:        g.nextID,
		FirstName: g.faker.FirstName(),
		Username:  username,
		URL:       "https://t.me/" + username,
	}
}

// GenerateCallers creates count callers with distinct ids.
func (g *TestDataGenerator) GenerateCallers(count int) []rulerdomain.Caller {
	callers := make([]rulerdomain.Caller, count)
	for i := range callers {
		callers[i] = g.GenerateCaller()
	}
	return callers
}

// GenerateGroupChat creates a supergroup with a negative platform id.
func (g *TestDataGenerator) GenerateGroupChat() rulerdomain.Chat {
	return rulerdomain.Chat{
		ID:   -int64(g.faker.Number(1_000_000_000, 1_999_999_999)),
		Type: rulerdomain.ChatSupergroup,
	}
}

// PrivateChat is the direct chat between the bot and caller.
func PrivateChat(caller rulerdomain.Caller) rulerdomain.Chat {
	return rulerdomain.Chat{ID: caller.ID, Type: rulerdomain.ChatPrivate}
}
