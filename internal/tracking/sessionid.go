package tracking

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const (
	sessionPrefix = "ob_"
	randomLen     = 9
	base36        = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// IDGenerator produces funnel session ids of the form
// ob_<base36 unix millis>_<base36 random>. It is not safe for concurrent use.
type IDGenerator struct {
	rnd *rand.Rand
	now func() time.Time
}

// NewIDGenerator returns a generator seeded with the current time.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{rnd: rand.New(rand.NewSource(time.Now().UnixNano())), now: time.Now}
}

// Next returns a new session id.
func (g *IDGenerator) Next() string {
	var b strings.Builder
	b.WriteString(sessionPrefix)
	b.WriteString(strconv.FormatInt(g.now().UnixMilli(), 36))
	b.WriteByte('_')
	for i := 0; i < randomLen; i++ {
		b.WriteByte(base36[g.rnd.Intn(len(base36))])
	}
	return b.String()
}

// ValidSessionID reports whether id has the ob_<ts>_<random> shape.
func ValidSessionID(id string) bool {
	if !strings.HasPrefix(id, sessionPrefix) {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(id, sessionPrefix), "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	for _, part := range parts {
		for _, r := range part {
			if !strings.ContainsRune(base36, r) {
				return false
			}
		}
	}
	return true
}
