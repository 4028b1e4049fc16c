package reservations

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultCodePrefix starts every confirmation code unless configured otherwise.
const DefaultCodePrefix = "RSV"

const (
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeSuffixLength = 4
)

// CodeGenerator builds confirmation codes of the form PREFIX-<base36 millis>-<4 random>.
// Codes are unlikely to collide but the unique index on reservations.code is the guarantee.
type CodeGenerator struct {
	prefix string
	now    func() time.Time
}

// NewCodeGenerator creates a generator. An empty prefix uses DefaultCodePrefix.
func NewCodeGenerator(prefix string) *CodeGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	return &CodeGenerator{prefix: prefix, now: time.Now}
}

// Next returns a fresh code.
func (g *CodeGenerator) Next() (string, error) {
	stamp := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	suffix := make([]byte, codeSuffixLength)
	radix := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", fmt.Errorf("random code suffix: %w", err)
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return g.prefix + "-" + stamp + "-" + string(suffix), nil
}

// Pattern returns the regular expression every generated code matches.
func (g *CodeGenerator) Pattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(g.prefix) + `-[0-9A-Z]+-[0-9A-Z]{4}$`)
}
