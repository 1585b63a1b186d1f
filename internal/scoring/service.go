// Package scoring implements the online_score method: weighted scoring of a
// validated argument set, with a privileged-caller short circuit and a TTL
// cache in front of the computation.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/scoring-lab/project-scoring/internal/dispatch"
	"github.com/scoring-lab/project-scoring/internal/schema"
	"github.com/scoring-lab/project-scoring/internal/storage"
)

// MethodName is the registry key for this handler.
const MethodName = "online_score"

// privilegedScore is the fixed maximum returned to privileged callers.
const privilegedScore = 42

// birthdayKeyLayout is the date component of the cache key ("%Y%m%d").
const birthdayKeyLayout = "20060102"

// fieldPairs is the combination rule: at least one pair must be jointly
// present for the request to be scorable.
var fieldPairs = [][2]string{
	{"phone", "email"},
	{"first_name", "last_name"},
	{"gender", "birthday"},
}

// Weights, in exact decimal steps.
var (
	weightContact = decimal.NewFromFloat(1.5) // phone + email
	weightPerson  = decimal.NewFromFloat(1.5) // gender + birthday
	weightName    = decimal.NewFromFloat(0.5) // first_name + last_name
)

type Service struct {
	store    storage.Store
	schema   *schema.Schema
	cacheTTL time.Duration

	// Dedupes concurrent computations of the same cache key.
	group singleflight.Group
}

func New(store storage.Store, cacheTTL time.Duration) *Service {
	if store == nil {
		panic("scoring: store must not be nil")
	}
	return &Service{
		store:    store,
		schema:   argumentsSchema(),
		cacheTTL: cacheTTL,
	}
}

func argumentsSchema() *schema.Schema {
	return schema.New().
		Add("first_name", schema.NewChar(false, true)).
		Add("last_name", schema.NewChar(false, true)).
		Add("email", schema.NewEmail(false, true)).
		Add("phone", schema.NewPhone(false, true)).
		Add("birthday", schema.NewBirthday(false, true)).
		Add("gender", schema.NewGender(false, true))
}

// Validate runs the per-field pass, then the pair rule over whatever typed
// subset survived. The combination error is appended after the field errors
// so both kinds are reported at once.
func (s *Service) Validate(args map[string]any) (schema.Values, []string) {
	values, errs := s.schema.Validate(args)
	if !hasRequiredPair(values) {
		errs = append(errs, pairRuleError())
	}
	return values, errs
}

func hasRequiredPair(values schema.Values) bool {
	for _, pair := range fieldPairs {
		if values.Has(pair[0]) && values.Has(pair[1]) {
			return true
		}
	}
	return false
}

func pairRuleError() string {
	pairs := make([]string, len(fieldPairs))
	for i, pair := range fieldPairs {
		pairs[i] = pair[0] + "/" + pair[1]
	}
	return "Request must include at least one non-empty pair of: " + strings.Join(pairs, ", ") + "."
}

// Run computes the score. Privileged callers get the fixed maximum without
// inspecting the arguments. For everyone else the result is served from the
// cache when live, and computed and cached otherwise.
func (s *Service) Run(ctx context.Context, args schema.Values, auth dispatch.AuthContext) (any, error) {
	if auth.Privileged {
		return map[string]any{"score": privilegedScore}, nil
	}

	key := cacheKey(args)
	score, err, _ := s.group.Do(key, func() (any, error) {
		if cached, ok := s.store.CacheGet(ctx, key); ok {
			return cached, nil
		}
		computed := Score(args)
		s.store.CacheSet(ctx, key, computed, s.cacheTTL)
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"score": score}, nil
}

// Score is the pure weighted sum over the validated arguments. The pair rule
// already guarantees at least one pair, so zero is unreachable through the
// API, but the function handles it anyway.
func Score(args schema.Values) float64 {
	total := decimal.Zero
	if args.Has("phone") && args.Has("email") {
		total = total.Add(weightContact)
	}
	if args.Has("gender") && args.Has("birthday") {
		total = total.Add(weightPerson)
	}
	if args.Has("first_name") && args.Has("last_name") {
		total = total.Add(weightName)
	}
	return total.InexactFloat64()
}

// cacheKey covers every field the weights depend on, so argument sets that
// score differently never share an entry.
func cacheKey(args schema.Values) string {
	var b strings.Builder
	b.WriteString(args.String("first_name"))
	b.WriteByte(0)
	b.WriteString(args.String("last_name"))
	b.WriteByte(0)
	if birthday, ok := args.Time("birthday"); ok {
		b.WriteString(birthday.Format(birthdayKeyLayout))
	}
	b.WriteByte(0)
	b.WriteString(args.String("phone"))
	b.WriteByte(0)
	b.WriteString(args.String("email"))
	b.WriteByte(0)
	if gender, ok := args.Int("gender"); ok {
		b.WriteString(strconv.Itoa(gender))
	}
	sum := md5.Sum([]byte(b.String()))
	return "uid:" + hex.EncodeToString(sum[:])
}
