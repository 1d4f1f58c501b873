package security

import (
	"encoding/hex"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"orion/internal/errors"
	"orion/internal/logging"
)

const (
	minQueryLength = 1
	maxQueryLength = 1000

	// Three policy violations block a user for one hour. Fixed by design,
	// not configurable.
	violationThreshold = 3
	blockDuration      = time.Hour

	// Bulk extraction heuristics: near-duplicate sequences and rapid fire.
	similarityWindow    = 5
	similarityThreshold = 0.8
	similarityCount     = 3
	rapidFireCount      = 10
	rapidFireWindow     = 30 * time.Second
)

// Config holds the gate's tunable limits.
type Config struct {
	MaxQueriesPerMinute int
	MaxQueriesPerHour   int
	RateLimitEnabled    bool
}

// Decision is the outcome of validating one query.
type Decision struct {
	Allowed bool
	Code    errors.ErrorCode
	Reason  string
	Warning string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(code errors.ErrorCode, reason string) Decision {
	return Decision{Allowed: false, Code: code, Reason: reason}
}

// Gate validates queries against abuse patterns, per-user history, and rate
// limits before anything reaches retrieval or generation.
type Gate struct {
	cfg         Config
	classifiers *Classifiers
	store       StateStore
	logger      *logging.Logger
	now         func() time.Time
}

// NewGate creates a security gate.
func NewGate(cfg Config, classifiers *Classifiers, store StateStore, logger *logging.Logger) *Gate {
	return &Gate{
		cfg:         cfg,
		classifiers: classifiers,
		store:       store,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock overrides the gate's clock. Test hook.
func (g *Gate) SetClock(now func() time.Time) {
	g.now = now
}

// HashUserID reduces a caller-supplied identifier to a fixed-length
// pseudonymous key. The raw identifier is used for nothing else and is
// never logged.
func HashUserID(userID string) string {
	sum := blake2b.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}

// Validate runs the fixed check sequence for one query. The first failing
// check denies; denials from the policy checks feed the violation counter.
// This is a security boundary: any internal failure is converted into a
// denial, never an allow.
func (g *Gate) Validate(query, userID string) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("gate check panicked, denying", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			decision = deny(errors.InternalError, "Unable to process query")
		}
	}()

	key := HashUserID(userID)
	now := g.now()

	g.store.Update(key, func(state *UserState) {
		decision = g.validateLocked(state, query, key, now)
	})

	return decision
}

// validateLocked runs under the per-user lock so that concurrent
// validations for the same key cannot interleave reads and writes.
func (g *Gate) validateLocked(state *UserState, query, key string, now time.Time) Decision {
	// 1. Block check. Expired entries are cleared lazily here; the user
	// then starts over with a clean violation count.
	if !state.BlockedUntil.IsZero() {
		if now.Before(state.BlockedUntil) {
			return deny(errors.UserBlocked, "User temporarily blocked for suspicious activity")
		}
		state.BlockedUntil = time.Time{}
		state.Violations = 0
	}

	// 2. Length check. Boundary values are allowed.
	length := utf8.RuneCountInString(query)
	if length < minQueryLength {
		return deny(errors.QueryTooShort, fmt.Sprintf("Query too short (minimum %d characters)", minQueryLength))
	}
	if length > maxQueryLength {
		return deny(errors.QueryTooLong, fmt.Sprintf("Query too long (maximum %d characters)", maxQueryLength))
	}

	// 3-7. Pattern checks, fixed order, first match denies.
	if g.classifiers.IsPromptInjection(query) {
		g.warnDenied("prompt injection detected", key, query)
		g.recordViolation(state, now)
		return deny(errors.PolicyViolation, "Query contains suspicious patterns")
	}
	if g.classifiers.IsSQLInjection(query) {
		g.warnDenied("sql injection detected", key, query)
		g.recordViolation(state, now)
		return deny(errors.PolicyViolation, "Query contains SQL injection patterns")
	}
	if g.classifiers.IsCodeExecution(query) {
		g.warnDenied("code execution attempt", key, query)
		g.recordViolation(state, now)
		return deny(errors.PolicyViolation, "Query contains code execution patterns")
	}
	if g.classifiers.IsSensitiveInfoRequest(query) {
		// Sensitive-info requests deny without violation bookkeeping.
		g.warnDenied("sensitive info request", key, query)
		return deny(errors.PolicyViolation, "Query requests sensitive system information")
	}
	if g.classifiers.IsDataTheft(query) {
		g.warnDenied("data theft attempt", key, query)
		g.recordViolation(state, now)
		return deny(errors.PolicyViolation, "This query appears to be attempting to extract proprietary data. Please ask specific analytical questions instead.")
	}

	// 8. Bulk extraction: enumeration phrasing, near-duplicate sequences,
	// or rapid fire.
	if g.isBulkExtraction(state, query, now) {
		g.warnDenied("bulk extraction attempt", key, query)
		g.recordViolation(state, now)
		return deny(errors.PolicyViolation, "Query appears to be attempting bulk data extraction. Please ask analytical questions instead.")
	}

	// 9. Rate limits over the live log.
	if g.cfg.RateLimitEnabled {
		if state.CountSince(now.Add(-time.Minute)) >= g.cfg.MaxQueriesPerMinute {
			return deny(errors.RateLimited, "Rate limit exceeded. Please try again later.")
		}
		if state.CountSince(now.Add(-time.Hour)) >= g.cfg.MaxQueriesPerHour {
			return deny(errors.RateLimited, "Rate limit exceeded. Please try again later.")
		}
	}

	// 11. Allowed: record the query.
	state.AppendQuery(query, now)
	return allow()
}

func (g *Gate) isBulkExtraction(state *UserState, query string, now time.Time) bool {
	if g.classifiers.IsEnumeration(query) {
		return true
	}

	// Near-duplicate detection: >= 3 of the last 5 logged queries are very
	// similar to the current one.
	similar := 0
	for _, rec := range state.Recent(similarityWindow) {
		if JaccardSimilarity(query, rec.Text) > similarityThreshold {
			similar++
		}
	}
	if similar >= similarityCount {
		return true
	}

	// Rapid fire: the window already holds a full burst of logged queries.
	// Checked before the rate limit so a burst is classified as bulk
	// extraction rather than mere rate overflow.
	return state.CountSince(now.Add(-rapidFireWindow)) >= rapidFireCount
}

// recordViolation implements step 10 of the check sequence: an explicit
// per-user counter, incremented by the denying checks themselves.
func (g *Gate) recordViolation(state *UserState, now time.Time) {
	state.Violations++
	if state.Violations >= violationThreshold {
		state.BlockedUntil = now.Add(blockDuration)
		g.logger.Warn("user blocked after repeated violations", map[string]interface{}{
			"violations": state.Violations,
		})
	}
}

// warnDenied logs a denial with the hashed key and a bounded query prefix.
// Raw user identifiers never reach the log. The prefix is cut at a rune
// boundary so multi-byte queries stay valid UTF-8.
func (g *Gate) warnDenied(event, key, query string) {
	prefix := query
	if runes := []rune(prefix); len(runes) > 100 {
		prefix = string(runes[:100])
	}
	g.logger.Warn(event, map[string]interface{}{
		"userKey":     key,
		"queryPrefix": prefix,
	})
}
