// Package ratelimit throttles vote purchases per voter and per client IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const window = time.Hour

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Config struct {
	VoteCooldown     time.Duration // Minimum time between purchases by one voter (default: 5s)
	VoteMaxPerHour   int           // Max purchases per voter per hour (default: 30)
	VoteMaxIPPerHour int           // Max purchases per IP per hour (default: 120)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		VoteCooldown:     5 * time.Second,
		VoteMaxPerHour:   30,
		VoteMaxIPPerHour: 120,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

// Limiter counts vote purchases in fixed hourly windows.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	// Keyed by hash of voter or IP
	byVoter map[string]*entry
	byIP    map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byVoter:       make(map[string]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckVote reports whether a purchase by voter from ip is allowed. It does
// not record the attempt; call RecordVote once the payment was created.
// An empty voter is only limited by IP.
func (l *Limiter) CheckVote(voter, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	voter = normalizeIdentifier(voter)
	voterKey := l.hashKey("vote:voter:", voter)
	ipKey := l.hashKey("vote:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.byVoter[voterKey]; voter != "" && e != nil {
		if elapsed := now.Sub(e.lastAt); elapsed < l.config.VoteCooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.VoteCooldown - elapsed,
				Reason:     "cooldown",
			}
		}
		if now.Sub(e.firstAt) < window && e.count >= l.config.VoteMaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: window - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.byIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < window && e.count >= l.config.VoteMaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: window - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordVote counts a created payment against voter and ip.
func (l *Limiter) RecordVote(voter, ip string) {
	now := l.clock.Now()
	voter = normalizeIdentifier(voter)
	voterKey := l.hashKey("vote:voter:", voter)
	ipKey := l.hashKey("vote:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	if voter != "" {
		bump(l.byVoter, voterKey, now)
	}
	bump(l.byIP, ipKey, now)
}

func bump(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= window {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entries := range []map[string]*entry{l.byVoter, l.byIP} {
		for k, e := range entries {
			if now.Sub(e.lastAt) > window {
				delete(entries, k)
			}
		}
	}
}

// SanitizeIdentifier masks a voter email for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = normalizeIdentifier(identifier)
	if local, domain, ok := strings.Cut(identifier, "@"); ok {
		if len(local) > 2 {
			return local[:2] + "***@" + domain
		}
		return "***@" + domain
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with sanitized identifier.
func LogRateLimitExceeded(voter, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("voter", SanitizeIdentifier(voter)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Vote rate limit exceeded")
}
