package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckVote_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		VoteCooldown:     10 * time.Second,
		VoteMaxPerHour:   5,
		VoteMaxIPPerHour: 20,
		Clock:            clock,
	})
	defer limiter.Close()

	voter := "fan@example.com"
	ip := "203.0.113.9"

	if result := limiter.CheckVote(voter, ip); !result.Allowed {
		t.Fatalf("first vote should be allowed, got blocked: %s", result.Reason)
	}
	limiter.RecordVote(voter, ip)

	clock.Advance(4 * time.Second)
	result := limiter.CheckVote(voter, ip)
	if result.Allowed {
		t.Fatal("vote within cooldown should be blocked")
	}
	if result.Reason != "cooldown" {
		t.Errorf("expected reason 'cooldown', got %q", result.Reason)
	}
	if result.RetryAfter != 6*time.Second {
		t.Errorf("expected RetryAfter 6s, got %v", result.RetryAfter)
	}

	clock.Advance(7 * time.Second)
	if result := limiter.CheckVote(voter, ip); !result.Allowed {
		t.Errorf("vote after cooldown should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckVote_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		VoteCooldown:     time.Millisecond,
		VoteMaxPerHour:   3,
		VoteMaxIPPerHour: 100,
		Clock:            clock,
	})
	defer limiter.Close()

	voter := "hourly@example.com"
	ip := "203.0.113.10"

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		if result := limiter.CheckVote(voter, ip); !result.Allowed {
			t.Fatalf("vote %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordVote(voter, ip)
	}

	clock.Advance(time.Second)
	result := limiter.CheckVote(voter, ip)
	if result.Allowed || result.Reason != "hourly_limit" {
		t.Fatalf("4th vote should hit the hourly limit, got %+v", result)
	}

	clock.Advance(time.Hour)
	if result := limiter.CheckVote(voter, ip); !result.Allowed {
		t.Errorf("vote after the window should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckVote_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		VoteCooldown:     time.Millisecond,
		VoteMaxPerHour:   100,
		VoteMaxIPPerHour: 2,
		Clock:            clock,
	})
	defer limiter.Close()

	ip := "203.0.113.11"
	for _, voter := range []string{"a@example.com", "b@example.com"} {
		clock.Advance(time.Second)
		if result := limiter.CheckVote(voter, ip); !result.Allowed {
			t.Fatalf("vote by %s should be allowed, got blocked: %s", voter, result.Reason)
		}
		limiter.RecordVote(voter, ip)
	}

	clock.Advance(time.Second)
	result := limiter.CheckVote("c@example.com", ip)
	if result.Allowed || result.Reason != "ip_hourly_limit" {
		t.Fatalf("third voter from the same IP should be blocked, got %+v", result)
	}

	if result := limiter.CheckVote("c@example.com", "198.51.100.4"); !result.Allowed {
		t.Errorf("another IP should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckVote_AnonymousLimitedByIPOnly(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		VoteCooldown:     time.Minute,
		VoteMaxPerHour:   1,
		VoteMaxIPPerHour: 3,
		Clock:            clock,
	})
	defer limiter.Close()

	ip := "203.0.113.12"
	for i := 0; i < 3; i++ {
		if result := limiter.CheckVote("", ip); !result.Allowed {
			t.Fatalf("anonymous vote %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordVote("", ip)
	}
	if result := limiter.CheckVote("", ip); result.Reason != "ip_hourly_limit" {
		t.Fatalf("expected ip limit, got %+v", result)
	}
}

func TestCheckVote_IdentifierNormalization(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		VoteCooldown:     time.Minute,
		VoteMaxPerHour:   10,
		VoteMaxIPPerHour: 10,
		Clock:            clock,
	})
	defer limiter.Close()

	limiter.RecordVote("Fan@Example.com", "203.0.113.13")

	for _, variant := range []string{"fan@example.com", "FAN@EXAMPLE.COM", "  fan@example.com  "} {
		if result := limiter.CheckVote(variant, "198.51.100.1"); result.Allowed {
			t.Errorf("%q should share the cooldown", variant)
		}
	}
}

func TestCheckAndRecord_SeparateOps(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		VoteCooldown:     time.Minute,
		VoteMaxPerHour:   1,
		VoteMaxIPPerHour: 100,
		Clock:            clock,
	})
	defer limiter.Close()

	for i := 0; i < 10; i++ {
		if result := limiter.CheckVote("fan@example.com", "203.0.113.14"); !result.Allowed {
			t.Fatalf("check %d should not consume quota", i+1)
		}
	}
	limiter.RecordVote("fan@example.com", "203.0.113.14")
	if result := limiter.CheckVote("fan@example.com", "203.0.113.14"); result.Allowed {
		t.Error("check after record should be blocked")
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50",
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1",
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "IPv6 RemoteAddr",
			headers:    map[string]string{},
			remoteAddr: "[2001:db8::7]:443",
			trustProxy: false,
			expected:   "2001:db8::7",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := GetClientIP(r, tt.trustProxy); got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"JOHN.DOE@EXAMPLE.COM", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***"},
		{"", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeIdentifier(tt.input); got != tt.expected {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	limiter := New(nil)
	defer limiter.Close()

	if limiter.config.VoteCooldown != DefaultConfig().VoteCooldown {
		t.Error("New(nil) should use default config")
	}
}

func TestLimiter_Close(t *testing.T) {
	limiter := New(nil)
	limiter.CheckVote("fan@example.com", "1.2.3.4")

	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Close() should not hang")
	}
}

func TestConcurrentAccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		VoteCooldown:     time.Millisecond,
		VoteMaxPerHour:   1000,
		VoteMaxIPPerHour: 1000,
		Clock:            clock,
	})
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if limiter.CheckVote("fan@example.com", "203.0.113.1").Allowed {
					limiter.RecordVote("fan@example.com", "203.0.113.1")
				}
				if j%25 == 0 {
					limiter.cleanup()
				}
			}
		}()
	}
	wg.Wait()
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd12:3456::1", true},
		{"::ffff:192.168.1.1", true},
		{"::ffff:8.8.8.8", false},
		{"203.0.113.50", false},
		{"2001:4860:4860::8888", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := isPrivateIP(tt.ip); got != tt.expected {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}
