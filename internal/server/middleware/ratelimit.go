package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iudanet/podsync/internal/server/handlers"
)

// RateLimitConfig задаёт параметры token bucket на одного владельца
type RateLimitConfig struct {
	Interval time.Duration // интервал пополнения одного токена; <= 0 отключает лимит
	Burst    int           // максимальный всплеск запросов
}

// DefaultRateLimitConfig returns ~100 req/min with burst of 20
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Interval: 600 * time.Millisecond,
		Burst:    20,
	}
}

// RateLimiter хранит отдельный rate.Limiter на каждый ключ (владелец или IP)
type RateLimiter struct {
	limiters map[string]*limiterEntry
	logger   *slog.Logger
	cleanupC chan struct{}
	config   RateLimitConfig
	idle     time.Duration
	mu       sync.RWMutex
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// NewRateLimiter создает новый rate limiter.
// Лимитеры, не использовавшиеся дольше idle, периодически удаляются.
func NewRateLimiter(config RateLimitConfig, idle time.Duration, logger *slog.Logger) *RateLimiter {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		config:   config,
		idle:     idle,
		logger:   logger,
		cleanupC: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupIdle(time.Now())
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupIdle удаляет лимитеры, простаивающие дольше idle
func (rl *RateLimiter) cleanupIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, e := range rl.limiters {
		e.mu.Lock()
		if now.Sub(e.lastSeen) > rl.idle {
			delete(rl.limiters, key)
		}
		e.mu.Unlock()
	}
}

// Stop останавливает cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.cleanupC)
	})
}

// get возвращает лимитер ключа, создавая его при первом обращении
func (rl *RateLimiter) get(key string) *limiterEntry {
	rl.mu.RLock()
	e, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		return e
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// Повторная проверка под эксклюзивной блокировкой
	if e, ok := rl.limiters[key]; ok {
		return e
	}
	e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(rl.config.Interval), rl.config.Burst)}
	rl.limiters[key] = e
	return e
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	e := rl.get(key)

	e.mu.Lock()
	e.lastSeen = time.Now()
	e.mu.Unlock()

	return e.limiter.Allow()
}

// Len возвращает число отслеживаемых ключей
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// RateLimitMiddleware ограничивает частоту запросов владельца.
// Должен стоять после AuthMiddleware; без владельца ключом служит IP адрес.
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := handlers.GetOwnerID(r.Context())
			if !ok {
				key = "ip:" + getClientIP(r)
			}

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"key", key,
					"method", r.Method,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","message":"rate limit exceeded, please try again later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	// Проверяем X-Forwarded-For (для прокси/load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Берем первый IP из списка (реальный клиент)
		for idx := 0; idx < len(xff); idx++ {
			if xff[idx] == ',' {
				return xff[:idx]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
