package constants

import "time"

var CacheTTL = struct {
	ScrapedProfile time.Duration
	UploadStats    time.Duration
}{
	ScrapedProfile: 30 * time.Minute, // 30분 - 프로필 스크랩 결과
	UploadStats:    60 * time.Minute, // 1시간 - 업로드 통계
}

var CacheKeys = struct {
	ProfilePrefix string
	StatsPrefix   string
}{
	ProfilePrefix: "ikusa:profile:",
	StatsPrefix:   "ikusa:stats:",
}

var ScraperConfig = struct {
	Timeout          time.Duration
	UserAgent        string
	RequestsPerSec   float64
	Burst            int
	BatchConcurrency int
	MaxBatchSize     int
	MaxBodyBytes     int64
}{
	Timeout:          15 * time.Second,
	UserAgent:        "Mozilla/5.0 (compatible; IkusaBot/1.0)",
	RequestsPerSec:   2,
	Burst:            4,
	BatchConcurrency: 4,
	MaxBatchSize:     20,
	MaxBodyBytes:     5 << 20,
}

var PowerRange = struct {
	Min int
	Max int
}{
	Min: 100,
	Max: 9999,
}

// ProfileNameMaxRunes matches scraped_profiles.name.
const ProfileNameMaxRunes = 64

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 5,                // 5회 연속 실패 시 Circuit OPEN
	ResetTimeout:     30 * time.Second, // 재시도 대기 시간
}

var PaginationConfig = struct {
	DefaultLimit int
	MaxLimit     int
}{
	DefaultLimit: 20,
	MaxLimit:     100,
}

var StoreConfig = struct {
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	ConnectTimeout:  5 * time.Second,
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}
