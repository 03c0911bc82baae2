package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type EventsCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	Queue   int
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr             string
	LogLevel         string
	MartURL          string
	VirtualSchema    string
	Scenario         string
	MartTimeout      time.Duration
	HotThreshold     float64
	HotHalfLife      time.Duration
	CatalogTTL       time.Duration
	CatalogTTLHot    time.Duration
	CatalogTTLOvr    map[string]time.Duration
	CatalogCacheSize int
	MaxFilterBytes   int
	Events           EventsCfg
	Metrics          MetricsCfg
}

func FromEnv() Config {
	ttl := getduration("CATALOG_TTL", 10*time.Minute)
	ttlHot := getduration("CATALOG_TTL_HOT", 30*time.Minute)
	if ttlHot < ttl {
		ttlHot = ttl
	}

	size := getint("CATALOG_CACHE_SIZE", 256)
	if size <= 0 {
		size = 256
	}

	return Config{
		Addr:             getenv("ADDR", ":8090"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		MartURL:          getenv("MART_URL", "http://www.ensembl.org/biomart/martservice"),
		VirtualSchema:    getenv("MART_SCHEMA", "default"),
		Scenario:         getenv("SCENARIO", "direct"),
		MartTimeout:      getduration("MART_TIMEOUT", 3*time.Minute),
		HotThreshold:     getfloat("HOT_THRESHOLD", 10.0),
		HotHalfLife:      getduration("HOT_HALF_LIFE", 5*time.Minute),
		CatalogTTL:       ttl,
		CatalogTTLHot:    ttlHot,
		CatalogTTLOvr:    parseDurationMap(getenv("CATALOG_TTL_OVERRIDES", "")),
		CatalogCacheSize: size,
		MaxFilterBytes:   getint("MAX_FILTER_BYTES", 64<<10),
		Events: EventsCfg{
			Enabled: getbool("QUERY_EVENTS_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("QUERY_EVENTS_TOPIC", "mart-query-events"),
			Queue:   getint("QUERY_EVENTS_QUEUE", 256),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9100"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parse "registry=1h,datasets=30m" into map
func parseDurationMap(s string) map[string]time.Duration {
	out := map[string]time.Duration{}
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	parts := strings.SplitSeq(s, ",")
	for p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.TrimSpace(kv[0])
		v := strings.TrimSpace(kv[1])
		if k == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil {
			out[k] = d
		}
	}
	return out
}
