package simple

import (
	"sync"
	"testing"
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/decision"
	"github.com/mohammed-shakir/biomart-gateway/internal/hotness"
)

type fakeHot struct {
	mu sync.Mutex
	m  map[string]float64
}

func newFakeHot() *fakeHot { return &fakeHot{m: make(map[string]float64)} }

func (f *fakeHot) Inc(key string) {
	f.mu.Lock()
	f.m[key]++
	f.mu.Unlock()
}

func (f *fakeHot) Score(key string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m[key]
}

func (f *fakeHot) Reset(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(keys) == 0 {
		f.m = make(map[string]float64)
		return
	}
	for _, k := range keys {
		delete(f.m, k)
	}
}

var (
	_ hotness.Interface  = (*fakeHot)(nil)
	_ decision.Interface = (*Engine)(nil)
)

func TestHot_ThresholdCrossing(t *testing.T) {
	h := newFakeHot()
	e := &Engine{
		Heat:      h,
		Threshold: 2.0,
		Base:      10 * time.Minute,
		HotTTL:    30 * time.Minute,
	}

	ds := "hsapiens_gene_ensembl"

	h.m[ds] = 1.9
	if e.Hot(ds) {
		t.Fatalf("expected Hot=false below threshold")
	}

	h.m[ds] = 2.0
	// crossing the threshold flips the scope to hot
	if !e.Hot(ds) {
		t.Fatalf("expected Hot=true at threshold")
	}

	if e.Hot("") {
		t.Fatalf("empty scope must never be hot")
	}
}

func TestTTL_HotScopeGetsLongerLifetime(t *testing.T) {
	h := newFakeHot()
	e := &Engine{
		Heat:      h,
		Threshold: 2.0,
		Base:      10 * time.Minute,
		HotTTL:    30 * time.Minute,
	}

	cold := "drerio_gene_ensembl"
	hot := "hsapiens_gene_ensembl"
	h.m[hot] = 5.0

	if got := e.TTL("config", cold); got != 10*time.Minute {
		t.Fatalf("cold TTL = %v, want base", got)
	}
	if got := e.TTL("config", hot); got != 30*time.Minute {
		t.Fatalf("hot TTL = %v, want stretched", got)
	}
}

func TestTTL_KindOverrideWinsOverHeat(t *testing.T) {
	h := newFakeHot()
	e := &Engine{
		Heat:      h,
		Threshold: 1.0,
		Base:      10 * time.Minute,
		HotTTL:    30 * time.Minute,
		Overrides: map[string]time.Duration{"registry": time.Hour},
	}

	h.m["hsapiens_gene_ensembl"] = 9.0

	if got := e.TTL("registry", "hsapiens_gene_ensembl"); got != time.Hour {
		t.Fatalf("override TTL = %v, want 1h", got)
	}
	if got := e.TTL("config", "hsapiens_gene_ensembl"); got != 30*time.Minute {
		t.Fatalf("non-override TTL = %v, want hot", got)
	}
}

func TestTTL_ZeroThresholdNeverHot(t *testing.T) {
	h := newFakeHot()
	e := &Engine{
		Heat:      h,
		Threshold: 0,
		Base:      10 * time.Minute,
		HotTTL:    30 * time.Minute,
	}
	h.m["hsapiens_gene_ensembl"] = 100

	if got := e.TTL("config", "hsapiens_gene_ensembl"); got != 10*time.Minute {
		t.Fatalf("TTL = %v, want base when threshold disabled", got)
	}
}
