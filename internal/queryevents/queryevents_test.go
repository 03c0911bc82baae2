package queryevents

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func newMockProducer(t *testing.T) *mocks.AsyncProducer {
	t.Helper()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Errors = true
	return mocks.NewAsyncProducer(t, cfg)
}

func TestPublish_EventsReachProducer(t *testing.T) {
	mp := newMockProducer(t)
	for range 2 {
		mp.ExpectInputWithCheckerFunctionAndSucceed(func(b []byte) error {
			var ev Event
			return json.Unmarshal(b, &ev)
		})
	}
	p := newWithProducer(mp, "mart-query-events", 16)

	p.Publish(Event{
		Dataset:    "hsapiens_gene_ensembl",
		Mart:       "ENSEMBL_MART_ENSEMBL",
		Attributes: 3,
		Filters:    1,
		Rows:       120,
		DurationMS: 250,
	})
	p.Publish(Event{
		Dataset:    "mmusculus_gene_ensembl",
		Attributes: 2,
		Rows:       -1,
	})

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublish_FillsTimestamp(t *testing.T) {
	mp := newMockProducer(t)
	mp.ExpectInputWithCheckerFunctionAndSucceed(func(b []byte) error {
		var ev Event
		if err := json.Unmarshal(b, &ev); err != nil {
			return err
		}
		if ev.TS.IsZero() {
			return errors.New("ts not filled on publish")
		}
		return nil
	})
	p := newWithProducer(mp, "mart-query-events", 16)

	p.Publish(Event{Dataset: "hsapiens_gene_ensembl"})

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestEvent_JSONShape(t *testing.T) {
	ev := Event{
		Dataset:     "hsapiens_gene_ensembl",
		Attributes:  2,
		Filters:     1,
		Rows:        10,
		DurationMS:  42,
		Fingerprint: "00ff00ff00ff00ff",
		TS:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)

	for _, want := range []string{`"dataset":"hsapiens_gene_ensembl"`, `"rows":10`, `"duration_ms":42`, `"fingerprint":"00ff00ff00ff00ff"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("payload missing %s:\n%s", want, s)
		}
	}
	// empty mart and zero homologs stay out of the payload
	for _, reject := range []string{`"mart"`, `"homologs"`, `"scenario"`} {
		if strings.Contains(s, reject) {
			t.Fatalf("payload should omit %s:\n%s", reject, s)
		}
	}
}

func TestPublish_QueueFullDropsInsteadOfBlocking(t *testing.T) {
	// no drain goroutine, so an unbuffered queue is permanently full
	p := &Publisher{topic: "mart-query-events", events: make(chan Event)}

	done := make(chan struct{})
	go func() {
		p.Publish(Event{Dataset: "hsapiens_gene_ensembl"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestGlobal_NilPublisherIsNoop(t *testing.T) {
	InitGlobal(nil)
	Publish(Event{Dataset: "hsapiens_gene_ensembl"})
	if err := CloseGlobal(); err != nil {
		t.Fatalf("close nil global: %v", err)
	}
}
