package syncsignal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/ridloal/storefront-sync/internal/catalog"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/ridloal/storefront-sync/internal/product/repository"
	"github.com/robfig/cron/v3"
)

const topicSignal = "catalog:signal"

// LocalSource is the part of the local backing the broadcaster polls.
type LocalSource interface {
	Revision(ctx context.Context) (uint64, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
}

// Broadcaster is the local-persistence notifier. Publish emits one storage signal per
// category key followed by one products-updated signal with the counts. Signals go out on
// an EventBus topic read by the page hub and the change log.
//
// The bolt file is locked to this process, so every write goes through the admin service.
// The cron poll of the store revision only matters when a write landed but its Publish
// never happened, for instance because the reload after the mutation failed.
type Broadcaster struct {
	src   LocalSource
	bus   EventBus.Bus
	hub   *hub
	sched *cron.Cron

	mu      sync.Mutex
	lastRev uint64
}

var _ ChangeNotifier = (*Broadcaster)(nil)

// NewBroadcaster starts the revision poll when pollEvery > 0.
func NewBroadcaster(src LocalSource, pollEvery time.Duration) (*Broadcaster, error) {
	b := &Broadcaster{
		src: src,
		bus: EventBus.New(),
		hub: newHub(),
	}
	rev, err := src.Revision(context.Background())
	if err != nil {
		return nil, fmt.Errorf("read initial revision: %w", err)
	}
	b.lastRev = rev

	if err := b.bus.Subscribe(topicSignal, b.hub.broadcast); err != nil {
		return nil, fmt.Errorf("subscribe signal topic: %w", err)
	}
	if err := b.bus.Subscribe(topicSignal, logChange); err != nil {
		return nil, fmt.Errorf("subscribe change log: %w", err)
	}

	if pollEvery > 0 {
		b.sched = cron.New()
		schedule := fmt.Sprintf("@every %s", pollEvery)
		if _, err := b.sched.AddFunc(schedule, func() { b.Poll(context.Background()) }); err != nil {
			return nil, fmt.Errorf("schedule revision poll: %w", err)
		}
		b.sched.Start()
		logger.Info("Sync revision poll scheduled every %s", pollEvery)
	}
	return b, nil
}

func (b *Broadcaster) Subscribe(buffer int) (<-chan Signal, func()) {
	return b.hub.subscribe(buffer)
}

func (b *Broadcaster) Publish(ctx context.Context, products []domain.Product) error {
	signals, err := signalsFor(products)
	if err != nil {
		return err
	}
	if rev, err := b.src.Revision(ctx); err == nil {
		b.mu.Lock()
		b.lastRev = rev
		b.mu.Unlock()
	}
	for _, sig := range signals {
		b.bus.Publish(topicSignal, sig)
	}
	return nil
}

// Poll emits the full signal set when the store revision moved since the last Publish
// or Poll.
func (b *Broadcaster) Poll(ctx context.Context) {
	rev, err := b.src.Revision(ctx)
	if err != nil {
		logger.Error("Broadcaster.Poll: read revision failed", err)
		return
	}

	b.mu.Lock()
	changed := rev != b.lastRev
	b.lastRev = rev
	b.mu.Unlock()
	if !changed {
		return
	}

	products, err := b.src.GetAll(ctx)
	if err != nil {
		logger.Error("Broadcaster.Poll: reload products failed", err)
		return
	}
	logger.Info("Broadcaster.Poll: revision moved to %d, signalling pages", rev)
	signals, err := signalsFor(products)
	if err != nil {
		logger.Error("Broadcaster.Poll: build signals failed", err)
		return
	}
	for _, sig := range signals {
		b.bus.Publish(topicSignal, sig)
	}
}

func (b *Broadcaster) Close() error {
	if b.sched != nil {
		<-b.sched.Stop().Done()
	}
	b.hub.close()
	return nil
}

func logChange(sig Signal) {
	if sig.Kind != KindProductsUpdated || sig.Counts == nil {
		return
	}
	logger.Info("Catalog changed: total=%d furniture=%d properties=%d auto=%d",
		sig.Counts.Total, sig.Counts.Furniture, sig.Counts.Properties, sig.Counts.Auto)
}

func signalsFor(products []domain.Product) ([]Signal, error) {
	parts := catalog.Partition(products)
	signals := make([]Signal, 0, len(parts)+1)
	for _, c := range domain.Categories() {
		raw, err := json.Marshal(parts[c])
		if err != nil {
			return nil, fmt.Errorf("encode %s signal: %w", c, err)
		}
		signals = append(signals, Signal{
			Kind:  KindStorage,
			Key:   repository.CategoryKey(c),
			Value: raw,
		})
	}
	counts := catalog.Count(products)
	signals = append(signals, Signal{Kind: KindProductsUpdated, Counts: &counts})
	return signals, nil
}
