package projector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/internal/metrics"
	"github.com/onticket/chainindexer/pkg/indexer"
	"golang.org/x/sync/errgroup"
)

// Coordinator routes committed logs to registered projectors based on their primary topic.
type Coordinator struct {
	mu sync.RWMutex

	// byTopic maps topic -> projectors for specific topic filters
	byTopic map[common.Hash][]indexer.Projector

	// allTopics holds projectors that want every log
	allTopics []indexer.Projector

	projectors []indexer.Projector
	log        *logger.Logger
}

// NewCoordinator creates an empty Coordinator.
func NewCoordinator(log *logger.Logger) *Coordinator {
	return &Coordinator{
		byTopic: make(map[common.Hash][]indexer.Projector),
		log:     log.WithComponent(internalcommon.ComponentProjector),
	}
}

// FromNames creates a Coordinator with one projector per registered factory name.
func FromNames(names []string, log *logger.Logger) (*Coordinator, error) {
	c := NewCoordinator(log)
	for _, name := range names {
		p, err := indexer.Create(name, log)
		if err != nil {
			return nil, err
		}
		c.Register(p)
	}
	return c, nil
}

// Register adds p to the routing table.
func (c *Coordinator) Register(p indexer.Projector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	topics := p.Topics()
	if len(topics) == 0 {
		c.allTopics = append(c.allTopics, p)
	}
	for _, topic := range topics {
		c.byTopic[topic] = append(c.byTopic[topic], p)
	}
	c.projectors = append(c.projectors, p)

	c.log.Infow("projector registered", "projector", p.Name(), "topics", len(topics))
}

// Names returns the names of the registered projectors in registration order.
func (c *Coordinator) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.projectors))
	for i, p := range c.projectors {
		names[i] = p.Name()
	}
	return names
}

// Dispatch hands every projector the logs it is interested in, concurrently.
// Logs keep their order within each projector's slice.
func (c *Coordinator) Dispatch(ctx context.Context, logs []indexer.ChainLog) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.projectors) == 0 {
		return nil
	}

	// Group logs by projector so each one sees a log at most once
	routed := make(map[indexer.Projector][]indexer.ChainLog)
	for _, l := range logs {
		interested := make(map[indexer.Projector]struct{})
		for _, p := range c.allTopics {
			interested[p] = struct{}{}
		}
		if topic, ok := l.EventTopic(); ok {
			for _, p := range c.byTopic[topic] {
				interested[p] = struct{}{}
			}
		}

		for p := range interested {
			routed[p] = append(routed[p], l)
		}
	}

	var g errgroup.Group
	for p, relevant := range routed {
		name := p.Name()
		g.Go(func() error {
			start := time.Now()
			if err := p.Project(ctx, relevant); err != nil {
				metrics.ProjectorErrorInc(name)
				return fmt.Errorf("projector %s failed: %w", name, err)
			}

			metrics.ProjectedLogsInc(name, len(relevant))
			c.log.Debugw("projected logs", "projector", name, "logs", len(relevant), "elapsed", time.Since(start))
			return nil
		})
	}

	return g.Wait()
}
