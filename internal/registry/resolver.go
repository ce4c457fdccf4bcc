package registry

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/logger"
)

// EntrySource provides the registry rows of one chain.
type EntrySource interface {
	Entries(ctx context.Context, chainID int64) (map[string]Entry, error)
}

// Resolver resolves the four logical names for one chain and publishes the result in its Cache.
// Static overrides win over the database when all four are usable.
type Resolver struct {
	chainID   int64
	overrides map[string]string
	source    EntrySource
	cache     *Cache
	log       *logger.Logger
}

// NewResolver creates a resolver for chainID.
func NewResolver(chainID int64, overrides map[string]string, source EntrySource, log *logger.Logger) *Resolver {
	return &Resolver{
		chainID:   chainID,
		overrides: overrides,
		source:    source,
		cache:     &Cache{},
		log:       log,
	}
}

// Resolve computes the current ContractAddresses without touching the cache.
func (r *Resolver) Resolve(ctx context.Context) (ContractAddresses, error) {
	addrs, ok, rejected := ParseOverrides(r.overrides)
	if ok {
		return addrs, nil
	}
	if len(rejected) < len(Names) {
		r.log.Warnw("ignoring partial static contract overrides", "chain_id", r.chainID, "unusable", rejected)
	}

	entries, err := r.source.Entries(ctx, r.chainID)
	if err != nil {
		return ContractAddresses{}, err
	}

	byName := make(map[string]common.Address, len(Names))
	for _, name := range Names {
		entry, found := entries[name]
		if !found {
			continue
		}
		addr, err := ParseAddress(entry.Address)
		if err != nil {
			return ContractAddresses{}, fmt.Errorf("%s of chain %d: %w", name, r.chainID, err)
		}
		byName[name] = addr
	}

	return NewContractAddresses(byName)
}

// Reload resolves and, on success, replaces the cached addresses.
// On failure the previous value stays in place.
func (r *Resolver) Reload(ctx context.Context) error {
	addrs, err := r.Resolve(ctx)
	if err != nil {
		ReloadOutcomeInc(outcomeFailure)
		return fmt.Errorf("failed to resolve contract addresses of chain %d: %w", r.chainID, err)
	}

	r.cache.Set(addrs)
	ReloadOutcomeInc(outcomeSuccess)

	r.log.Infow("contract addresses loaded",
		"chain_id", r.chainID,
		TicketManager, addrs.TicketManager.Hex(),
		EventManager, addrs.EventManager.Hex(),
		Marketplace, addrs.Marketplace.Hex(),
		TokenSwap, addrs.TokenSwap.Hex(),
	)
	return nil
}

// Addresses returns the cached addresses, if a reload ever succeeded.
func (r *Resolver) Addresses() (ContractAddresses, bool) {
	return r.cache.Get()
}
