package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Logical contract names.
const (
	TicketManager = "TicketManager"
	EventManager  = "EventManager"
	Marketplace   = "Marketplace"
	TokenSwap     = "TokenSwap"
)

// Names lists every recognized logical contract name.
var Names = []string{TicketManager, EventManager, Marketplace, TokenSwap}

var (
	// ErrIncompleteRegistry is returned when not every recognized name resolves.
	ErrIncompleteRegistry = errors.New("contract registry is incomplete")

	// ErrInvalidAddress is returned for a value that is not a 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid contract address")

	// ErrUnknownContract is returned for a logical name outside Names.
	ErrUnknownContract = errors.New("unknown contract name")
)

// ContractAddresses holds one address per recognized logical name.
// Values are never mutated after construction.
type ContractAddresses struct {
	TicketManager common.Address
	EventManager  common.Address
	Marketplace   common.Address
	TokenSwap     common.Address
}

// NewContractAddresses builds a ContractAddresses from a complete name -> address map.
func NewContractAddresses(byName map[string]common.Address) (ContractAddresses, error) {
	var missing []string
	for _, name := range Names {
		if _, ok := byName[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return ContractAddresses{}, fmt.Errorf("%w: missing %s", ErrIncompleteRegistry, strings.Join(missing, ", "))
	}

	return ContractAddresses{
		TicketManager: byName[TicketManager],
		EventManager:  byName[EventManager],
		Marketplace:   byName[Marketplace],
		TokenSwap:     byName[TokenSwap],
	}, nil
}

// List returns the four addresses in Names order.
func (a ContractAddresses) List() []common.Address {
	return []common.Address{a.TicketManager, a.EventManager, a.Marketplace, a.TokenSwap}
}

// NameOf returns the logical name an address is registered under.
func (a ContractAddresses) NameOf(address common.Address) (string, bool) {
	for i, addr := range a.List() {
		if addr == address {
			return Names[i], true
		}
	}
	return "", false
}

// ValidateName checks that name is a recognized logical contract name.
func ValidateName(name string) error {
	for _, n := range Names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownContract, name, strings.Join(Names, ", "))
}

// ParseAddress parses a 20-byte hex address, with or without the 0x prefix.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ParseOverrides returns the static override set when every name has a parseable address.
// A partial or malformed set yields ok=false and the names that could not be used.
func ParseOverrides(raw map[string]string) (addrs ContractAddresses, ok bool, rejected []string) {
	byName := make(map[string]common.Address, len(Names))
	for _, name := range Names {
		addr, err := ParseAddress(raw[name])
		if err != nil {
			rejected = append(rejected, name)
			continue
		}
		byName[name] = addr
	}
	if len(rejected) > 0 {
		return ContractAddresses{}, false, rejected
	}

	addrs, err := NewContractAddresses(byName)
	if err != nil {
		return ContractAddresses{}, false, Names
	}
	return addrs, true, nil
}
