package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

func init() {
	meddler.Register("address", AddressMeddler{})
	meddler.Register("hash", HashMeddler{})
}

// AddressMeddler stores common.Address as lowercase 0x-prefixed hex.
type AddressMeddler struct{}

func (a AddressMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

func (a AddressMeddler) PostRead(fieldAddr, scanTarget interface{}) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	ptr, ok := fieldAddr.(*common.Address)
	if !ok {
		return fmt.Errorf("expected *common.Address, got %T", fieldAddr)
	}

	if !ns.Valid {
		*ptr = common.Address{}
		return nil
	}
	if !common.IsHexAddress(ns.String) {
		return fmt.Errorf("stored value %q is not an address", ns.String)
	}
	*ptr = common.HexToAddress(ns.String)
	return nil
}

func (a AddressMeddler) PreWrite(field interface{}) (saveValue interface{}, err error) {
	address, ok := field.(common.Address)
	if !ok {
		return nil, fmt.Errorf("expected common.Address, got %T", field)
	}
	return LowerHex(address), nil
}

// HashMeddler stores common.Hash as lowercase 0x-prefixed hex.
type HashMeddler struct{}

func (h HashMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

func (h HashMeddler) PostRead(fieldAddr, scanTarget interface{}) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	ptr, ok := fieldAddr.(*common.Hash)
	if !ok {
		return fmt.Errorf("expected *common.Hash, got %T", fieldAddr)
	}

	if !ns.Valid {
		*ptr = common.Hash{}
		return nil
	}
	*ptr = common.HexToHash(ns.String)
	return nil
}

func (h HashMeddler) PreWrite(field interface{}) (saveValue interface{}, err error) {
	if hash, ok := field.(common.Hash); ok {
		return hash.Hex(), nil
	}
	return nil, fmt.Errorf("expected common.Hash, got %T", field)
}

// LowerHex renders an address the way it is persisted.
func LowerHex(address common.Address) string {
	return strings.ToLower(address.Hex())
}
