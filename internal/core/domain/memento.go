package domain

import (
	"encoding/base64"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Memento layout, protobuf wire format, base64url without padding:
//
//	1: version (varint)
//	2: coin    (bytes, repeated, in cache order)
//	     1: row    (zigzag varint)
//	     2: col    (zigzag varint)
//	     3: serial (varint)
const mementoVersion = 1

const (
	fieldVersion protowire.Number = 1
	fieldCoin    protowire.Number = 2

	fieldCoinRow    protowire.Number = 1
	fieldCoinCol    protowire.Number = 2
	fieldCoinSerial protowire.Number = 3
)

// Memento serializes the cache's coins. RestoreCache is its inverse.
func (c *Cache) Memento() string {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, mementoVersion)
	for _, coin := range c.coins {
		b = protowire.AppendTag(b, fieldCoin, protowire.BytesType)
		b = protowire.AppendBytes(b, appendCoin(nil, coin))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func appendCoin(b []byte, coin Coin) []byte {
	b = protowire.AppendTag(b, fieldCoinRow, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(coin.Row)))
	b = protowire.AppendTag(b, fieldCoinCol, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(coin.Col)))
	b = protowire.AppendTag(b, fieldCoinSerial, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(coin.Serial))
	return b
}

// RestoreCache rebuilds the cache at cell from a Memento record.
// Anything that Memento could not have produced yields ErrMalformedRecord.
func RestoreCache(cell GridCell, record string) (*Cache, error) {
	b, err := base64.RawURLEncoding.DecodeString(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var (
		coins      []Coin
		seenHeader bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, protowire.ParseError(n))
			}
			if v != mementoVersion || seenHeader || len(coins) > 0 {
				return nil, fmt.Errorf("%w: bad version header", ErrMalformedRecord)
			}
			seenHeader = true
			b = b[n:]
		case num == fieldCoin && typ == protowire.BytesType:
			if !seenHeader {
				return nil, fmt.Errorf("%w: coin before version", ErrMalformedRecord)
			}
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, protowire.ParseError(n))
			}
			coin, err := consumeCoin(raw)
			if err != nil {
				return nil, err
			}
			coins = append(coins, coin)
			b = b[n:]
		default:
			return nil, fmt.Errorf("%w: unexpected field %d", ErrMalformedRecord, num)
		}
	}
	if !seenHeader {
		return nil, fmt.Errorf("%w: missing version", ErrMalformedRecord)
	}
	return &Cache{cell: cell, coins: coins}, nil
}

func consumeCoin(b []byte) (Coin, error) {
	var (
		vals [3]uint64
		seen [3]bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Coin{}, fmt.Errorf("%w: %v", ErrMalformedRecord, protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.VarintType || num < fieldCoinRow || num > fieldCoinSerial {
			return Coin{}, fmt.Errorf("%w: unexpected coin field %d", ErrMalformedRecord, num)
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return Coin{}, fmt.Errorf("%w: %v", ErrMalformedRecord, protowire.ParseError(n))
		}
		b = b[n:]
		i := int(num - fieldCoinRow)
		if seen[i] {
			return Coin{}, fmt.Errorf("%w: repeated coin field %d", ErrMalformedRecord, num)
		}
		vals[i], seen[i] = v, true
	}
	if !seen[0] || !seen[1] || !seen[2] {
		return Coin{}, fmt.Errorf("%w: incomplete coin", ErrMalformedRecord)
	}
	row := protowire.DecodeZigZag(vals[0])
	col := protowire.DecodeZigZag(vals[1])
	if row < math.MinInt || row > math.MaxInt || col < math.MinInt || col > math.MaxInt || vals[2] > math.MaxInt {
		return Coin{}, fmt.Errorf("%w: coin out of range", ErrMalformedRecord)
	}
	return Coin{Row: int(row), Col: int(col), Serial: int(vals[2])}, nil
}
