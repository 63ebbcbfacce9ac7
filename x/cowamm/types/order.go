package types

import (
	"encoding/binary"

	sdkmath "cosmossdk.io/math"
	"golang.org/x/crypto/sha3"
)

// Order is a fully specified trade owned by the pool: the pool sells SellAmount of SellToken
// and must receive at least BuyAmount of BuyToken in exchange.
type Order struct {
	SellToken  string      `json:"sell_token"`
	BuyToken   string      `json:"buy_token"`
	SellAmount sdkmath.Int `json:"sell_amount"`
	BuyAmount  sdkmath.Int `json:"buy_amount"`
	ValidTo    uint32      `json:"valid_to"`
	AppData    AppData     `json:"app_data"`
}

// EmptyOrder is the no-trade result of order generation.
var EmptyOrder = Order{}

// IsEmpty reports whether o is the no-trade sentinel.
func (o Order) IsEmpty() bool {
	return o.SellToken == "" && o.BuyToken == "" &&
		(o.SellAmount.IsNil() || o.SellAmount.IsZero()) &&
		(o.BuyAmount.IsNil() || o.BuyAmount.IsZero())
}

// Hash returns the commitment digest of the order.
// Hash = Keccak256(len||sellToken || len||buyToken || len||sellAmount || len||buyAmount || validTo || appData)
func (o Order) Hash() []byte {
	h := sha3.NewLegacyKeccak256()

	writeField := func(bz []byte) {
		lenBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(lenBytes, uint64(len(bz)))
		h.Write(lenBytes)
		h.Write(bz)
	}

	writeField([]byte(o.SellToken))
	writeField([]byte(o.BuyToken))
	writeField([]byte(amountString(o.SellAmount)))
	writeField([]byte(amountString(o.BuyAmount)))

	validTo := make([]byte, 4)
	binary.BigEndian.PutUint32(validTo, o.ValidTo)
	h.Write(validTo)
	h.Write(o.AppData[:])

	return h.Sum(nil)
}

func amountString(i sdkmath.Int) string {
	if i.IsNil() {
		return "0"
	}
	return i.String()
}
