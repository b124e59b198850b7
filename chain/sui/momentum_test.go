package sui

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartcontractkit/visualsign-go/payload"
)

func TestDecoder_Momentum(t *testing.T) {
	t.Parallel()

	var (
		pair           = [][]byte{suiTag(), usdcTag()}
		sqrtPriceLimit = u128(big.NewInt(4295048016))
	)

	tests := []struct {
		name       string
		give       []byte
		wantTitle  string
		wantFields map[string]any
	}{
		{
			name: "flash swap exact in",
			give: defiCall(MomentumPackage, "trade", "flash_swap", pair,
				[][]byte{u64(1_000_000_000), boolean(true), boolean(true), sqrtPriceLimit},
				first, pure(1), pure(2), pure(0), pure(3), clock, second),
			wantTitle: "Momentum Swap 1 SUI for USDC",
			wantFields: map[string]any{
				"Pool":             payload.AddressV2{Address: sharedObject},
				"Input Coin":       payload.TextV2{Text: SUICoinType},
				"Input Amount":     payload.AmountV2{Amount: "1", Abbreviation: "SUI"},
				"Sqrt Price Limit": payload.Number{Number: "4295048016"},
			},
		},
		{
			name: "flash swap exact out",
			give: defiCall(MomentumPackage, "trade", "flash_swap", pair,
				[][]byte{u64(2_000_000_000), boolean(false), boolean(false), sqrtPriceLimit},
				first, pure(1), pure(2), pure(0), pure(3), clock, second),
			wantTitle: "Momentum Swap USDC for 2 SUI",
			wantFields: map[string]any{
				"Input Coin":    payload.TextV2{Text: usdcType},
				"Output Amount": payload.AmountV2{Amount: "2", Abbreviation: "SUI"},
			},
		},
		{
			name: "add liquidity",
			give: defiCall(MomentumPackage, "liquidity", "add_liquidity", pair,
				[][]byte{u64(1_000_000_000), u64(900_000_000), u64(2_000_000)},
				first, owned, split, second, pure(1), pure(2), clock, second),
			wantTitle: "Momentum Add Liquidity",
			wantFields: map[string]any{
				"Position":         payload.AddressV2{Address: ownedObject},
				"Coin X Amount":    payload.AmountV2{Amount: "1", Abbreviation: "SUI"},
				"Coin Y Amount":    payload.AddressV2{Address: "0x000000000000000000000000000000000000000000000000000000000000b001"},
				"Minimum Amount X": payload.AmountV2{Amount: "0.9", Abbreviation: "SUI"},
				"Minimum Amount Y": payload.AmountV2{Amount: "2", Abbreviation: "USDC"},
			},
		},
		{
			name: "remove liquidity",
			give: defiCall(MomentumPackage, "liquidity", "remove_liquidity", pair,
				[][]byte{u64(1), u128(big.NewInt(5_000)), u64(100_000_000), u64(1_000_000)},
				first, owned, pure(1), pure(2), pure(3), clock, second),
			wantTitle: "Momentum Remove Liquidity",
			wantFields: map[string]any{
				"Liquidity":        payload.Number{Number: "5000"},
				"Minimum Amount X": payload.AmountV2{Amount: "0.1", Abbreviation: "SUI"},
				"Minimum Amount Y": payload.AmountV2{Amount: "1", Abbreviation: "USDC"},
			},
		},
		{
			name: "flash loan",
			give: defiCall(MomentumPackage, "trade", "flash_loan", pair,
				[][]byte{u64(1), u64(500_000_000), u64(1_000_000)},
				first, pure(1), pure(2), second),
			wantTitle: "Momentum Flash Loan",
			wantFields: map[string]any{
				"Amount X": payload.AmountV2{Amount: "0.5", Abbreviation: "SUI"},
				"Amount Y": payload.AmountV2{Amount: "1", Abbreviation: "USDC"},
			},
		},
		{
			name: "collect reward",
			give: defiCall(MomentumPackage, "collect", "reward",
				[][]byte{suiTag(), usdcTag(), structTag("0x06864a6f921804860930db6ddbe2e16acdf8504495ea7481637a1c8b9a8fe54b", "cetus", "CETUS")},
				[][]byte{u64(1)},
				first, owned, clock, second),
			wantTitle: "Momentum Collect Reward (CETUS)",
			wantFields: map[string]any{
				"Reward Coin": payload.TextV2{Text: cetusCoinType},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assertCommand(t, decode(t, tt.give, usdcRegistry(t)), 1, tt.wantTitle, tt.wantFields)
		})
	}
}

func TestDecoder_MomentumSwapMalformed(t *testing.T) {
	t.Parallel()

	raw := defiCall(MomentumPackage, "trade", "flash_swap", [][]byte{suiTag()},
		[][]byte{u64(1), boolean(true), boolean(true), u128(big.NewInt(1))},
		first, pure(1), pure(2), pure(0), pure(3), clock, second)

	_, layout := commandAt(t, decode(t, raw, nil), 1)
	assert.Equal(t, &payload.TextV2{Text: MomentumPackage + "::trade::flash_swap"}, layout.Title)
	assert.Equal(t, payload.AddressV2{Address: MomentumPackage, Name: "Momentum"}, expandedField(t, layout, "Package").Value)
}
