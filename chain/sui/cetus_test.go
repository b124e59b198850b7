package sui

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartcontractkit/visualsign-go/payload"
)

const (
	cetusCoinType = "0x6864a6f921804860930db6ddbe2e16acdf8504495ea7481637a1c8b9a8fe54b::cetus::CETUS"
	ownedObject   = "0x0000000000000000000000000000000000000000000000000000000000000b0b"
)

// Inputs of defiCall: two shared objects, the clock, an owned object and then the pure
// values, the first of which is split off the gas coin.
var (
	first  = input(0)
	second = input(1)
	clock  = input(2)
	owned  = input(3)
	split  = result(0)
)

func pure(i uint16) []byte { return input(4 + i) }

// defiCall builds a transaction that splits pures[0] off the gas coin and then calls
// pkg::module::function. The call is the second command.
func defiCall(pkg, module, function string, typeArgs, pures [][]byte, args ...[]byte) []byte {
	inputs := [][]byte{sharedInput("0xc0de"), sharedInput("0xb001"), sharedInput("0x6"), ownedInput("0xb0b")}
	for _, p := range pures {
		inputs = append(inputs, pureInput(p))
	}

	return txData(transferSender, inputs, [][]byte{
		splitCoins(gasCoin(), pure(0)),
		moveCall(pkg, module, function, typeArgs, args...),
	}, nil)
}

func TestDecoder_Cetus(t *testing.T) {
	t.Parallel()

	var (
		pair           = [][]byte{suiTag(), usdcTag()}
		sqrtPriceLimit = u128(big.NewInt(4295048016))
		lowerTick      = int32(-100)
	)

	tests := []struct {
		name       string
		give       []byte
		wantTitle  string
		wantFields map[string]any
		wantAbsent []string
	}{
		{
			name: "pool swap exact in",
			give: defiCall(CetusPackage, "pool_script_v2", "swap_a2b", pair,
				[][]byte{u64(1_000_000_000), boolean(true), u64(2_500_000), sqrtPriceLimit},
				first, second, split, owned, pure(1), pure(0), pure(2), pure(3), clock),
			wantTitle: "Cetus Swap 1 SUI for at least 2.5 USDC",
			wantFields: map[string]any{
				"User":                  payload.AddressV2{Address: transferSender},
				"Input Coin":            payload.TextV2{Text: SUICoinType},
				"Output Coin":           payload.TextV2{Text: usdcType},
				"Input Amount":          payload.AmountV2{Amount: "1", Abbreviation: "SUI"},
				"Minimum Output Amount": payload.AmountV2{Amount: "2.5", Abbreviation: "USDC"},
				"Sqrt Price Limit":      payload.Number{Number: "4295048016"},
			},
		},
		{
			name: "pool swap exact out with partner",
			give: defiCall(CetusPackage, "pool_script", "swap_b2a_with_partner", pair,
				[][]byte{u64(2_000_000_000), boolean(false), u64(303_000_000), sqrtPriceLimit},
				first, second, owned, split, pure(1), pure(0), pure(2), pure(3), clock),
			wantTitle: "Cetus Swap at most 303 USDC for 2 SUI",
			wantFields: map[string]any{
				"Input Coin":           payload.TextV2{Text: usdcType},
				"Output Amount":        payload.AmountV2{Amount: "2", Abbreviation: "SUI"},
				"Maximum Input Amount": payload.AmountV2{Amount: "303", Abbreviation: "USDC"},
			},
		},
		{
			name: "router swap",
			give: defiCall(CetusPackage, "router", "swap", pair,
				[][]byte{u64(1_000_000_000), boolean(true), boolean(true), sqrtPriceLimit, boolean(false)},
				first, second, split, owned, pure(1), pure(2), pure(0), pure(3), pure(4), clock),
			wantTitle: "Cetus Swap 1 SUI for USDC",
			wantFields: map[string]any{
				"Input Amount": payload.AmountV2{Amount: "1", Abbreviation: "SUI"},
				"Use All Coin": payload.TextV2{Text: "false"},
			},
			wantAbsent: []string{"Minimum Output Amount"},
		},
		{
			name: "remove liquidity",
			give: defiCall(CetusPackage, "pool_script", "remove_liquidity", pair,
				[][]byte{u64(1), u128(big.NewInt(1_000_000)), u64(500_000_000), u64(1_000_000)},
				first, second, owned, pure(1), pure(2), pure(3), clock),
			wantTitle: "Cetus Remove Liquidity",
			wantFields: map[string]any{
				"Coin B":           payload.TextV2{Text: usdcType},
				"Position":         payload.AddressV2{Address: ownedObject},
				"Liquidity":        payload.Number{Number: "1000000"},
				"Minimum Amount A": payload.AmountV2{Amount: "0.5", Abbreviation: "SUI"},
				"Minimum Amount B": payload.AmountV2{Amount: "1", Abbreviation: "USDC"},
			},
		},
		{
			name: "open position",
			give: defiCall(CetusPackage, "pool_script_v2", "open_position_with_liquidity_by_fix_coin", pair,
				[][]byte{u64(1), u32(uint32(lowerTick)), u32(200), u64(1_000_000_000), u64(2_500_000), boolean(true)},
				first, second, pure(1), pure(2), split, owned, pure(3), pure(4), pure(5), clock),
			wantTitle: "Cetus Open Position With Liquidity",
			wantFields: map[string]any{
				"Lower Tick":   payload.Number{Number: "-100"},
				"Upper Tick":   payload.Number{Number: "200"},
				"Amount A":     payload.AmountV2{Amount: "1", Abbreviation: "SUI"},
				"Amount B":     payload.AmountV2{Amount: "2.5", Abbreviation: "USDC"},
				"Fix Amount A": payload.TextV2{Text: "true"},
			},
		},
		{
			name: "collect reward",
			give: defiCall(CetusPackage, "pool_script_v3", "collect_reward",
				[][]byte{suiTag(), usdcTag(), structTag("0x06864a6f921804860930db6ddbe2e16acdf8504495ea7481637a1c8b9a8fe54b", "cetus", "CETUS")},
				[][]byte{u64(1)},
				first, second, owned, first, split, clock),
			wantTitle: "Cetus Collect Reward (CETUS)",
			wantFields: map[string]any{
				"Reward Coin": payload.TextV2{Text: cetusCoinType},
				"Position":    payload.AddressV2{Address: ownedObject},
			},
		},
		{
			name: "check coin threshold",
			give: defiCall(CetusPackage, "router", "check_coin_threshold", [][]byte{usdcTag()},
				[][]byte{u64(1), u64(2_500_000)},
				split, pure(1)),
			wantTitle: "Cetus Check Coin Threshold 2.5 USDC",
			wantFields: map[string]any{
				"Coin Type": payload.TextV2{Text: usdcType},
			},
		},
		{
			name: "transfer coin to sender",
			give: defiCall(CetusPackage, "utils", "transfer_coin_to_sender", [][]byte{suiTag()},
				[][]byte{u64(1_000_000_000)},
				split),
			wantTitle: "Cetus Transfer to Sender (SUI)",
			wantFields: map[string]any{
				"Coin": payload.AmountV2{Amount: "1", Abbreviation: "SUI"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := decode(t, tt.give, usdcRegistry(t))
			assertCommand(t, p, 1, tt.wantTitle, tt.wantFields)
			_, layout := commandAt(t, p, 1)
			for _, label := range tt.wantAbsent {
				for _, f := range layout.Expanded.Fields {
					assert.NotEqual(t, label, f.Label)
				}
			}
		})
	}
}

func TestDecoder_CetusMalformed(t *testing.T) {
	t.Parallel()

	pair := [][]byte{suiTag(), usdcTag()}
	tests := []struct {
		name      string
		give      []byte
		wantTitle string
	}{
		{
			name: "amount where a flag belongs",
			give: defiCall(CetusPackage, "pool_script_v2", "swap_a2b", pair,
				[][]byte{u64(1), u64(1), u64(1), u128(big.NewInt(1))},
				first, second, split, owned, pure(1), pure(0), pure(2), pure(3), clock),
			wantTitle: CetusPackage + "::pool_script_v2::swap_a2b",
		},
		{
			name: "missing type arguments",
			give: defiCall(CetusPackage, "pool_script", "remove_liquidity", nil,
				[][]byte{u64(1), u128(big.NewInt(1)), u64(1), u64(1)},
				first, second, owned, pure(1), pure(2), pure(3), clock),
			wantTitle: CetusPackage + "::pool_script::remove_liquidity",
		},
		{
			name:      "unknown function",
			give:      defiCall(CetusPackage, "pool_script", "flash_swap", pair, [][]byte{u64(1)}, first),
			wantTitle: CetusPackage + "::pool_script::flash_swap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := decode(t, tt.give, nil)
			_, layout := commandAt(t, p, 1)
			assert.Equal(t, &payload.TextV2{Text: tt.wantTitle}, layout.Title)
			assert.Equal(t, &payload.TextV2{Text: "Move Call"}, layout.Subtitle)
			assert.Equal(t,
				payload.AddressV2{Address: CetusPackage, Name: "Cetus CLMM"},
				expandedField(t, layout, "Package").Value,
			)
		})
	}
}
