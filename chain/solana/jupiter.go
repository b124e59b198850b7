package solana

import (
	"encoding/hex"
	"fmt"
	"maps"
	"math/big"
	"slices"

	bin "github.com/gagliardetto/binary"
	sollib "github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// jupiterRoute describes where a route instruction keeps its accounts. Indexes of -1 mean
// the instruction does not name the account.
type jupiterRoute struct {
	name       string
	exactOut   bool
	authority  int
	sourceMint int
	destMint   int
}

// jupiterRoutes are keyed by the Anchor discriminator of each instruction.
var jupiterRoutes = map[string]jupiterRoute{
	"e517cb977ae3ad2a": {name: "Route", authority: 1, sourceMint: -1, destMint: 5},
	"c1209b3341d69c81": {name: "Shared Accounts Route", authority: 2, sourceMint: 7, destMint: 8},
	"d033ef977b2bed5c": {name: "Exact Out Route", exactOut: true, authority: 1, sourceMint: 5, destMint: 6},
	"b0d169a89a7d453e": {name: "Shared Accounts Exact Out Route", exactOut: true, authority: 2, sourceMint: 7, destMint: 8},
}

// jupiterTailLen is the size of the fixed arguments following the route plan: two u64
// amounts, the slippage in basis points (u16) and the platform fee in basis points (u8).
const jupiterTailLen = 8 + 8 + 2 + 1

// JupiterVisualizer renders Jupiter v6 swaps. The route plan is variable length, so the
// amounts are read from the fixed arguments at the end of the instruction data.
func JupiterVisualizer() visualizer.Visualizer {
	keys := programKeys(JupiterProgramID, slices.Sorted(maps.Keys(jupiterRoutes))...)

	return visualizer.New("solana-jupiter", keys, visualizeJupiter)
}

type jupiterSwap struct {
	amount      uint64
	quoted      uint64
	slippageBps uint16
	platformBps uint8
}

func decodeJupiterSwap(data []byte) (jupiterSwap, error) {
	if len(data) < 8+jupiterTailLen {
		return jupiterSwap{}, fmt.Errorf("%w: jupiter route arguments", visualizer.ErrMissingData)
	}
	dec := bin.NewBinDecoder(data[len(data)-jupiterTailLen:])

	var (
		s   jupiterSwap
		err error
	)
	if s.amount, err = dec.ReadUint64(bin.LE); err != nil {
		return s, err
	}
	if s.quoted, err = dec.ReadUint64(bin.LE); err != nil {
		return s, err
	}
	if s.slippageBps, err = dec.ReadUint16(bin.LE); err != nil {
		return s, err
	}
	s.platformBps, err = dec.ReadUint8()

	return s, err
}

func visualizeJupiter(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if len(ins.Data) < 8 {
		return nil, fmt.Errorf("%w: jupiter discriminator", visualizer.ErrMissingData)
	}
	route, ok := jupiterRoutes[hex.EncodeToString(ins.Data[:8])]
	if !ok {
		return nil, fmt.Errorf("%w: unknown jupiter instruction %x", visualizer.ErrMissingData, ins.Data[:8])
	}
	swap, err := decodeJupiterSwap(ins.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", visualizer.ErrMissingData, err)
	}
	user, err := accountField(ins, "User", route.authority)
	if err != nil {
		return nil, err
	}
	sourceMint, err := optionalAccount(ins, route.sourceMint)
	if err != nil {
		return nil, err
	}
	destMint, err := optionalAccount(ins, route.destMint)
	if err != nil {
		return nil, err
	}

	fields := []payload.Field{user}
	if sourceMint != "" {
		fields = append(fields, mintField(ctx, "Input Token", sourceMint))
	}
	if destMint != "" {
		fields = append(fields, mintField(ctx, "Output Token", destMint))
	}

	var summary string
	if route.exactOut {
		out, err := swapAmountField(ctx, "Output Amount", destMint, swap.amount)
		if err != nil {
			return nil, err
		}
		quoted, err := swapAmountField(ctx, "Quoted Input Amount", sourceMint, swap.quoted)
		if err != nil {
			return nil, err
		}
		limit, err := swapAmountField(ctx, "Maximum Input Amount", sourceMint, withSlippage(swap.quoted, swap.slippageBps, true))
		if err != nil {
			return nil, err
		}
		fields = append(fields, out, quoted, limit)
		summary = fmt.Sprintf("Swap at most %s for %s", limit.FallbackText, out.FallbackText)
	} else {
		in, err := swapAmountField(ctx, "Input Amount", sourceMint, swap.amount)
		if err != nil {
			return nil, err
		}
		quoted, err := swapAmountField(ctx, "Quoted Output Amount", destMint, swap.quoted)
		if err != nil {
			return nil, err
		}
		limit, err := swapAmountField(ctx, "Minimum Output Amount", destMint, withSlippage(swap.quoted, swap.slippageBps, false))
		if err != nil {
			return nil, err
		}
		fields = append(fields, in, quoted, limit)
		summary = fmt.Sprintf("Swap %s for at least %s", in.FallbackText, limit.FallbackText)
	}

	slippage, err := payload.NewNumberField("Slippage", fmt.Sprint(swap.slippageBps), "bps")
	if err != nil {
		return nil, err
	}
	fields = append(fields, slippage)
	if swap.platformBps > 0 {
		fee, err := payload.NewNumberField("Platform Fee", fmt.Sprint(swap.platformBps), "bps")
		if err != nil {
			return nil, err
		}
		fields = append(fields, fee)
	}
	fields = append(fields, payload.NewTextField("Route", route.name))

	return instructionLayout(ins, "Jupiter "+summary, fields...), nil
}

// withSlippage applies bps to quoted, rounding toward the user's worst case: down for a
// minimum output, up for a maximum input.
func withSlippage(quoted uint64, bps uint16, up bool) uint64 {
	q := new(big.Int).SetUint64(quoted)
	denom := big.NewInt(10_000)
	if up {
		q.Mul(q, big.NewInt(10_000+int64(bps)))
		q.Add(q, big.NewInt(9_999))
	} else {
		q.Mul(q, big.NewInt(10_000-min(int64(bps), 10_000)))
	}
	q.Quo(q, denom)
	if !q.IsUint64() {
		return ^uint64(0)
	}

	return q.Uint64()
}

// optionalAccount returns the account at i, or "" when i is -1.
func optionalAccount(ins visualizer.Instruction, i int) (string, error) {
	if i < 0 {
		return "", nil
	}

	return visualizer.AccountAt(i).Get(ins)
}

func mintField(ctx *visualizer.Context, label, mint string) payload.Field {
	if mint == sollib.SolMint.String() {
		return payload.NewAddressField(label, mint, "SOL")
	}
	if md, ok := ctx.Registry.Lookup(ctx.ChainID, mint); ok {
		return payload.NewAddressField(label, mint, md.Symbol)
	}

	return payload.NewAddressField(label, mint, "")
}

// swapAmountField formats amount of mint: SOL for the wrapped SOL mint, registry units for a
// known mint and raw units otherwise.
func swapAmountField(ctx *visualizer.Context, label, mint string, amount uint64) (payload.Field, error) {
	if mint == sollib.SolMint.String() {
		return payload.NewAmountField(label, formatSOL(amount), "SOL")
	}
	raw := new(big.Int).SetUint64(amount)
	if mint == "" {
		return payload.NewAmountField(label, raw.String(), "units")
	}

	return ctx.TokenAmountField(label, mint, raw, "units")
}
