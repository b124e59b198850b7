// Package evm decodes unsigned EVM transactions and visualizes their calldata.
package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	chain_selectors "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/utils"
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	PayloadType  = "EthereumTx"
	DefaultTitle = "Ethereum Transaction"
)

var knownContracts = map[common.Address]string{
	Multicall3Address:      "Multicall3",
	UniversalRouterAddress: "Uniswap Universal Router",
}

var _ chain.Decoder = (*Decoder)(nil)

// Decoder decodes EVM transactions.
type Decoder struct {
	dispatcher   *visualizer.Dispatcher
	lggr         logger.Logger
	maxCallDepth int
	extra        []visualizer.Visualizer
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxCallDepth bounds nested call visualization.
func WithMaxCallDepth(depth int) Option {
	return func(d *Decoder) { d.maxCallDepth = depth }
}

// WithVisualizers registers additional integrations after the built-in ones.
func WithVisualizers(v ...visualizer.Visualizer) Option {
	return func(d *Decoder) { d.extra = append(d.extra, v...) }
}

// Visualizers returns the built-in visualizers in registration order.
func Visualizers() []visualizer.Visualizer {
	return []visualizer.Visualizer{
		ERC20Visualizer(),
		Multicall3Visualizer(),
		UniversalRouterVisualizer(),
	}
}

// NewDecoder returns an EVM decoder. It fails when two visualizers claim the same key.
func NewDecoder(lggr logger.Logger, opts ...Option) (*Decoder, error) {
	d := &Decoder{lggr: lggr.Named("evm")}
	for _, opt := range opts {
		opt(d)
	}
	d.dispatcher = visualizer.NewDispatcher(append(Visualizers(), d.extra...), visualizer.WithLogger(d.lggr))
	if err := d.dispatcher.Validate(); err != nil {
		return nil, fmt.Errorf("evm visualizers: %w", err)
	}

	return d, nil
}

// Family implements chain.Decoder.
func (d *Decoder) Family() string { return chain_selectors.FamilyEVM }

// Decode implements chain.Decoder.
func (d *Decoder) Decode(ctx context.Context, req chain.Request) (*payload.SignablePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := DecodeTransaction(req.Raw)
	if err != nil {
		return nil, err
	}

	dispatcher := d.dispatcher
	params := payload.EndorsedParams{
		"access_list":  tx.accessList(),
		"chain_id":     tx.ChainIDString(),
		"gas":          tx.Gas,
		"nonce":        tx.Nonce,
		"signing_hash": tx.SigningHash().Hex(),
		"type":         uint64(tx.Type),
	}
	if req.ContractABI != "" && tx.To != nil {
		v, err := NewABIVisualizer(req.ContractABI, *tx.To, d.dispatcher)
		if err != nil {
			return nil, err
		}
		dispatcher = d.dispatcher.Extend(v)
		params["abi_hash"] = ABIHash(req.ContractABI).Hex()
	}

	chainID := tx.ChainIDString()
	var contract string
	if tx.To != nil {
		contract = tx.To.Hex()
	}
	vctx := visualizer.NewContext(visualizer.ContextParams{
		ChainID:         chainID,
		CurrentContract: contract,
		Calldata:        tx.Data,
		Registry:        req.Registry,
		Dispatcher:      dispatcher,
		MaxCallDepth:    d.maxCallDepth,
	})
	d.lggr.Debugw("decoded transaction", "type", tx.Type, "chainID", chainID, "calldataLen", len(tx.Data))

	network := "Ethereum"
	if chainID != "" {
		network = utils.NetworkName(chain_selectors.FamilyEVM, chainID, "Chain "+chainID)
	}
	p := payload.New(req.Title(DefaultTitle), PayloadType)
	p.Subtitle = network
	p.Append(payload.NewTextField("Network", network))

	if tx.To != nil {
		p.Append(payload.NewAddressField("To", tx.To.Hex(), contractName(vctx, *tx.To)))
	} else {
		p.Append(payload.NewTextField("To", "Contract Creation"))
	}

	fees, err := feeFields(tx)
	if err != nil {
		return nil, err
	}
	p.Append(fees...)

	if len(tx.Data) > 0 {
		ins := visualizer.Instruction{Label: "Input Data", Data: tx.Data}
		if tx.To != nil {
			ins.Key = callKey(*tx.To, tx.Data)
			ins.Program = tx.To.Hex()
		}
		p.Append(dispatcher.Dispatch(vctx, ins)...)
	}

	return chain.Finish(p, req.Raw, params)
}

type feeField struct {
	label string
	wei   *big.Int
}

func feeFields(tx *Transaction) ([]payload.Field, error) {
	value, err := payload.NewAmountField("Value", formatEther(tx.Value), "ETH")
	if err != nil {
		return nil, err
	}
	gas, err := payload.NewNumberField("Gas Limit", fmt.Sprint(tx.Gas), "")
	if err != nil {
		return nil, err
	}
	fields := []payload.Field{value, gas}

	prices := []feeField{{"Gas Price", tx.GasPrice}}
	if tx.Type == types.DynamicFeeTxType {
		prices = []feeField{{"Max Fee Per Gas", tx.GasFeeCap}, {"Max Priority Fee Per Gas", tx.GasTipCap}}
	}
	for _, price := range prices {
		f, err := payload.NewAmountField(price.label, formatEther(price.wei), "ETH")
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	nonce, err := payload.NewNumberField("Nonce", fmt.Sprint(tx.Nonce), "")
	if err != nil {
		return nil, err
	}

	return append(fields, nonce), nil
}

func formatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	return registry.FormatUnits(wei, 18)
}
