// Package solana decodes Solana legacy and v0 transactions and visualizes their
// instructions, one preview layout per instruction.
package solana

import (
	"context"
	"fmt"

	chain_selectors "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/utils"
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	PayloadType  = "SolanaTx"
	DefaultTitle = "Solana Transaction"

	// MainnetGenesisHash is the chain-selectors chain id of Solana mainnet.
	MainnetGenesisHash = "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d"
)

var _ chain.Decoder = (*Decoder)(nil)

// Decoder decodes Solana transactions.
type Decoder struct {
	dispatcher  *visualizer.Dispatcher
	lggr        logger.Logger
	genesisHash string
	extra       []visualizer.Visualizer
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithGenesisHash selects the cluster shown as the network.
func WithGenesisHash(hash string) Option {
	return func(d *Decoder) { d.genesisHash = hash }
}

// WithVisualizers registers additional program integrations after the built-in ones.
func WithVisualizers(v ...visualizer.Visualizer) Option {
	return func(d *Decoder) { d.extra = append(d.extra, v...) }
}

// Visualizers returns the built-in visualizers in registration order.
func Visualizers() []visualizer.Visualizer {
	return []visualizer.Visualizer{
		SystemVisualizer(),
		ComputeBudgetVisualizer(),
		TokenVisualizer(),
		AssociatedTokenAccountVisualizer(),
		MemoVisualizer(),
		JupiterVisualizer(),
		StakePoolVisualizer(),
	}
}

// NewDecoder returns a Solana decoder. It fails when two visualizers claim the same key.
func NewDecoder(lggr logger.Logger, opts ...Option) (*Decoder, error) {
	d := &Decoder{lggr: lggr.Named("solana"), genesisHash: MainnetGenesisHash}
	for _, opt := range opts {
		opt(d)
	}
	d.dispatcher = visualizer.NewDispatcher(append(Visualizers(), d.extra...),
		visualizer.WithLogger(d.lggr),
		visualizer.WithFallback(UnknownProgramField),
	)
	if err := d.dispatcher.Validate(); err != nil {
		return nil, fmt.Errorf("solana visualizers: %w", err)
	}

	return d, nil
}

// Family implements chain.Decoder.
func (d *Decoder) Family() string { return chain_selectors.FamilySolana }

// Decode implements chain.Decoder.
func (d *Decoder) Decode(ctx context.Context, req chain.Request) (*payload.SignablePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg, err := DecodeMessage(req.Raw)
	if err != nil {
		return nil, err
	}
	instructions := Instructions(msg)
	feePayer := msg.AccountKeys[0].String()
	d.lggr.Debugw("decoded message", "version", messageVersion(msg), "instructions", len(instructions))

	vctx := visualizer.NewContext(visualizer.ContextParams{
		ChainID:    registry.ChainIDSolana,
		Sender:     feePayer,
		Registry:   req.Registry,
		Dispatcher: d.dispatcher,
	})

	network := utils.NetworkName(chain_selectors.FamilySolana, d.genesisHash, "Solana")
	p := payload.New(req.Title(DefaultTitle), PayloadType)
	p.Subtitle = network
	p.Append(
		payload.NewTextField("Network", network),
		payload.NewAddressField("Fee Payer", feePayer, ""),
	)
	p.Append(d.dispatcher.DispatchAll(vctx, instructions)...)

	return chain.Finish(p, req.Raw, endorsedParams(msg))
}
