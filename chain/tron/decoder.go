// Package tron decodes Tron protobuf transactions and visualizes their contracts.
package tron

import (
	"context"
	"fmt"
	"time"

	"github.com/fbsobreira/gotron-sdk/pkg/proto/core"
	chain_selectors "github.com/smartcontractkit/chain-selectors"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/utils"
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	PayloadType  = "TronTx"
	DefaultTitle = "Tron Transaction"
)

var _ chain.Decoder = (*Decoder)(nil)

// Decoder decodes Tron transactions.
type Decoder struct {
	dispatcher *visualizer.Dispatcher
	lggr       logger.Logger
	network    string
	extra      []visualizer.Visualizer
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithNetwork selects the network shown by its chain-selectors name, e.g.
// chain_selectors.TRON_TESTNET_NILE.Name.
func WithNetwork(name string) Option {
	return func(d *Decoder) { d.network = utils.DisplayName(name) }
}

// WithVisualizers registers additional contract visualizers after the built-in ones.
func WithVisualizers(v ...visualizer.Visualizer) Option {
	return func(d *Decoder) { d.extra = append(d.extra, v...) }
}

// NewDecoder returns a Tron decoder. It fails when two visualizers claim the same key.
func NewDecoder(lggr logger.Logger, opts ...Option) (*Decoder, error) {
	d := &Decoder{
		lggr:    lggr.Named("tron"),
		network: utils.DisplayName(chain_selectors.TRON_MAINNET.Name),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.dispatcher = visualizer.NewDispatcher(append(Visualizers(), d.extra...),
		visualizer.WithLogger(d.lggr),
		visualizer.WithFallback(UnknownContractField),
	)
	if err := d.dispatcher.Validate(); err != nil {
		return nil, fmt.Errorf("tron visualizers: %w", err)
	}

	return d, nil
}

// Family implements chain.Decoder.
func (d *Decoder) Family() string { return chain_selectors.FamilyTron }

// Decode implements chain.Decoder.
func (d *Decoder) Decode(ctx context.Context, req chain.Request) (*payload.SignablePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := DecodeTransaction(req.Raw)
	if err != nil {
		return nil, err
	}
	raw := tx.Raw
	d.lggr.Debugw("decoded transaction", "signed", tx.Signed, "contracts", len(raw.GetContract()))

	owner := ownerOf(raw.GetContract()[0])
	vctx := visualizer.NewContext(visualizer.ContextParams{
		ChainID:    registry.ChainIDTron,
		Sender:     owner,
		Registry:   req.Registry,
		Dispatcher: d.dispatcher,
	})

	feeLimit, err := trxAmountField("Fee Limit", raw.GetFeeLimit())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", visualizer.ErrStructuralDecode, err)
	}

	p := payload.New(req.Title(DefaultTitle), PayloadType)
	p.Subtitle = d.network
	p.Append(payload.NewTextField("Network", d.network))
	if owner != "" {
		p.Append(payload.NewAddressField("Owner", owner, ""))
	}
	p.Append(
		payload.NewTextField("Timestamp", formatMillis(raw.GetTimestamp())),
		payload.NewTextField("Expiration", formatMillis(raw.GetExpiration())),
		feeLimit,
	)
	if memo := raw.GetData(); len(memo) > 0 {
		p.Append(payload.NewTextField("Memo", displayBytes(memo)))
	}
	p.Append(d.dispatcher.DispatchAll(vctx, Instructions(tx))...)

	return chain.Finish(p, req.Raw, payload.EndorsedParams{
		"ref_block_bytes": raw.GetRefBlockBytes(),
		"ref_block_hash":  raw.GetRefBlockHash(),
		"ref_block_num":   raw.GetRefBlockNum(),
		"permission_ids":  permissionIDs(tx),
	})
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "None"
	}

	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func permissionIDs(tx *Transaction) []any {
	out := make([]any, 0, len(tx.Raw.GetContract()))
	for _, c := range tx.Raw.GetContract() {
		out = append(out, c.GetPermissionId())
	}

	return out
}

// ownerOf returns the owner_address of a contract parameter, which every system contract
// message carries.
func ownerOf(c *core.Transaction_Contract) string {
	msg, err := c.GetParameter().UnmarshalNew()
	if err != nil {
		return ""
	}
	m := msg.ProtoReflect()
	fd := m.Descriptor().Fields().ByName("owner_address")
	if fd == nil || fd.Kind() != protoreflect.BytesKind {
		return ""
	}
	owner, err := EncodeAddress(m.Get(fd).Bytes())
	if err != nil {
		return ""
	}

	return owner
}
