// Package sui decodes Sui programmable transactions from BCS TransactionData or
// SenderSignedData and visualizes their commands.
package sui

import (
	"context"
	"fmt"
	"strconv"

	chain_selectors "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/utils"
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	PayloadType  = "Sui"
	DefaultTitle = "Sui Transaction"

	transactionType = "Programmable Transaction"
)

var _ chain.Decoder = (*Decoder)(nil)

// Decoder decodes Sui transactions.
type Decoder struct {
	dispatcher *visualizer.Dispatcher
	lggr       logger.Logger
	network    string
	extra      []visualizer.Visualizer
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithNetwork selects the network shown by its chain-selectors name, e.g.
// chain_selectors.SUI_TESTNET.Name.
func WithNetwork(name string) Option {
	return func(d *Decoder) { d.network = utils.DisplayName(name) }
}

// WithVisualizers registers additional Move call integrations after the built-in ones.
func WithVisualizers(v ...visualizer.Visualizer) Option {
	return func(d *Decoder) { d.extra = append(d.extra, v...) }
}

// NewDecoder returns a Sui decoder. It fails when two visualizers claim the same key.
func NewDecoder(lggr logger.Logger, opts ...Option) (*Decoder, error) {
	d := &Decoder{
		lggr:    lggr.Named("sui"),
		network: utils.DisplayName(chain_selectors.SUI_MAINNET.Name),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.dispatcher = visualizer.NewDispatcher(append(Visualizers(), d.extra...),
		visualizer.WithLogger(d.lggr),
		visualizer.WithFallback(UnknownCommandField),
	)
	if err := d.dispatcher.Validate(); err != nil {
		return nil, fmt.Errorf("sui visualizers: %w", err)
	}

	return d, nil
}

// Family implements chain.Decoder.
func (d *Decoder) Family() string { return chain_selectors.FamilySui }

// Decode implements chain.Decoder.
func (d *Decoder) Decode(ctx context.Context, req chain.Request) (*payload.SignablePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := DecodeTransaction(req.Raw)
	if err != nil {
		return nil, err
	}
	d.lggr.Debugw("decoded transaction", "signed", tx.Signed, "inputs", len(tx.Data.Inputs), "commands", len(tx.Data.Commands))

	vctx := visualizer.NewContext(visualizer.ContextParams{
		ChainID:    registry.ChainIDSui,
		Sender:     string(tx.Data.Sender),
		Registry:   req.Registry,
		Dispatcher: d.dispatcher,
	})

	details, err := transactionDetails(tx.Data)
	if err != nil {
		return nil, err
	}
	p := payload.New(req.Title(DefaultTitle), PayloadType)
	p.Subtitle = d.network
	p.Append(
		payload.NewTextField("Network", d.network),
		payload.NewAddressField("Sender", string(tx.Data.Sender), ""),
		details,
	)
	p.Append(d.dispatcher.DispatchAll(vctx, Instructions(tx))...)

	return chain.Finish(p, req.Raw, endorsedParams(tx.Data))
}

// transactionDetails summarizes the transaction kind and its gas configuration.
func transactionDetails(data TransactionData) (payload.Field, error) {
	kind := payload.NewTextField("Transaction Type", transactionType)
	budget, err := mistField("Gas Budget", data.Gas.Budget)
	if err != nil {
		return payload.Field{}, err
	}
	price, err := mistField("Gas Price", data.Gas.Price)
	if err != nil {
		return payload.Field{}, err
	}
	expiration := "None"
	if data.Expiration != nil {
		expiration = "Epoch " + strconv.FormatUint(*data.Expiration, 10)
	}

	const title = "Transaction Details"

	return payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     title,
		Fallback:  title,
		Title:     title,
		Subtitle:  fmt.Sprintf("Gas: %d MIST", data.Gas.Budget),
		Condensed: []payload.Field{kind, budget},
		Expanded: []payload.Field{
			kind,
			payload.NewAddressField("Gas Owner", string(data.Gas.Owner), ""),
			budget,
			price,
			payload.NewTextField("Expiration", expiration),
		},
	}), nil
}

// endorsedParams binds the gas payment objects and the expiration.
func endorsedParams(data TransactionData) payload.EndorsedParams {
	payment := make([]any, 0, len(data.Gas.Payment))
	for _, ref := range data.Gas.Payment {
		payment = append(payment, map[string]any{
			"digest":    ref.Digest,
			"object_id": string(ref.ObjectID),
			"version":   ref.Version,
		})
	}
	var expiration any
	if data.Expiration != nil {
		expiration = *data.Expiration
	}

	return payload.EndorsedParams{
		"expiration":  expiration,
		"gas_payment": payment,
	}
}
