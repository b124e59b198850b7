package sui

import (
	"errors"
	"fmt"

	"github.com/block-vision/sui-go-sdk/models"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// DecodeTransaction decodes BCS SenderSignedData or bare TransactionData. Every byte must
// be consumed and every argument must reference an existing input or an earlier command.
func DecodeTransaction(raw []byte) (tx *Transaction, err error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", visualizer.ErrStructuralDecode)
	}
	defer func() {
		if r := recover(); r != nil {
			tx, err = nil, fmt.Errorf("%w: %v", visualizer.ErrStructuralDecode, r)
		}
	}()

	signed, signedErr := decodeSenderSignedData(raw)
	if signedErr == nil {
		return signed, nil
	}
	data, dataErr := decodeBare(raw)
	if dataErr != nil {
		return nil, fmt.Errorf("%w: %w", visualizer.ErrStructuralDecode, errors.Join(signedErr, dataErr))
	}

	return &Transaction{Data: *data}, nil
}

func decodeBare(raw []byte) (*TransactionData, error) {
	r := newBCSReader(raw)
	data, err := r.transactionData()
	if err != nil {
		return nil, fmt.Errorf("transaction data: %w", err)
	}
	if err := r.done(); err != nil {
		return nil, fmt.Errorf("transaction data: %w", err)
	}

	return data, nil
}

func decodeSenderSignedData(raw []byte) (*Transaction, error) {
	r := newBCSReader(raw)
	n, err := r.length()
	if err != nil {
		return nil, fmt.Errorf("sender signed data: %w", err)
	}
	if n != 1 {
		return nil, fmt.Errorf("sender signed data: %d envelopes, want 1", n)
	}
	intent, err := r.fixed(3)
	if err != nil {
		return nil, fmt.Errorf("sender signed data: intent: %w", err)
	}
	// scope TransactionData, version V0, app Sui
	if intent[0] != 0 || intent[1] != 0 || intent[2] != 0 {
		return nil, fmt.Errorf("sender signed data: unsupported intent %x", intent)
	}
	data, err := r.transactionData()
	if err != nil {
		return nil, fmt.Errorf("sender signed data: %w", err)
	}
	count, err := r.length()
	if err != nil {
		return nil, fmt.Errorf("sender signed data: signatures: %w", err)
	}
	sigs := make([][]byte, 0, count)
	for range count {
		sig, err := r.bytes()
		if err != nil {
			return nil, fmt.Errorf("sender signed data: signature: %w", err)
		}
		sigs = append(sigs, sig)
	}
	if err := r.done(); err != nil {
		return nil, fmt.Errorf("sender signed data: %w", err)
	}

	return &Transaction{Data: *data, Signed: true, Signatures: sigs}, nil
}

func (r *bcsReader) done() error {
	if r.remaining() != 0 {
		return fmt.Errorf("%d trailing bytes", r.remaining())
	}

	return nil
}

func (r *bcsReader) transactionData() (*TransactionData, error) {
	version, err := r.uleb()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("unsupported transaction data version %d", version)
	}
	kind, err := r.uleb()
	if err != nil {
		return nil, err
	}
	if kind != 0 {
		return nil, fmt.Errorf("unsupported transaction kind %d", kind)
	}

	var data TransactionData
	if data.Inputs, err = r.inputs(); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if data.Commands, err = r.commands(); err != nil {
		return nil, fmt.Errorf("commands: %w", err)
	}
	if data.Sender, err = r.address(); err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if data.Gas, err = r.gasData(); err != nil {
		return nil, fmt.Errorf("gas data: %w", err)
	}
	if data.Expiration, err = r.expiration(); err != nil {
		return nil, fmt.Errorf("expiration: %w", err)
	}
	if err := data.check(); err != nil {
		return nil, err
	}

	return &data, nil
}

func (r *bcsReader) inputs() ([]CallArg, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([]CallArg, 0, n)
	for range n {
		tag, err := r.variant(1)
		if err != nil {
			return nil, err
		}
		if tag == 0 {
			pure, err := r.bytes()
			if err != nil {
				return nil, err
			}
			out = append(out, CallArg{Pure: pure})

			continue
		}
		obj, err := r.objectArg()
		if err != nil {
			return nil, err
		}
		out = append(out, CallArg{Object: obj})
	}

	return out, nil
}

func (r *bcsReader) objectArg() (*ObjectArg, error) {
	tag, err := r.variant(2)
	if err != nil {
		return nil, err
	}
	obj := &ObjectArg{Kind: ObjectArgKind(tag)}
	if obj.Kind != ObjectShared {
		obj.Ref, err = r.objectRef()

		return obj, err
	}
	if obj.Ref.ObjectID, err = r.address(); err != nil {
		return nil, err
	}
	if obj.Ref.Version, err = r.u64(); err != nil {
		return nil, err
	}
	if obj.Mutable, err = r.bool(); err != nil {
		return nil, err
	}

	return obj, nil
}

func (r *bcsReader) objectRef() (ObjectRef, error) {
	var ref ObjectRef
	var err error
	if ref.ObjectID, err = r.address(); err != nil {
		return ref, err
	}
	if ref.Version, err = r.u64(); err != nil {
		return ref, err
	}
	if ref.Digest, err = r.bytes(); err != nil {
		return ref, err
	}
	if len(ref.Digest) != 32 {
		return ref, fmt.Errorf("object digest of %d bytes", len(ref.Digest))
	}

	return ref, nil
}

func (r *bcsReader) commands() ([]Command, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([]Command, 0, n)
	for i := range n {
		start := r.pos()
		cmd, err := r.command()
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmd.raw = append([]byte(nil), r.buf[start:r.pos()]...)
		out = append(out, cmd)
	}

	return out, nil
}

func (r *bcsReader) command() (Command, error) {
	tag, err := r.variant(uint64(CommandUpgrade))
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: CommandKind(tag)}
	switch cmd.Kind {
	case CommandMoveCall:
		if cmd.Package, err = r.address(); err != nil {
			return cmd, err
		}
		if cmd.Module, err = r.identifier(); err != nil {
			return cmd, err
		}
		if cmd.Function, err = r.identifier(); err != nil {
			return cmd, err
		}
		if cmd.TypeArgs, err = r.typeTags(); err != nil {
			return cmd, err
		}
		cmd.Arguments, err = r.arguments()
	case CommandTransferObjects:
		if cmd.Arguments, err = r.arguments(); err != nil {
			return cmd, err
		}
		cmd.Target, err = r.argument()
	case CommandSplitCoins, CommandMergeCoins:
		if cmd.Target, err = r.argument(); err != nil {
			return cmd, err
		}
		cmd.Arguments, err = r.arguments()
	case CommandPublish:
		if cmd.Modules, err = r.modules(); err != nil {
			return cmd, err
		}
		cmd.Dependencies, err = r.dependencies()
	case CommandMakeMoveVec:
		var some uint64
		if some, err = r.variant(1); err != nil {
			return cmd, err
		}
		if some == 1 {
			var t string
			if t, err = r.typeTag(0); err != nil {
				return cmd, err
			}
			cmd.TypeArgs = []string{t}
		}
		cmd.Arguments, err = r.arguments()
	case CommandUpgrade:
		if cmd.Modules, err = r.modules(); err != nil {
			return cmd, err
		}
		if cmd.Dependencies, err = r.dependencies(); err != nil {
			return cmd, err
		}
		if cmd.Package, err = r.address(); err != nil {
			return cmd, err
		}
		cmd.Target, err = r.argument()
	}

	return cmd, err
}

func (r *bcsReader) typeTags() ([]string, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for range n {
		t, err := r.typeTag(0)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

func (r *bcsReader) modules() ([][]byte, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, n)
	for range n {
		m, err := r.bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, nil
}

func (r *bcsReader) dependencies() ([]models.SuiAddress, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([]models.SuiAddress, 0, n)
	for range n {
		a, err := r.address()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

func (r *bcsReader) arguments() ([]Argument, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([]Argument, 0, n)
	for range n {
		a, err := r.argument()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

func (r *bcsReader) argument() (Argument, error) {
	tag, err := r.variant(uint64(ArgNestedResult))
	if err != nil {
		return Argument{}, err
	}
	a := Argument{Kind: ArgumentKind(tag)}
	if a.Kind == ArgGasCoin {
		return a, nil
	}
	if a.Index, err = r.u16(); err != nil {
		return a, err
	}
	if a.Kind == ArgNestedResult {
		a.Nested, err = r.u16()
	}

	return a, err
}

func (r *bcsReader) gasData() (GasData, error) {
	var gas GasData
	n, err := r.length()
	if err != nil {
		return gas, err
	}
	gas.Payment = make([]ObjectRef, 0, n)
	for range n {
		ref, err := r.objectRef()
		if err != nil {
			return gas, err
		}
		gas.Payment = append(gas.Payment, ref)
	}
	if gas.Owner, err = r.address(); err != nil {
		return gas, err
	}
	if gas.Price, err = r.u64(); err != nil {
		return gas, err
	}
	gas.Budget, err = r.u64()

	return gas, err
}

func (r *bcsReader) expiration() (*uint64, error) {
	tag, err := r.variant(1)
	if err != nil || tag == 0 {
		return nil, err
	}
	epoch, err := r.u64()
	if err != nil {
		return nil, err
	}

	return &epoch, nil
}

// check rejects dangling argument references.
func (d *TransactionData) check() error {
	if len(d.Commands) == 0 {
		return errors.New("transaction has no commands")
	}
	for i, cmd := range d.Commands {
		for _, a := range append([]Argument{cmd.Target}, cmd.Arguments...) {
			switch a.Kind {
			case ArgInput:
				if int(a.Index) >= len(d.Inputs) {
					return fmt.Errorf("command %d references input %d of %d", i, a.Index, len(d.Inputs))
				}
			case ArgResult, ArgNestedResult:
				if int(a.Index) >= i {
					return fmt.Errorf("command %d references result of command %d", i, a.Index)
				}
			}
		}
	}

	return nil
}
