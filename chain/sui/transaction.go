package sui

import (
	"fmt"

	"github.com/block-vision/sui-go-sdk/models"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// ArgumentKind tells where a command argument comes from.
type ArgumentKind uint8

const (
	ArgGasCoin ArgumentKind = iota
	ArgInput
	ArgResult
	ArgNestedResult
)

// Argument references the gas coin, a transaction input or the result of an earlier command.
type Argument struct {
	Kind   ArgumentKind
	Index  uint16
	Nested uint16
}

func (a Argument) String() string {
	switch a.Kind {
	case ArgGasCoin:
		return "Gas Coin"
	case ArgInput:
		return fmt.Sprintf("Input %d", a.Index)
	case ArgResult:
		return fmt.Sprintf("Result %d", a.Index)
	default:
		return fmt.Sprintf("Result %d.%d", a.Index, a.Nested)
	}
}

// ObjectRef is a versioned object reference.
type ObjectRef struct {
	ObjectID models.SuiAddress
	Version  uint64
	Digest   []byte
}

// ObjectArgKind is the ownership of an object input.
type ObjectArgKind uint8

const (
	ObjectImmOrOwned ObjectArgKind = iota
	ObjectShared
	ObjectReceiving
)

// ObjectArg is an object input. For shared objects Ref.Version holds the initial shared
// version and Ref.Digest is empty.
type ObjectArg struct {
	Kind    ObjectArgKind
	Ref     ObjectRef
	Mutable bool
}

// CallArg is a transaction input: either pure BCS bytes or an object.
type CallArg struct {
	Pure   []byte
	Object *ObjectArg
}

// CommandKind is the kind of a programmable transaction command.
type CommandKind uint8

const (
	CommandMoveCall CommandKind = iota
	CommandTransferObjects
	CommandSplitCoins
	CommandMergeCoins
	CommandPublish
	CommandMakeMoveVec
	CommandUpgrade
)

var commandNames = [...]string{
	"MoveCall", "TransferObjects", "SplitCoins", "MergeCoins", "Publish", "MakeMoveVec", "Upgrade",
}

func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}

	return fmt.Sprintf("Command(%d)", uint8(k))
}

// Command is one programmable transaction command.
type Command struct {
	Kind CommandKind
	// Package is the called package of MoveCall and the upgraded package of Upgrade.
	Package  models.SuiAddress
	Module   string
	Function string
	TypeArgs []string
	// Target is the recipient of TransferObjects, the coin of SplitCoins and MergeCoins
	// and the ticket of Upgrade.
	Target Argument
	// Arguments are the call arguments, transferred objects, split amounts, merged coins
	// or vector elements.
	Arguments    []Argument
	Modules      [][]byte
	Dependencies []models.SuiAddress

	raw []byte
}

// GasData is the gas configuration of a transaction.
type GasData struct {
	Payment []ObjectRef
	Owner   models.SuiAddress
	Price   uint64
	Budget  uint64
}

// TransactionData is a version 1 programmable transaction.
type TransactionData struct {
	Inputs   []CallArg
	Commands []Command
	Sender   models.SuiAddress
	Gas      GasData
	// Expiration is the last epoch the transaction is valid in, nil when it does not expire.
	Expiration *uint64
}

// Transaction is decoded TransactionData, with the signatures of a SenderSignedData
// envelope when one was present.
type Transaction struct {
	Data       TransactionData
	Signed     bool
	Signatures [][]byte
}

// CommandPackage is the key package of built-in commands.
const CommandPackage = "ptb"

// CommandKey returns the dispatch key of a built-in command kind.
func CommandKey(kind CommandKind) visualizer.Key {
	return visualizer.NewKey(CommandPackage, "", kind.String())
}

// Instructions returns one dispatchable instruction per command. Arguments are resolved
// against the inputs and earlier commands into Values:
//   - MoveCall and MakeMoveVec: the arguments in order
//   - TransferObjects: the recipient, then the objects
//   - SplitCoins: the coin, then the amounts
//   - MergeCoins: the destination, then the merged coins
//   - Publish: the modules ([][]byte) and dependencies ([]models.SuiAddress)
//   - Upgrade: the ticket, the modules and the dependencies
func Instructions(tx *Transaction) []visualizer.Instruction {
	out := make([]visualizer.Instruction, len(tx.Data.Commands))
	for i, cmd := range tx.Data.Commands {
		ins := visualizer.Instruction{
			Key:      CommandKey(cmd.Kind),
			Index:    i,
			Label:    fmt.Sprintf("Command %d", i+1),
			Data:     cmd.raw,
			TypeArgs: cmd.TypeArgs,
		}
		values := tx.resolveAll(cmd.Arguments)
		switch cmd.Kind {
		case CommandMoveCall:
			ins.Key = visualizer.NewKey(ShortAddress(cmd.Package), cmd.Module, cmd.Function)
			ins.Program = string(cmd.Package)
			ins.Args = values
		case CommandTransferObjects, CommandSplitCoins, CommandMergeCoins:
			ins.Args = append([]any{tx.resolve(cmd.Target)}, values...)
		case CommandMakeMoveVec:
			ins.Args = values
		case CommandPublish:
			ins.Args = []any{cmd.Modules, cmd.Dependencies}
		case CommandUpgrade:
			ins.Program = string(cmd.Package)
			ins.Args = []any{tx.resolve(cmd.Target), cmd.Modules, cmd.Dependencies}
		}
		out[i] = ins
	}

	return out
}

func (tx *Transaction) resolveAll(args []Argument) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = tx.resolve(a)
	}

	return out
}

// resolve follows a to its input or producing command. Decoding guarantees inputs exist
// and results only reference earlier commands.
func (tx *Transaction) resolve(a Argument) Value {
	v := Value{Argument: a}
	switch a.Kind {
	case ArgInput:
		v.Input = &tx.Data.Inputs[a.Index]
	case ArgResult, ArgNestedResult:
		cmd := tx.Data.Commands[a.Index]
		if cmd.Kind != CommandSplitCoins {
			return v
		}
		amount := -1
		switch {
		case a.Kind == ArgResult && len(cmd.Arguments) == 1:
			amount = 0
		case a.Kind == ArgNestedResult && int(a.Nested) < len(cmd.Arguments):
			amount = int(a.Nested)
		}
		if amount >= 0 {
			v.Split = &Split{Coin: tx.resolve(cmd.Target), Amount: tx.resolve(cmd.Arguments[amount])}
		}
	}

	return v
}
