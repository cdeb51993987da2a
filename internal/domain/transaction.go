package domain

import "fmt"

// Instruction describes a single Move call. Serialization into ledger wire
// format is owned by the ledger adapter, not by anything that builds
// instructions.
type Instruction struct {
	Target   string // package::module::function
	TypeArgs []string
	Args     []any
}

// Transaction is an ordered list of instructions executed atomically.
type Transaction struct {
	Instructions []*Instruction
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

func (t *Transaction) Add(instructions ...*Instruction) {
	t.Instructions = append(t.Instructions, instructions...)
}

// ExecutionResult is what the ledger reports after a submitted transaction
// executed, successfully or not.
type ExecutionResult struct {
	Digest string
	Status string // "success" or "failure"
	Error  string // ledger-reported failure detail, "" on success
}

func (r *ExecutionResult) Succeeded() bool {
	return r.Status == "success"
}

func (i *Instruction) String() string {
	return fmt.Sprintf("%s(%d args)", i.Target, len(i.Args))
}
