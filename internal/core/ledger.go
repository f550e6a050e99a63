package core

// State is the observable state of a ledger.
type State int

const (
	Empty State = iota
	NonEmpty
)

func (s State) String() string {
	if s == NonEmpty {
		return "non_empty"
	}
	return "empty"
}

// Ledger is the ordered list of transactions recorded in one session.
// Insertion order is display order; entries are only ever appended.
//
// A Ledger is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access themselves.
type Ledger struct {
	txs   []Transaction
	total int64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add validates the raw input, appends the transaction and returns the new
// transaction count. On error the ledger is left untouched.
func (l *Ledger) Add(title, category, amountText string) (int, error) {
	n, _, err := l.Record(title, category, amountText)
	return n, err
}

// Record is Add that also returns the appended transaction. An amount that
// would take the ledger total past the largest amount is ErrTotalOverflow,
// which keeps every aggregate representable.
func (l *Ledger) Record(title, category, amountText string) (int, Transaction, error) {
	t, err := NewTransaction(title, category, amountText)
	if err != nil {
		return len(l.txs), Transaction{}, err
	}
	total, ok := AddAmounts(l.total, t.Amount)
	if !ok {
		return len(l.txs), Transaction{}, ErrTotalOverflow
	}
	l.txs = append(l.txs, t)
	l.total = total
	return len(l.txs), t, nil
}

// Len returns the number of recorded transactions.
func (l *Ledger) Len() int {
	return len(l.txs)
}

// At returns the i-th transaction (0-based).
func (l *Ledger) At(i int) (Transaction, bool) {
	if i < 0 || i >= len(l.txs) {
		return Transaction{}, false
	}
	return l.txs[i], true
}

// Transactions returns a copy of the recorded transactions in insertion order.
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

func (l *Ledger) State() State {
	if len(l.txs) == 0 {
		return Empty
	}
	return NonEmpty
}

// AggregateByCategory sums amounts per category in first-seen order.
func (l *Ledger) AggregateByCategory() ([]CategoryTotal, error) {
	return Aggregate(l.txs)
}
