package verify

// OpGenConfig configures the operation generator. Rates are percentages;
// whatever the explicit rates leave over goes to iterate.
type OpGenConfig struct {
	InsertRate      int
	RemoveRate      int
	RemoveStaleRate int
	GetRate         int
	GetRawRate      int
	DeleteRate      int
	RetainRate      int
	DrainFilterRate int
	ReserveRate     int
	ParseKeyRate    int
	DeleteAllRate   int
	ClearRate       int
}

// DefaultOpGenConfig favors inserts and removals so slots churn and free
// runs form, with occasional bulk operations.
func DefaultOpGenConfig() OpGenConfig {
	return OpGenConfig{
		InsertRate:      34,
		RemoveRate:      22,
		RemoveStaleRate: 5,
		GetRate:         8,
		GetRawRate:      5,
		DeleteRate:      6,
		RetainRate:      3,
		DrainFilterRate: 3,
		ReserveRate:     3,
		ParseKeyRate:    4,
		DeleteAllRate:   1,
		ClearRate:       1,
	}
}

// OpGenerator generates deterministic operations from a byte stream.
type OpGenerator struct {
	stream    *opStream
	config    OpGenConfig
	nextValue int
}

// NewOpGenerator creates a generator over fuzzBytes.
func NewOpGenerator(fuzzBytes []byte, cfg OpGenConfig) *OpGenerator {
	return &OpGenerator{stream: newOpStream(fuzzBytes), config: cfg}
}

// HasMore reports whether more operations can be generated.
func (g *OpGenerator) HasMore() bool {
	return !g.stream.drained()
}

// NextOp generates the next operation. Inserted values are unique and
// increasing, so drained or iterated values identify their insert.
func (g *OpGenerator) NextOp() Op {
	choice := g.stream.percent()

	rates := []struct {
		rate int
		kind OpKind
	}{
		{g.config.InsertRate, OpInsert},
		{g.config.RemoveRate, OpRemove},
		{g.config.RemoveStaleRate, OpRemoveStale},
		{g.config.GetRate, OpGet},
		{g.config.GetRawRate, OpGetRaw},
		{g.config.DeleteRate, OpDelete},
		{g.config.RetainRate, OpRetain},
		{g.config.DrainFilterRate, OpDrainFilter},
		{g.config.ReserveRate, OpReserve},
		{g.config.ParseKeyRate, OpParseKey},
		{g.config.DeleteAllRate, OpDeleteAll},
		{g.config.ClearRate, OpClear},
	}

	kind := OpIterate
	cumulative := 0

	for _, r := range rates {
		cumulative += r.rate
		if choice < cumulative {
			kind = r.kind

			break
		}
	}

	op := Op{Kind: kind}

	switch kind {
	case OpInsert:
		g.nextValue++
		op.Value = g.nextValue
	case OpRemove, OpRemoveStale, OpGet, OpDelete, OpGetRaw, OpParseKey:
		op.Pick = g.stream.pick()
	case OpRetain:
		op.Mod = g.stream.modulus()
	case OpDrainFilter:
		op.Mod = g.stream.modulus()
		op.Stop = g.stream.below(8)
	case OpReserve:
		op.Value = g.stream.below(64)
	case OpIterate, OpDeleteAll, OpClear:
	}

	return op
}
