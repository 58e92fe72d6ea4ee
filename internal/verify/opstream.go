package verify

import "math/rand/v2"

// opStream decodes operation choices and arguments from raw input.
//
// Every draw consumes a fixed number of bytes and a drained stream yields
// zeros, so one input always decodes to one operation sequence. Zeros decode
// to inserts, so a short fuzz input still fills the arena.
type opStream struct {
	data []byte
	pos  int
}

func newOpStream(data []byte) *opStream {
	return &opStream{data: data}
}

func (s *opStream) drained() bool {
	return s.pos >= len(s.data)
}

func (s *opStream) take() byte {
	if s.drained() {
		return 0
	}

	b := s.data[s.pos]
	s.pos++

	return b
}

// percent picks the operation kind against the generator's rate table.
func (s *opStream) percent() int {
	return int(s.take()) % 100
}

// pick selects a tracked key or a raw slot index. The harness reduces it
// modulo the key pool or the slot count.
func (s *opStream) pick() int {
	lo := s.take()
	hi := s.take()

	return int(lo) | int(hi)<<8
}

// below returns a value in [0, n).
func (s *opStream) below(n int) int {
	if n <= 0 {
		return 0
	}

	return s.pick() % n
}

// modulus is the divisor retain and drain-filter predicates match on.
func (s *opStream) modulus() int {
	return 2 + s.below(5)
}

// SeededBytes returns n pseudo-random bytes for the operation generator. The
// same seed always yields the same bytes.
func SeededBytes(seed uint64, n int) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]byte, n)
	for i := range out {
		out[i] = byte(rng.UintN(256))
	}

	return out
}
