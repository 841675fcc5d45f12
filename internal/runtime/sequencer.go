package runtime

// sequencer releases prediction results in the order their sessions
// completed, regardless of the order in which the predictions resolve.
type sequencer struct {
	next    uint64
	head    uint64
	settled map[uint64]outcome
}

type outcome struct {
	text string
	ok   bool
}

func newSequencer() *sequencer {
	return &sequencer{settled: make(map[uint64]outcome)}
}

// reserve allocates the slot for a newly completed session.
func (s *sequencer) reserve() uint64 {
	seq := s.next
	s.next++
	return seq
}

// settle records the outcome of seq and returns the texts that are now
// releasable, in session order. Failed slots release nothing but unblock
// the ones behind them.
func (s *sequencer) settle(seq uint64, text string, ok bool) []string {
	if seq < s.head {
		return nil
	}
	s.settled[seq] = outcome{text: text, ok: ok}

	var out []string
	for {
		o, found := s.settled[s.head]
		if !found {
			return out
		}
		delete(s.settled, s.head)
		s.head++
		if o.ok {
			out = append(out, o.text)
		}
	}
}

// waiting returns the number of reserved slots not yet released.
func (s *sequencer) waiting() int {
	return int(s.next - s.head)
}
