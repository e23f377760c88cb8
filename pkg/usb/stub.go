package usb

import (
	"context"
	"sync"
	"time"
)

// Stub is an in-memory Transport for tests. It records every write,
// serves queued input reports, and tracks how many operations are in
// flight at once so tests can prove the facade never overlaps two
// transfers.
type Stub struct {
	mu       sync.Mutex
	reports  [][]byte
	written  [][]byte
	bulk     [][]byte
	inflight int
	peak     int
	closed   bool

	// OpDelay stretches every operation to widen the window in which
	// an overlap would be observable.
	OpDelay time.Duration

	// NoBulk makes the stub behave like the HID shim.
	NoBulk bool

	// ReadErr, WriteErr, BulkErr override the result of the next
	// matching operation when non-nil.
	ReadErr  error
	WriteErr error
	BulkErr  error
}

func NewStub() *Stub { return &Stub{} }

// QueueReport appends an input report for a later ReadReport.
func (s *Stub) QueueReport(report []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, append([]byte(nil), report...))
}

// Written returns the report writes captured so far.
func (s *Stub) Written() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.written...)
}

// BulkWritten returns the bulk writes captured so far.
func (s *Stub) BulkWritten() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.bulk...)
}

// PeakInflight reports the highest number of simultaneously running
// operations observed.
func (s *Stub) PeakInflight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

func (s *Stub) enter() {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.peak {
		s.peak = s.inflight
	}
	d := s.OpDelay
	s.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}

func (s *Stub) exit() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *Stub) ReadReport(ctx context.Context) ([]byte, error) {
	s.enter()
	defer s.exit()

	s.mu.Lock()
	if err := s.ReadErr; err != nil {
		s.ReadErr = nil
		s.mu.Unlock()
		return nil, err
	}
	if len(s.reports) == 0 {
		s.mu.Unlock()
		// No report pending: behave like an interrupt read that ran
		// out its deadline.
		<-ctx.Done()
		return nil, ErrTimeout
	}
	report := s.reports[0]
	s.reports = s.reports[1:]
	s.mu.Unlock()
	return report, nil
}

func (s *Stub) WriteReport(_ context.Context, data []byte) error {
	s.enter()
	defer s.exit()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.WriteErr; err != nil {
		s.WriteErr = nil
		return err
	}
	s.written = append(s.written, append([]byte(nil), data...))
	return nil
}

func (s *Stub) WriteBulk(_ context.Context, data []byte) error {
	if s.NoBulk {
		return ErrNoBulk
	}
	s.enter()
	defer s.exit()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.BulkErr; err != nil {
		s.BulkErr = nil
		return err
	}
	s.bulk = append(s.bulk, append([]byte(nil), data...))
	return nil
}

func (s *Stub) BulkAvailable() bool { return !s.NoBulk }

func (s *Stub) MaxBulkSize() int {
	if s.NoBulk {
		return 0
	}
	return maxBulkTransfer
}

func (s *Stub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
