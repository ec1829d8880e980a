package board

import (
	"bytes"
	"sync"
)

// BufferSerial is a Serial endpoint fed from a queue that records everything transmitted.
// It is safe for concurrent use.
type BufferSerial struct {
	mu     sync.Mutex
	input  []byte
	output bytes.Buffer
}

func NewBufferSerial() *BufferSerial {
	return &BufferSerial{}
}

// Send queues bytes for the ACIA to receive.
func (s *BufferSerial) Send(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = append(s.input, b...)
}

// Pending returns the number of queued bytes not yet received.
func (s *BufferSerial) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.input)
}

// Output returns everything transmitted so far.
func (s *BufferSerial) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.String()
}

// TakeOutput returns and clears the transmitted bytes.
func (s *BufferSerial) TakeOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.output.String()
	s.output.Reset()
	return out
}

func (s *BufferSerial) Poll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.input) > 0
}

func (s *BufferSerial) Read() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.input) == 0 {
		return 0
	}
	x := s.input[0]
	s.input = s.input[1:]
	return x
}

func (s *BufferSerial) Write(data byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.WriteByte(data)
}
