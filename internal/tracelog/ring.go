package tracelog

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/smallnest/ringbuffer"
)

type ring_impl struct {
	size int
	// frame reads are two-step (size then body), guard the pair
	mu sync.Mutex
	rb *ringbuffer.RingBuffer
}

// Capacity implements Ring.
func (r *ring_impl) Capacity() int {
	return r.size
}

// Len implements Ring.
func (r *ring_impl) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rb.Length()
}

// Record implements Ring.
func (r *ring_impl) Record(trace TurnTrace) error {
	data, err := trace.MarshalBinary()
	if err != nil {
		return err
	}

	// Frame layout: size prefix (4 bytes, little endian) + payload
	required := len(data) + 4
	if required > r.size {
		return errors.New("trace frame too large for buffer")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Evict old traces until the new frame fits
	for r.rb.Free() < required {
		if !r.removeOldestFrame() {
			// Buffer no longer frame-aligned, start over
			r.rb.Reset()
			break
		}
	}

	sizeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBytes, uint32(len(data)))
	if _, err := r.rb.Write(sizeBytes); err != nil {
		return err
	}

	_, err = r.rb.Write(data)
	return err
}

// Recent implements Ring. It returns up to n traces, newest first,
// without consuming them.
func (r *ring_impl) Recent(n int) []TurnTrace {
	result := make([]TurnTrace, 0, n)
	if n <= 0 {
		return result
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rb.IsEmpty() {
		return result
	}

	// Replay a copy of the live contents so frames stay queued
	scratch := ringbuffer.New(r.rb.Capacity())
	scratch.Write(r.rb.Bytes(nil))

	var all []TurnTrace
	for !scratch.IsEmpty() {
		sizeBytes := make([]byte, 4)
		readN, err := scratch.Read(sizeBytes)
		if err != nil || readN != 4 {
			break
		}
		size := int(binary.LittleEndian.Uint32(sizeBytes))

		data := make([]byte, size)
		readN, err = scratch.Read(data)
		if err != nil || readN != size {
			break
		}

		var trace TurnTrace
		if err := trace.UnmarshalBinary(data); err != nil {
			break
		}
		all = append(all, trace)
	}

	for i := len(all) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, all[i])
	}
	return result
}

// Drain implements Ring. It empties the ring into ch and closes it.
func (r *ring_impl) Drain(ch chan<- TurnTrace) error {
	defer close(ch)

	r.mu.Lock()
	defer r.mu.Unlock()

	for !r.rb.IsEmpty() {
		trace, ok := r.readFrame()
		if !ok {
			break
		}

		select {
		case ch <- trace:
		default:
			return errors.New("channel blocked during drain")
		}
	}

	return nil
}

// readFrame consumes one frame from the front. Caller holds r.mu.
func (r *ring_impl) readFrame() (TurnTrace, bool) {
	if r.rb.IsEmpty() {
		return TurnTrace{}, false
	}

	sizeBytes := make([]byte, 4)
	n, err := r.rb.Read(sizeBytes)
	if err != nil || n != 4 {
		return TurnTrace{}, false
	}
	size := int(binary.LittleEndian.Uint32(sizeBytes))

	data := make([]byte, size)
	n, err = r.rb.Read(data)
	if err != nil || n != size {
		return TurnTrace{}, false
	}

	var trace TurnTrace
	if err := trace.UnmarshalBinary(data); err != nil {
		return TurnTrace{}, false
	}
	return trace, true
}

// removeOldestFrame drops one frame from the front. Caller holds r.mu.
func (r *ring_impl) removeOldestFrame() bool {
	if r.rb.IsEmpty() {
		return false
	}

	sizeBytes := make([]byte, 4)
	n, err := r.rb.Read(sizeBytes)
	if err != nil || n != 4 {
		return false
	}
	size := int(binary.LittleEndian.Uint32(sizeBytes))

	if size > 0 {
		skip := make([]byte, size)
		n, err := r.rb.Read(skip)
		if err != nil || n != size {
			return false
		}
	}

	return true
}

// New builds a trace ring holding size bytes of frames.
func New(size int) Ring {
	return &ring_impl{
		size: size,
		rb:   ringbuffer.New(size).SetBlocking(false), // Non-blocking so overflow is handled by eviction
	}
}
