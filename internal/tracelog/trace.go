package tracelog

import (
	"encoding/binary"
	"errors"
	"time"
)

// TurnTrace is one failed-turn snapshot kept for the diagnostics
// endpoint. Each string field is capped at 64KB by the frame format.
type TurnTrace struct {
	When           time.Time
	ConversationID string
	ActivityID     string
	Channel        string
	Stage          string
	Detail         string
}

func (t *TurnTrace) fields() []*string {
	return []*string{&t.ConversationID, &t.ActivityID, &t.Channel, &t.Stage, &t.Detail}
}

func (t *TurnTrace) MarshalBinary() ([]byte, error) {
	// Format: when(8) + five length-prefixed strings (uint16 length each)
	size := 8
	for _, f := range t.fields() {
		size += 2 + len(*f)
	}

	buf := make([]byte, size)
	offset := 0

	binary.LittleEndian.PutUint64(buf[offset:], uint64(t.When.UnixNano()))
	offset += 8

	for _, f := range t.fields() {
		s := *f
		if len(s) > 0xFFFF {
			s = s[:0xFFFF]
		}
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(s)))
		offset += 2
		copy(buf[offset:], s)
		offset += len(s)
	}

	return buf[:offset], nil
}

func (t *TurnTrace) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return errors.New("trace frame too short")
	}

	offset := 0
	t.When = time.Unix(0, int64(binary.LittleEndian.Uint64(data[offset:])))
	offset += 8

	for _, f := range t.fields() {
		if len(data[offset:]) < 2 {
			return errors.New("trace frame truncated")
		}
		n := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if len(data[offset:]) < n {
			return errors.New("trace frame truncated")
		}
		*f = string(data[offset : offset+n])
		offset += n
	}

	return nil
}

// Ring is a bounded in-memory queue of turn traces. Recording into a
// full ring evicts the oldest traces to make room.
type Ring interface {
	Record(trace TurnTrace) error
	Recent(n int) []TurnTrace
	Drain(ch chan<- TurnTrace) error
	Len() int
	Capacity() int
}
