package wasmapi

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Memory wraps guest linear memory with bounds-checked accessors.
type Memory struct {
	mem api.Memory
}

// NewMemory wraps mem.
func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// Read returns a view of length bytes at offset.
func (m *Memory) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

// Write copies data to offset.
func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

// Zero clears length bytes at offset.
func (m *Memory) Zero(offset, length uint32) error {
	data, err := m.Read(offset, length)
	if err != nil {
		return err
	}
	clear(data)
	return nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d, length=4", offset)
	}
	return val, nil
}

func (m *Memory) ReadU64(offset uint32) (uint64, error) {
	val, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d, length=8", offset)
	}
	return val, nil
}

func (m *Memory) WriteU32(offset, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("write out of bounds: offset=%d, length=4", offset)
	}
	return nil
}

func (m *Memory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return fmt.Errorf("write out of bounds: offset=%d, length=8", offset)
	}
	return nil
}

// readWord reads a little-endian value of 1, 2, 4 or 8 bytes.
func (m *Memory) readWord(offset, size uint32) (uint64, error) {
	switch size {
	case 4:
		v, err := m.ReadU32(offset)
		return uint64(v), err
	case 8:
		return m.ReadU64(offset)
	}
	data, err := m.Read(offset, size)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := len(data) - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v, nil
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}
