package probes

import (
	"encoding/json"
	"fmt"
	"hash/crc64"
	"os"

	cverrors "probecov/internal/errors"
	"probecov/internal/model"
)

var crcTable = crc64.MakeTable(crc64.ECMA)

// ExecClassData is one class execution record reported by the runtime.
// Records are immutable once submitted; merging produces new records.
type ExecClassData struct {
	// ID is the content hash of the class bytecode. Zero when the reporter did not compute it.
	ID        int64  `json:"id,omitempty"`
	ClassName string `json:"className"`
	Probes    Probes `json:"probes"`
	SessionID string `json:"sessionId,omitempty"`
	TestName  string `json:"testName,omitempty"`
	TestID    string `json:"testId,omitempty"`
	// Bytecode is the raw class file, sent by reporters that leave ID to us.
	// LoadFile turns it into ID and drops it.
	Bytecode []byte `json:"bytecode,omitempty"`
}

// Key returns the accumulation key of the record: ID when set, otherwise a
// CRC-64 of the class name.
func (d ExecClassData) Key() int64 {
	if d.ID != 0 {
		return d.ID
	}
	return ClassKey(d.ClassName)
}

// ClassKey derives a key from a class name for records without a class id.
func ClassKey(className string) int64 {
	return int64(crc64.Checksum([]byte(className), crcTable))
}

// Test returns the test identity of the record, falling back to the test name.
func (d ExecClassData) Test() string {
	if d.TestID != "" {
		return d.TestID
	}
	return d.TestName
}

// WithClassID returns a copy of the record with ID derived from its bytecode.
// Records that already carry an ID or no bytecode are returned as they are.
func (d ExecClassData) WithClassID() ExecClassData {
	if d.ID == 0 && len(d.Bytecode) > 0 {
		d.ID = model.ClassID(d.Bytecode)
	}
	d.Bytecode = nil
	return d
}

// WithProbes returns a copy of the record carrying different probes.
func (d ExecClassData) WithProbes(p Probes) ExecClassData {
	d.Probes = p
	return d
}

// LoadFile reads a JSON array of execution records.
func LoadFile(path string) ([]ExecClassData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exec data %s: %w", path, err)
	}
	var records []ExecClassData
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, cverrors.New(cverrors.InvalidInput, "failed to parse exec data "+path, err)
	}
	for i := range records {
		records[i] = records[i].WithClassID()
	}
	return records, nil
}

// WriteFile writes records as an indented JSON array.
func WriteFile(path string, records []ExecClassData) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode exec data: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write exec data %s: %w", path, err)
	}
	return nil
}
