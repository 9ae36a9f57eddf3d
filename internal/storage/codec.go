package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"

	"probecov/internal/probes"
)

// Record wire layout. A payload is a sequence of field 1 (record) messages.
const (
	fieldRecord protowire.Number = 1

	fieldID        protowire.Number = 1
	fieldClassName protowire.Number = 2
	fieldProbeLen  protowire.Number = 3
	fieldProbeBits protowire.Number = 4
	fieldSessionID protowire.Number = 5
	fieldTestName  protowire.Number = 6
	fieldTestID    protowire.Number = 7
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// EncodeRecords encodes records as protowire messages and compresses them.
func EncodeRecords(records []probes.ExecClassData) []byte {
	var raw []byte
	for _, r := range records {
		raw = protowire.AppendTag(raw, fieldRecord, protowire.BytesType)
		raw = protowire.AppendBytes(raw, appendRecord(nil, r))
	}
	return encoder.EncodeAll(raw, nil)
}

// DecodeRecords reverses EncodeRecords.
func DecodeRecords(payload []byte) ([]probes.ExecClassData, error) {
	raw, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}

	var records []probes.ExecClassData
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		raw = raw[n:]
		if num != fieldRecord || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			raw = raw[n:]
			continue
		}
		msg, n := protowire.ConsumeBytes(raw)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		raw = raw[n:]

		r, err := consumeRecord(msg)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func appendRecord(b []byte, r probes.ExecClassData) []byte {
	if r.ID != 0 {
		b = protowire.AppendTag(b, fieldID, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, uint64(r.ID))
	}
	b = appendString(b, fieldClassName, r.ClassName)
	b = protowire.AppendTag(b, fieldProbeLen, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(len(r.Probes)))
	if len(r.Probes) > 0 {
		b = protowire.AppendTag(b, fieldProbeBits, protowire.BytesType)
		b = protowire.AppendBytes(b, packBits(r.Probes))
	}
	b = appendString(b, fieldSessionID, r.SessionID)
	b = appendString(b, fieldTestName, r.TestName)
	b = appendString(b, fieldTestID, r.TestID)
	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func consumeRecord(b []byte) (probes.ExecClassData, error) {
	var (
		r      probes.ExecClassData
		length uint64
		bits   []byte
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return r, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == fieldID && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return r, protowire.ParseError(n)
			}
			r.ID = int64(v)
			b = b[n:]
		case num == fieldProbeLen && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return r, protowire.ParseError(n)
			}
			length = v
			b = b[n:]
		case typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return r, protowire.ParseError(n)
			}
			switch num {
			case fieldClassName:
				r.ClassName = string(v)
			case fieldProbeBits:
				bits = v
			case fieldSessionID:
				r.SessionID = string(v)
			case fieldTestName:
				r.TestName = string(v)
			case fieldTestID:
				r.TestID = string(v)
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return r, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}

	if uint64(len(bits))*8 < length {
		return r, fmt.Errorf("record %s: %d probe bytes for %d probes", r.ClassName, len(bits), length)
	}
	r.Probes = unpackBits(bits, int(length))
	return r, nil
}

// packBits stores probe i in bit i%8 of byte i/8.
func packBits(p probes.Probes) []byte {
	out := make([]byte, (len(p)+7)/8)
	for i, hit := range p {
		if hit {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

func unpackBits(b []byte, n int) probes.Probes {
	out := probes.New(n)
	for i := range out {
		out[i] = b[i/8]&(1<<(i%8)) != 0
	}
	return out
}
