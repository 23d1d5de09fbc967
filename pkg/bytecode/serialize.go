package bytecode

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
)

// Bytecode wire format:
// - Magic: "QRBC" (4 bytes)
// - Version: uint16
// - NumInstructions: uint32
// - PayloadLen: uint32
// - Payload: gob-encoded []Instruction

const (
	// Magic identifies a serialized instruction vector.
	Magic = "QRBC"
	// Version is the current wire format version.
	Version = 1
)

var (
	// ErrInvalidMagic reports a payload that is not serialized bytecode.
	ErrInvalidMagic = errors.New("invalid bytecode magic")
	// ErrInvalidVersion reports an unsupported wire format version.
	ErrInvalidVersion = errors.New("unsupported bytecode version")
)

func init() {
	gob.Register(PushString{})
	gob.Register(PushNum{})
	gob.Register(PushTrue{})
	gob.Register(PushFalse{})
	gob.Register(Dup{})
	gob.Register(Swap{})
	gob.Register(Line{})
	gob.Register(Map1{})
	gob.Register(Map2Cross{})
	gob.Register(Map2Match{})
	gob.Register(FilterCross{})
	gob.Register(FilterMatch{})
	gob.Register(Reduce{})
	gob.Register(SetReduce{})
	gob.Register(LoadLocal{})
	gob.Register(IUnion{})
	gob.Register(IIntersect{})
	gob.Register(ZipBuckets{})
	gob.Register(Split{})
	gob.Register(Merge{})
	gob.Register(SimpleUnaryOp(0))
	gob.Register(SimpleBinaryOp(0))
	gob.Register(BuiltInFunction1Op{})
	gob.Register(BuiltInFunction2Op{})
}

// Serialize encodes an instruction vector into the wire format.
func Serialize(code []Instruction) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(Magic)

	if err := binary.Write(buf, binary.LittleEndian, uint16(Version)); err != nil {
		return nil, fmt.Errorf("writing version: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(code))); err != nil {
		return nil, fmt.Errorf("writing instruction count: %w", err)
	}

	payload := new(bytes.Buffer)
	enc := gob.NewEncoder(payload)
	if err := enc.Encode(code); err != nil {
		return nil, fmt.Errorf("encoding instructions: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(payload.Len())); err != nil {
		return nil, fmt.Errorf("writing payload length: %w", err)
	}
	buf.Write(payload.Bytes())

	return buf.Bytes(), nil
}

// Deserialize decodes an instruction vector from the wire format.
func Deserialize(data []byte) ([]Instruction, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := r.Read(magic); err != nil || string(magic) != Magic {
		return nil, ErrInvalidMagic
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading instruction count: %w", err)
	}

	var payloadLen uint32
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return nil, fmt.Errorf("reading payload length: %w", err)
	}

	var code []Instruction
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&code); err != nil {
		return nil, fmt.Errorf("decoding instructions: %w", err)
	}
	if uint32(len(code)) != count {
		return nil, fmt.Errorf("instruction count mismatch: header %d, payload %d", count, len(code))
	}

	return code, nil
}
