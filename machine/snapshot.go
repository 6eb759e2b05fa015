package machine

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/nf/bfx/bf"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("machine: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// snapshotFile is the on-disk form of a saved interpreter.
type snapshotFile struct {
	Version int         `cbor:"version"`
	Program string      `cbor:"program"` // instruction characters only
	State   bf.Snapshot `cbor:"state"`
}

const snapshotVersion = 1

// MarshalSnapshot serializes the program and state of m to CBOR bytes.
func MarshalSnapshot(m *bf.Interpreter) ([]byte, error) {
	prog := make([]byte, len(m.Prog))
	for i, op := range m.Prog {
		prog[i] = op.Char()
	}
	return cborEncMode.Marshal(snapshotFile{
		Version: snapshotVersion,
		Program: string(prog),
		State:   m.Snapshot(),
	})
}

// UnmarshalSnapshot deserializes an interpreter from CBOR bytes.
// The returned interpreter has no input or output attached.
func UnmarshalSnapshot(data []byte) (*bf.Interpreter, error) {
	var f snapshotFile
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("machine: unmarshal snapshot: %w", err)
	}
	if f.Version != snapshotVersion {
		return nil, fmt.Errorf("machine: unsupported snapshot version %d", f.Version)
	}
	prog, err := bf.Parse([]byte(f.Program))
	if err != nil {
		return nil, fmt.Errorf("machine: snapshot program: %w", err)
	}
	m, err := bf.Restore(prog, f.State)
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}
	return m, nil
}

// SaveSnapshot writes the program and state of m to the named file.
func SaveSnapshot(name string, m *bf.Interpreter) error {
	b, err := MarshalSnapshot(m)
	if err != nil {
		return err
	}
	return os.WriteFile(name, b, 0644)
}

// LoadSnapshot reads an interpreter saved by SaveSnapshot.
func LoadSnapshot(name string) (*bf.Interpreter, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return UnmarshalSnapshot(b)
}
