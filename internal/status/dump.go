// internal/status/dump.go
package status

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/tamzrod/swap-mote/internal/mote"
)

// encMode is the CBOR encoder mode for snapshot dumps.
// Canonical key order keeps dumps byte-stable.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsEmpty,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("status: cbor encoder mode: %v", err))
	}
}

// WriteSnapshots encodes the snapshots as one CBOR array.
func WriteSnapshots(w io.Writer, snaps []mote.Snapshot) error {
	if snaps == nil {
		snaps = []mote.Snapshot{}
	}
	if err := encMode.NewEncoder(w).Encode(snaps); err != nil {
		return fmt.Errorf("status: encode snapshots: %w", err)
	}
	return nil
}

// DumpFile writes the snapshots of all motes to path.
func DumpFile(path string, motes []*mote.Mote, includeUnits bool) error {
	snaps := make([]mote.Snapshot, 0, len(motes))
	for _, m := range motes {
		snaps = append(snaps, m.Dumps(includeUnits))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("status: create %s: %w", path, err)
	}
	if err := WriteSnapshots(f, snaps); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
