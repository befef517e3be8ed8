package segtree

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// artifactMagic identifies a segment-tree artifact file. Per this
// module's versioned-binary-layout redesign (replacing the original's
// native-pickle persistence so the format has an explicit, documented,
// cross-language-readable layout), the magic is followed by a version
// byte so the layout can evolve without breaking Load on old files
// silently.
var artifactMagic = [7]byte{'P', 'D', 'S', 'C', 'S', 'T', 'R'}

const artifactVersion = uint8(1)

// Save writes t to path atomically: it writes to a temporary file in the
// same directory and renames it into place, so concurrent readers never
// observe a partial artifact.
func (t *Tree) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("segtree: create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	w := bufio.NewWriter(tmp)
	if err := writeArtifact(w, t); err != nil {
		tmp.Close()
		return fmt.Errorf("segtree: write artifact: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("segtree: flush artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("segtree: close artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("segtree: rename artifact into place: %w", err)
	}
	return nil
}

func writeArtifact(w io.Writer, t *Tree) error {
	if _, err := w.Write(artifactMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, artifactVersion); err != nil {
		return err
	}

	centers := t.Export()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(centers))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.bodyRadiusM); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.maxRadiusM); err != nil {
		return err
	}

	for _, c := range centers {
		if err := binary.Write(w, binary.LittleEndian, c.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, degToRadians(c.Lat)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, degToRadians(c.Lon)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a segment-tree artifact previously written by Save and
// rebuilds the R-tree from the persisted center array.
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segtree: open artifact: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [7]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &ErrCorruptArtifact{Reason: "could not read magic header: " + err.Error()}
	}
	if magic != artifactMagic {
		return nil, &ErrCorruptArtifact{Reason: "magic header mismatch"}
	}

	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, &ErrCorruptArtifact{Reason: "could not read version: " + err.Error()}
	}
	if version != artifactVersion {
		return nil, &ErrCorruptArtifact{Reason: fmt.Sprintf("unsupported artifact version %d", version)}
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, &ErrCorruptArtifact{Reason: "could not read count: " + err.Error()}
	}

	var bodyRadiusM, maxRadiusM float64
	if err := binary.Read(r, binary.LittleEndian, &bodyRadiusM); err != nil {
		return nil, &ErrCorruptArtifact{Reason: "could not read body radius: " + err.Error()}
	}
	if err := binary.Read(r, binary.LittleEndian, &maxRadiusM); err != nil {
		return nil, &ErrCorruptArtifact{Reason: "could not read max radius: " + err.Error()}
	}

	segments := make([]CenterInput, 0, count)
	for i := uint32(0); i < count; i++ {
		var id int64
		var latRad, lonRad float64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, &ErrCorruptArtifact{Reason: "truncated center record (id): " + err.Error()}
		}
		if err := binary.Read(r, binary.LittleEndian, &latRad); err != nil {
			return nil, &ErrCorruptArtifact{Reason: "truncated center record (lat): " + err.Error()}
		}
		if err := binary.Read(r, binary.LittleEndian, &lonRad); err != nil {
			return nil, &ErrCorruptArtifact{Reason: "truncated center record (lon): " + err.Error()}
		}
		segments = append(segments, CenterInput{
			ID:  id,
			Lat: radiansToDeg(latRad),
			Lon: radiansToDeg(lonRad),
		})
	}

	if len(segments) == 0 {
		return nil, &ErrEmptyTree{}
	}

	return fromCenters(segments, maxRadiusM, bodyRadiusM), nil
}

func degToRadians(d float64) float64 { return d * math.Pi / 180 }
func radiansToDeg(r float64) float64 { return r * 180 / math.Pi }
