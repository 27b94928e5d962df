package tariff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
)

// Binary tariff file layout (all integers little-endian):
//
//	magic    15 bytes  "shiftdl-tariff\n"
//	version  uint16    currently 1
//	nameLen  uint16
//	name     nameLen bytes of UTF-8
//	nPeriods uint32
//	then per period:
//	  start       int64   unix seconds
//	  startOffset int32   UTC offset of the start instant, seconds
//	  end         int64   unix seconds
//	  endOffset   int32   UTC offset of the end instant, seconds
//	  recurrence  uint8
//	  multiple    uint32
//	  capacity    uint64  math.MaxUint64 means unlimited
//
// Offsets are stored alongside the unix instants so that recurrence
// arithmetic after a round-trip still steps on the original wall-clock
// boundaries.

var fileMagic = []byte("shiftdl-tariff\n")

// FormatVersion is the current binary file format version.
const FormatVersion uint16 = 1

const maxNameLen = 1<<16 - 1

// Marshal serialises the tariff into the versioned binary format.
func Marshal(t *Tariff) ([]byte, error) {
	if len(t.name) > maxNameLen {
		return nil, validationErrorf("tariff name too long")
	}
	var buf bytes.Buffer
	buf.Write(fileMagic)
	writeU16(&buf, FormatVersion)
	writeU16(&buf, uint16(len(t.name)))
	buf.WriteString(t.name)
	writeU32(&buf, uint32(len(t.periods)))
	for _, p := range t.periods {
		writeI64(&buf, p.start.Unix())
		writeI32(&buf, offsetSeconds(p.start))
		writeI64(&buf, p.end.Unix())
		writeI32(&buf, offsetSeconds(p.end))
		buf.WriteByte(byte(p.recurrence))
		writeU32(&buf, p.multiple)
		writeU64(&buf, p.capacity)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a tariff from the versioned binary format. Failures
// return a *ParseError; the input is never partially applied.
func Unmarshal(data []byte) (*Tariff, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, parseErrorf(err, "file too short")
	}
	if !bytes.Equal(magic, fileMagic) {
		return nil, parseErrorf(nil, "unrecognised file magic")
	}

	version, err := readU16(r)
	if err != nil {
		return nil, parseErrorf(err, "truncated header")
	}
	if version != FormatVersion {
		return nil, parseErrorf(nil, "unsupported format version %d", version)
	}

	nameLen, err := readU16(r)
	if err != nil {
		return nil, parseErrorf(err, "truncated header")
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, parseErrorf(err, "truncated tariff name")
	}
	if err := ValidateName(string(name)); err != nil {
		return nil, parseErrorf(err, "invalid tariff name")
	}

	nPeriods, err := readU32(r)
	if err != nil {
		return nil, parseErrorf(err, "truncated header")
	}
	if nPeriods == 0 {
		return nil, parseErrorf(nil, "tariff has no periods")
	}
	// 29 bytes per period; reject counts the remaining input cannot hold.
	if int64(nPeriods)*29 > int64(r.Len()) {
		return nil, parseErrorf(nil, "period count %d exceeds file size", nPeriods)
	}

	b := NewBuilder().SetName(string(name))
	for i := uint32(0); i < nPeriods; i++ {
		p, err := readPeriod(r)
		if err != nil {
			return nil, parseErrorf(err, "period %d", i)
		}
		b.AddPeriod(p)
	}
	if r.Len() != 0 {
		return nil, parseErrorf(nil, "%d trailing bytes after last period", r.Len())
	}

	t, err := b.Tariff()
	if err != nil {
		return nil, parseErrorf(err, "invalid tariff contents")
	}
	return t, nil
}

func readPeriod(r *bytes.Reader) (*Period, error) {
	var raw struct {
		Start       int64
		StartOffset int32
		End         int64
		EndOffset   int32
		Recurrence  uint8
		Multiple    uint32
		Capacity    uint64
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, err
	}
	start := time.Unix(raw.Start, 0).In(zoneFor(raw.StartOffset))
	end := time.Unix(raw.End, 0).In(zoneFor(raw.EndOffset))
	return NewPeriod(start, end, Recurrence(raw.Recurrence), raw.Multiple, raw.Capacity)
}

// zoneFor returns a fixed zone for the given offset, reusing time.UTC when
// the offset is zero so round-tripped UTC instants compare cleanly.
func zoneFor(offset int32) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone("", int(offset))
}

func offsetSeconds(t time.Time) int32 {
	_, off := t.Zone()
	return int32(off)
}

// Save writes the tariff to path on fs, replacing any existing file.
func Save(fs afero.Fs, path string, t *Tariff) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("error writing tariff file: %w", err)
	}
	return nil
}

// Load reads and parses the tariff stored at path on fs.
func Load(fs afero.Fs, path string) (*Tariff, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading tariff file: %w", err)
	}
	return Unmarshal(data)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI32(buf *bytes.Buffer, v int32) { writeU32(buf, uint32(v)) }
func writeI64(buf *bytes.Buffer, v int64) { writeU64(buf, uint64(v)) }

func readU16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
