package packfile

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/halfmoon-dev/gitobj/plumbing"
	"golang.org/x/xerrors"
)

const (
	// ExtPackfile is the file extension used by packfiles
	ExtPackfile = ".pack"
	// ExtIndex is the file extension used by pack index files
	ExtIndex = ".idx"
)

const (
	idxHeaderSize  = 8 // 4-byte magic + 4-byte version
	idxFanoutCount = 256
	idxFanoutSize  = idxFanoutCount * 4
	idxVersion     = 2
	// largeOffsetFlag is set on the high bit of a 4-byte offset entry
	// when the real offset doesn't fit in 31 bits; the low 31 bits are
	// then an index into the 8-byte large-offset table instead.
	largeOffsetFlag = 1 << 31
)

func idxMagic() []byte {
	return []byte{0xff, 't', 'O', 'c'}
}

// PackIndex is a reader for the version-2 pack index (.idx) format. It
// exposes a binary search over the sorted oid table so an object's
// offset inside the matching .pack file can be found without scanning
// the whole pack.
// https://git-scm.com/docs/pack-format
type PackIndex struct {
	f *os.File

	fanout [idxFanoutCount]uint32

	oidTableOffset     int64
	crcTableOffset     int64
	offsetTableOffset  int64
	largeOffsetsOffset int64
}

// NewIndexFromFile opens and parses the index file located at path.
// The index needs to be closed using Close().
func NewIndexFromFile(path string) (*PackIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("could not open %s: %w", path, err)
	}

	header := make([]byte, idxHeaderSize)
	if _, err = f.ReadAt(header, 0); err != nil {
		return nil, xerrors.Errorf("could not read header of index file: %w", err)
	}
	if !bytesEqual(header[0:4], idxMagic()) {
		return nil, xerrors.Errorf("invalid header: %w", ErrInvalidMagic)
	}
	version := binary.BigEndian.Uint32(header[4:8])
	if version != idxVersion {
		return nil, xerrors.Errorf("invalid header: %w", ErrInvalidVersion)
	}

	idx := &PackIndex{f: f}

	fanoutRaw := make([]byte, idxFanoutSize)
	if _, err = f.ReadAt(fanoutRaw, idxHeaderSize); err != nil {
		return nil, xerrors.Errorf("could not read fanout table: %w", err)
	}
	for i := 0; i < idxFanoutCount; i++ {
		idx.fanout[i] = binary.BigEndian.Uint32(fanoutRaw[i*4 : i*4+4])
	}

	numObjects := int64(idx.fanout[idxFanoutCount-1])
	idx.oidTableOffset = idxHeaderSize + idxFanoutSize
	idx.crcTableOffset = idx.oidTableOffset + numObjects*plumbing.OidSize
	idx.offsetTableOffset = idx.crcTableOffset + numObjects*4
	idx.largeOffsetsOffset = idx.offsetTableOffset + numObjects*4

	return idx, nil
}

// Close releases the underlying file handle.
func (idx *PackIndex) Close() error {
	return idx.f.Close()
}

// numObjects returns the number of objects indexed.
func (idx *PackIndex) numObjects() uint32 {
	return idx.fanout[idxFanoutCount-1]
}

// oidAt returns the oid stored at the given row of the sorted oid table.
func (idx *PackIndex) oidAt(row int64) (plumbing.Oid, error) {
	buf := make([]byte, plumbing.OidSize)
	if _, err := idx.f.ReadAt(buf, idx.oidTableOffset+row*plumbing.OidSize); err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not read oid table: %w", err)
	}
	var oid plumbing.Oid
	copy(oid[:], buf)
	return oid, nil
}

// offsetAt returns the pack offset stored at the given row, resolving
// the large-offset table when the MSB flag is set.
func (idx *PackIndex) offsetAt(row int64) (uint64, error) {
	buf := make([]byte, 4)
	if _, err := idx.f.ReadAt(buf, idx.offsetTableOffset+row*4); err != nil {
		return 0, xerrors.Errorf("could not read offset table: %w", err)
	}
	raw := binary.BigEndian.Uint32(buf)
	if raw&largeOffsetFlag == 0 {
		return uint64(raw), nil
	}

	largeBuf := make([]byte, 8)
	largeRow := int64(raw &^ largeOffsetFlag)
	if _, err := idx.f.ReadAt(largeBuf, idx.largeOffsetsOffset+largeRow*8); err != nil {
		return 0, xerrors.Errorf("could not read large offset table: %w", err)
	}
	return binary.BigEndian.Uint64(largeBuf), nil
}

// searchRange returns the [lo, hi) row range of the oid table that the
// fanout table says might contain oid, based on its first byte.
func (idx *PackIndex) searchRange(oid plumbing.Oid) (int64, int64) {
	firstByte := oid[0]
	var lo uint32
	if firstByte > 0 {
		lo = idx.fanout[firstByte-1]
	}
	hi := idx.fanout[firstByte]
	return int64(lo), int64(hi)
}

// GetObjectOffset returns the offset of oid inside the associated pack
// file. plumbing.ErrNotFound is returned if oid isn't present in this index.
func (idx *PackIndex) GetObjectOffset(oid plumbing.Oid) (uint64, error) {
	lo, hi := idx.searchRange(oid)

	for lo < hi {
		mid := lo + (hi-lo)/2
		midOid, err := idx.oidAt(mid)
		if err != nil {
			return 0, err
		}
		switch compareOid(midOid, oid) {
		case 0:
			return idx.offsetAt(mid)
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}

	return 0, xerrors.Errorf("oid %s: %w", oid.String(), plumbing.ErrNotFound)
}

// WalkOids runs f on every oid in the index, in ascending order.
func (idx *PackIndex) WalkOids(f OidWalkFunc) error {
	total := int64(idx.numObjects())
	for row := int64(0); row < total; row++ {
		oid, err := idx.oidAt(row)
		if err != nil {
			return err
		}
		if err := f(oid); err != nil {
			if err == OidWalkStop { //nolint:errorlint,goerr113 // sentinel, not a wrapped error
				return nil
			}
			return err
		}
	}
	return nil
}

// OidsByPrefix returns every oid in the index whose hex representation
// starts with the given prefix. A prefix that matches no oid returns an
// empty, non-nil slice and a nil error.
func (idx *PackIndex) OidsByPrefix(prefix string) ([]plumbing.Oid, error) {
	lo, hi, err := idx.prefixRange(prefix)
	if err != nil {
		return nil, err
	}

	out := make([]plumbing.Oid, 0, hi-lo)
	for row := lo; row < hi; row++ {
		oid, err := idx.oidAt(row)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// prefixRange returns the [lo, hi) rows of the sorted oid table whose
// oids start with prefix, using two binary searches against sentinel
// oids built by padding the prefix with 0x00s and 0xffs.
func (idx *PackIndex) prefixRange(prefix string) (int64, int64, error) {
	lowOid, err := paddedOid(prefix, 0x00)
	if err != nil {
		return 0, 0, err
	}
	highOid, err := paddedOid(prefix, 0xff)
	if err != nil {
		return 0, 0, err
	}

	total := int64(idx.numObjects())
	lo, err := idx.lowerBound(0, total, lowOid)
	if err != nil {
		return 0, 0, err
	}
	hi, err := idx.upperBound(lo, total, highOid)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (idx *PackIndex) lowerBound(lo, hi int64, target plumbing.Oid) (int64, error) {
	for lo < hi {
		mid := lo + (hi-lo)/2
		midOid, err := idx.oidAt(mid)
		if err != nil {
			return 0, err
		}
		if compareOid(midOid, target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

func (idx *PackIndex) upperBound(lo, hi int64, target plumbing.Oid) (int64, error) {
	for lo < hi {
		mid := lo + (hi-lo)/2
		midOid, err := idx.oidAt(mid)
		if err != nil {
			return 0, err
		}
		if compareOid(midOid, target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// paddedOid builds a full-size Oid from a hex prefix, padding the
// remaining bytes with fill (0x00 for the low sentinel, 0xff for the
// high sentinel).
func paddedOid(prefix string, fill byte) (plumbing.Oid, error) {
	var buf [plumbing.OidSize * 2]byte
	n := copy(buf[:], prefix)
	for i := n; i < len(buf); i++ {
		if fill == 0xff {
			buf[i] = 'f'
		} else {
			buf[i] = '0'
		}
	}
	return plumbing.NewOidFromStr(string(buf[:]))
}

func compareOid(a, b plumbing.Oid) int {
	for i := 0; i < plumbing.OidSize; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var _ io.Closer = (*PackIndex)(nil)
