package fonts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// SubsetTrueType produces a sparse subset of a glyf-flavoured font:
// glyph IDs keep their values (Identity-H stays valid) and the outline
// data of unused glyphs is dropped. Fonts without glyf outlines and
// fonts whose shaping depends on complex scripts are returned unchanged.
func SubsetTrueType(data []byte, usedGIDs map[int]bool) ([]byte, error) {
	src := &sfntTables{data: data}
	if err := src.parseDirectory(); err != nil {
		return nil, err
	}

	for _, tag := range []string{"glyf", "loca", "head", "maxp", "hmtx", "hhea"} {
		if !src.has(tag) {
			return data, nil
		}
	}
	if src.hasArabicShaping() {
		// Sparse subsetting breaks contextual Arabic forms. Keep the
		// full font until a shaper-aware subsetter exists.
		return data, nil
	}

	head, err := src.table("head")
	if err != nil {
		return nil, err
	}
	locFormat := int16(binary.BigEndian.Uint16(head[50:52]))

	maxp, err := src.table("maxp")
	if err != nil {
		return nil, err
	}
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:6]))

	keep := make(map[int]bool, len(usedGIDs)+1)
	keep[0] = true
	for gid := range usedGIDs {
		if gid >= 0 && gid < numGlyphs {
			keep[gid] = true
		}
	}
	if err := src.addCompositeComponents(keep, numGlyphs, locFormat); err != nil {
		return nil, fmt.Errorf("composite closure: %w", err)
	}

	// Trailing unused glyphs can be cut entirely.
	maxGID := 0
	for gid := range keep {
		if gid > maxGID {
			maxGID = gid
		}
	}
	newNumGlyphs := maxGID + 1
	if newNumGlyphs > numGlyphs {
		newNumGlyphs = numGlyphs
	}

	glyf, loca, err := src.rebuildOutlines(keep, newNumGlyphs, locFormat)
	if err != nil {
		return nil, err
	}
	hmtx, err := src.rebuildMetrics(newNumGlyphs)
	if err != nil {
		return nil, err
	}

	newMaxp := append([]byte(nil), maxp...)
	binary.BigEndian.PutUint16(newMaxp[4:], uint16(newNumGlyphs))

	// The rebuilt loca always uses the long format.
	newHead := append([]byte(nil), head...)
	binary.BigEndian.PutUint16(newHead[50:], 1)

	out := &sfntBuilder{}
	out.add("glyf", glyf)
	out.add("loca", loca)
	out.add("hmtx", hmtx)
	out.add("maxp", newMaxp)
	out.add("head", newHead)

	for _, tag := range []string{"hhea", "cmap", "name", "OS/2", "post", "cvt ", "fpgm", "prep", "GSUB", "GPOS", "GDEF", "gasp"} {
		if !src.has(tag) {
			continue
		}
		tbl, err := src.table(tag)
		if err != nil {
			return nil, err
		}
		if tag == "hhea" && len(tbl) >= 36 {
			// hmtx was rebuilt with explicit metrics for every glyph.
			patched := append([]byte(nil), tbl...)
			binary.BigEndian.PutUint16(patched[34:], uint16(newNumGlyphs))
			tbl = patched
		}
		out.add(tag, tbl)
	}

	return out.bytes(), nil
}

type sfntTables struct {
	data   []byte
	tables map[string]tableSpan
}

type tableSpan struct {
	offset uint32
	length uint32
}

func (s *sfntTables) parseDirectory() error {
	if len(s.data) < 12 {
		return fmt.Errorf("invalid font header")
	}
	numTables := int(binary.BigEndian.Uint16(s.data[4:6]))
	s.tables = make(map[string]tableSpan, numTables)

	offset := 12
	for i := 0; i < numTables; i++ {
		if offset+16 > len(s.data) {
			return fmt.Errorf("table directory truncated")
		}
		tag := string(s.data[offset : offset+4])
		s.tables[tag] = tableSpan{
			offset: binary.BigEndian.Uint32(s.data[offset+8 : offset+12]),
			length: binary.BigEndian.Uint32(s.data[offset+12 : offset+16]),
		}
		offset += 16
	}
	return nil
}

func (s *sfntTables) has(tag string) bool {
	_, ok := s.tables[tag]
	return ok
}

func (s *sfntTables) table(tag string) ([]byte, error) {
	span, ok := s.tables[tag]
	if !ok {
		return nil, fmt.Errorf("table %s not found", tag)
	}
	if int(span.offset+span.length) > len(s.data) {
		return nil, fmt.Errorf("table %s out of bounds", tag)
	}
	return s.data[span.offset : span.offset+span.length], nil
}

func (s *sfntTables) hasArabicShaping() bool {
	if !s.has("GSUB") {
		return false
	}
	gsub, err := s.table("GSUB")
	if err != nil || len(gsub) < 10 {
		return false
	}
	scriptList := binary.BigEndian.Uint16(gsub[4:6])
	if int(scriptList) >= len(gsub) {
		return false
	}
	list := gsub[scriptList:]
	if len(list) < 2 {
		return false
	}
	count := int(binary.BigEndian.Uint16(list[0:2]))
	offset := 2
	for i := 0; i < count; i++ {
		if offset+6 > len(list) {
			break
		}
		if string(list[offset:offset+4]) == "arab" {
			return true
		}
		offset += 6
	}
	return false
}

func (s *sfntTables) glyphSpan(loca []byte, gid int, locFormat int16) (uint32, uint32) {
	if locFormat == 0 {
		return uint32(binary.BigEndian.Uint16(loca[gid*2:])) * 2,
			uint32(binary.BigEndian.Uint16(loca[gid*2+2:])) * 2
	}
	return binary.BigEndian.Uint32(loca[gid*4:]), binary.BigEndian.Uint32(loca[gid*4+4:])
}

// addCompositeComponents walks composite glyphs breadth-first and pulls
// their component glyphs into the keep-set.
func (s *sfntTables) addCompositeComponents(keep map[int]bool, numGlyphs int, locFormat int16) error {
	loca, err := s.table("loca")
	if err != nil {
		return err
	}
	glyf, err := s.table("glyf")
	if err != nil {
		return err
	}

	queue := make([]int, 0, len(keep))
	for gid := range keep {
		queue = append(queue, gid)
	}

	for len(queue) > 0 {
		gid := queue[0]
		queue = queue[1:]
		if gid >= numGlyphs {
			continue
		}
		start, end := s.glyphSpan(loca, gid, locFormat)
		if start >= end || start+10 > uint32(len(glyf)) {
			continue
		}
		numContours := int16(binary.BigEndian.Uint16(glyf[start : start+2]))
		if numContours >= 0 {
			continue
		}

		offset := start + 10
		for {
			if offset+4 > uint32(len(glyf)) {
				break
			}
			flags := binary.BigEndian.Uint16(glyf[offset : offset+2])
			component := int(binary.BigEndian.Uint16(glyf[offset+2 : offset+4]))
			if !keep[component] {
				keep[component] = true
				queue = append(queue, component)
			}

			offset += 4
			if flags&0x0001 != 0 { // ARG_1_AND_2_ARE_WORDS
				offset += 4
			} else {
				offset += 2
			}
			switch {
			case flags&0x0008 != 0: // WE_HAVE_A_SCALE
				offset += 2
			case flags&0x0040 != 0: // WE_HAVE_AN_X_AND_Y_SCALE
				offset += 4
			case flags&0x0080 != 0: // WE_HAVE_A_TWO_BY_TWO
				offset += 8
			}
			if flags&0x0020 == 0 { // MORE_COMPONENTS
				break
			}
		}
	}
	return nil
}

func (s *sfntTables) rebuildOutlines(keep map[int]bool, numGlyphs int, locFormat int16) ([]byte, []byte, error) {
	oldLoca, err := s.table("loca")
	if err != nil {
		return nil, nil, err
	}
	oldGlyf, err := s.table("glyf")
	if err != nil {
		return nil, nil, err
	}

	var glyf bytes.Buffer
	offsets := make([]uint32, numGlyphs+1)
	current := uint32(0)

	for gid := 0; gid < numGlyphs; gid++ {
		offsets[gid] = current
		if !keep[gid] {
			continue
		}
		start, end := s.glyphSpan(oldLoca, gid, locFormat)
		if start < end && end <= uint32(len(oldGlyf)) {
			glyf.Write(oldGlyf[start:end])
			current += end - start
		}
	}
	offsets[numGlyphs] = current

	var loca bytes.Buffer
	for _, off := range offsets {
		binary.Write(&loca, binary.BigEndian, off)
	}
	return glyf.Bytes(), loca.Bytes(), nil
}

func (s *sfntTables) rebuildMetrics(numGlyphs int) ([]byte, error) {
	hhea, err := s.table("hhea")
	if err != nil {
		return nil, err
	}
	if len(hhea) < 36 {
		return nil, fmt.Errorf("hhea table truncated")
	}
	numHMetrics := int(binary.BigEndian.Uint16(hhea[34:36]))

	hmtx, err := s.table("hmtx")
	if err != nil {
		return nil, err
	}

	metric := func(gid int) (uint16, int16, error) {
		if gid < numHMetrics {
			if (gid+1)*4 > len(hmtx) {
				return 0, 0, fmt.Errorf("hmtx table truncated")
			}
			adv := binary.BigEndian.Uint16(hmtx[gid*4 : gid*4+2])
			lsb := int16(binary.BigEndian.Uint16(hmtx[gid*4+2 : gid*4+4]))
			return adv, lsb, nil
		}
		if numHMetrics == 0 || numHMetrics*4 > len(hmtx) {
			return 0, 0, fmt.Errorf("hmtx table truncated")
		}
		adv := binary.BigEndian.Uint16(hmtx[(numHMetrics-1)*4 : (numHMetrics-1)*4+2])
		lsbOff := numHMetrics*4 + (gid-numHMetrics)*2
		if lsbOff+2 > len(hmtx) {
			return adv, 0, nil
		}
		lsb := int16(binary.BigEndian.Uint16(hmtx[lsbOff : lsbOff+2]))
		return adv, lsb, nil
	}

	// Rebuild with an explicit metric per glyph, which keeps the table
	// valid regardless of how the source packed its trailing run.
	var out bytes.Buffer
	for gid := 0; gid < numGlyphs; gid++ {
		adv, lsb, err := metric(gid)
		if err != nil {
			return nil, err
		}
		binary.Write(&out, binary.BigEndian, adv)
		binary.Write(&out, binary.BigEndian, lsb)
	}
	return out.Bytes(), nil
}

type sfntBuilder struct {
	tables []namedTable
}

type namedTable struct {
	tag  string
	data []byte
}

func (b *sfntBuilder) add(tag string, data []byte) {
	b.tables = append(b.tables, namedTable{tag, data})
}

func (b *sfntBuilder) bytes() []byte {
	sort.Slice(b.tables, func(i, j int) bool { return b.tables[i].tag < b.tables[j].tag })

	numTables := len(b.tables)
	offset := 12 + 16*numTables

	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x01, 0x00, 0x00})
	binary.Write(&buf, binary.BigEndian, uint16(numTables))

	entrySelector := 0
	for (1 << (entrySelector + 1)) <= numTables {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	binary.Write(&buf, binary.BigEndian, uint16(searchRange))
	binary.Write(&buf, binary.BigEndian, uint16(entrySelector))
	binary.Write(&buf, binary.BigEndian, uint16(numTables*16-searchRange))

	for _, t := range b.tables {
		buf.WriteString(t.tag)
		binary.Write(&buf, binary.BigEndian, sfntChecksum(t.data))
		binary.Write(&buf, binary.BigEndian, uint32(offset))
		binary.Write(&buf, binary.BigEndian, uint32(len(t.data)))
		offset += len(t.data) + pad4(len(t.data))
	}

	headOffset := -1
	for _, t := range b.tables {
		if t.tag == "head" {
			headOffset = buf.Len()
		}
		buf.Write(t.data)
		for i := 0; i < pad4(len(t.data)); i++ {
			buf.WriteByte(0)
		}
	}

	out := buf.Bytes()
	if headOffset >= 0 && headOffset+12 <= len(out) {
		// checkSumAdjustment: zero it, re-checksum head, then store the
		// whole-file adjustment.
		for i := 0; i < 4; i++ {
			out[headOffset+8+i] = 0
		}
		for i, t := range b.tables {
			if t.tag != "head" {
				continue
			}
			dirOffset := 12 + 16*i
			length := binary.BigEndian.Uint32(out[dirOffset+12 : dirOffset+16])
			padded := (length + 3) &^ 3
			binary.BigEndian.PutUint32(out[dirOffset+4:], sfntChecksum(out[headOffset:uint32(headOffset)+padded]))
			break
		}
		binary.BigEndian.PutUint32(out[headOffset+8:], 0xB1B0AFBA-sfntChecksum(out))
	}
	return out
}

func pad4(n int) int { return (4 - n%4) % 4 }

func sfntChecksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		if i+4 <= len(data) {
			sum += binary.BigEndian.Uint32(data[i : i+4])
			continue
		}
		var tail [4]byte
		copy(tail[:], data[i:])
		sum += binary.BigEndian.Uint32(tail[:])
	}
	return sum
}
