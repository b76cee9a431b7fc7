package pdf

import (
	"bytes"
	"compress/zlib"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/dankennedy/MigraDoc/fonts"
)

const fileHeader = "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"

// Save writes the document to the given file path.
func (d *Document) Save(path string) error {
	if path == "" {
		return fmt.Errorf("save: empty path")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := d.SaveStream(f, false); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// SaveStream serializes the document to w. When closeStream is set and w
// is an io.Closer, the stream is closed afterwards.
func (d *Document) SaveStream(w io.Writer, closeStream bool) error {
	err := d.write(w)
	if closeStream {
		if c, ok := w.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}
	return err
}

// fileWriter assembles the numbered object set for one serialization.
type fileWriter struct {
	doc     *Document
	objects map[int]obj
	num     int
	catalog int
	info    int
}

func (w *fileWriter) next() int {
	w.num++
	return w.num
}

func (w *fileWriter) add(num int, o obj) { w.objects[num] = o }

func (d *Document) write(out io.Writer) error {
	if len(d.pages) == 0 {
		return fmt.Errorf("document has no pages")
	}
	w := &fileWriter{doc: d, objects: make(map[int]obj)}
	if err := w.build(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	nums := make([]int, 0, len(w.objects))
	for n := range w.objects {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	offsets := make(map[int]int64, len(nums))
	for _, n := range nums {
		offsets[n] = int64(buf.Len())
		writeIndirect(&buf, n, w.objects[n])
	}

	xrefOffset := buf.Len()
	maxNum := nums[len(nums)-1]
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	ids := d.fileID()
	trailer := newDict()
	trailer.set("Size", integer(maxNum+1))
	trailer.set("Root", ref(w.catalog))
	if w.info != 0 {
		trailer.set("Info", ref(w.info))
	}
	trailer.set("ID", newArray(hexString(ids[0]), hexString(ids[1])))
	buf.WriteString("trailer\n")
	trailer.writeTo(&buf)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (w *fileWriter) build() error {
	d := w.doc
	catalogNum := w.next()
	pagesNum := w.next()
	infoNum := w.buildInfo()

	fontRefs := make(map[*Font]int, len(d.fontOrder))
	for _, f := range d.fontOrder {
		n, err := w.buildFont(f)
		if err != nil {
			return err
		}
		fontRefs[f] = n
	}
	imageRefs := make(map[*Image]int, len(d.images))
	for _, img := range d.images {
		n, err := w.buildImage(img)
		if err != nil {
			return err
		}
		imageRefs[img] = n
	}

	kids := newArray()
	for _, p := range d.pages {
		contentNum := w.next()
		data := p.content.Bytes()
		cdict := newDict()
		if d.Compress {
			enc, err := flateEncode(data)
			if err != nil {
				return err
			}
			cdict.set("Filter", name("FlateDecode"))
			data = enc
		}
		w.add(contentNum, newStream(cdict, data))

		pageNum := w.next()
		pd := newDict()
		pd.set("Type", name("Page"))
		pd.set("Parent", ref(pagesNum))
		pd.set("MediaBox", newArray(integer(0), integer(0), real(p.width), real(p.height)))
		pd.set("Resources", w.pageResources(p, fontRefs, imageRefs))
		pd.set("Contents", ref(contentNum))
		w.add(pageNum, pd)
		kids.append(ref(pageNum))
	}

	pages := newDict()
	pages.set("Type", name("Pages"))
	pages.set("Count", integer(len(d.pages)))
	pages.set("Kids", kids)
	w.add(pagesNum, pages)

	catalog := newDict()
	catalog.set("Type", name("Catalog"))
	catalog.set("Pages", ref(pagesNum))
	if d.Info.Language != "" {
		catalog.set("Lang", textString(d.Info.Language))
	}
	if d.Info.Title != "" {
		vp := newDict()
		vp.set("DisplayDocTitle", boolean(true))
		catalog.set("ViewerPreferences", vp)
	}
	w.add(catalogNum, catalog)
	w.catalog = catalogNum
	w.info = infoNum
	return nil
}

func (w *fileWriter) pageResources(p *Page, fontRefs map[*Font]int, imageRefs map[*Image]int) *dict {
	res := newDict()
	if len(p.fonts) > 0 {
		fd := newDict()
		for _, f := range w.doc.fontOrder {
			if p.fonts[f] {
				fd.set(name(f.name), ref(fontRefs[f]))
			}
		}
		res.set("Font", fd)
	}
	if len(p.images) > 0 {
		xd := newDict()
		for _, img := range w.doc.images {
			if p.images[img] {
				xd.set(name(w.doc.imageNames[img]), ref(imageRefs[img]))
			}
		}
		res.set("XObject", xd)
	}
	return res
}

func (w *fileWriter) buildInfo() int {
	d := w.doc
	info := newDict()
	set := func(k name, v string) {
		if v != "" {
			info.set(k, textString(v))
		}
	}
	set("Title", d.Info.Title)
	set("Author", d.Info.Author)
	set("Subject", d.Info.Subject)
	set("Keywords", d.Info.Keywords)
	set("Creator", d.Info.Creator)
	info.set("Producer", textString(Product))
	if !d.Info.CreationDate.IsZero() {
		info.set("CreationDate", literal(pdfDate(d.Info.CreationDate)))
	}
	if !d.Info.ModDate.IsZero() {
		info.set("ModDate", literal(pdfDate(d.Info.ModDate)))
	}
	for _, key := range d.propKeys {
		info.set(name(strings.TrimPrefix(key, "/")), textString(d.props[key]))
	}
	num := w.next()
	w.add(num, info)
	return num
}

func (w *fileWriter) buildFont(f *Font) (int, error) {
	if f.face.Builtin {
		num := w.next()
		fd := newDict()
		fd.set("Type", name("Font"))
		fd.set("Subtype", name("Type1"))
		fd.set("BaseFont", name(f.face.Name))
		fd.set("Encoding", name("WinAnsiEncoding"))
		w.add(num, fd)
		return num, nil
	}
	return w.buildType0(f)
}

// buildType0 writes the composite font chain: Type0 dict, CIDFontType2
// descendant, descriptor with the (possibly subset) font file, and the
// ToUnicode CMap for text extraction.
func (w *fileWriter) buildType0(f *Font) (int, error) {
	face := f.face
	keep := fonts.GlyphClosure(face, f.usedGIDs(), f.runs)
	fontData, subsetted := face.EmbedData(f.embedding, keep)

	baseFont := face.Name
	if subsetted {
		baseFont = subsetTag(face.Name, keep) + "+" + baseFont
	}

	var fileNum int
	if len(fontData) > 0 {
		sd := newDict()
		if face.FileType == "FontFile2" {
			sd.set("Length1", integer(len(fontData)))
		} else {
			sd.set("Subtype", name("OpenType"))
		}
		data := fontData
		if w.doc.Compress {
			enc, err := flateEncode(data)
			if err != nil {
				return 0, err
			}
			sd.set("Filter", name("FlateDecode"))
			data = enc
		}
		fileNum = w.next()
		w.add(fileNum, newStream(sd, data))
	}

	descNum := w.next()
	desc := newDict()
	desc.set("Type", name("FontDescriptor"))
	desc.set("FontName", name(baseFont))
	flags := face.Flags
	if flags == 0 {
		flags = 4
	}
	desc.set("Flags", integer(flags))
	desc.set("ItalicAngle", real(face.ItalicAngle))
	desc.set("Ascent", real(face.Ascent))
	desc.set("Descent", real(face.Descent))
	desc.set("CapHeight", real(face.CapHeight))
	stem := face.StemV
	if stem == 0 {
		stem = 80
	}
	desc.set("StemV", integer(stem))
	desc.set("FontBBox", newArray(real(face.BBox[0]), real(face.BBox[1]), real(face.BBox[2]), real(face.BBox[3])))
	if fileNum != 0 {
		desc.set(name(face.FileType), ref(fileNum))
	}
	w.add(descNum, desc)

	cidNum := w.next()
	cid := newDict()
	cid.set("Type", name("Font"))
	cid.set("Subtype", name("CIDFontType2"))
	cid.set("BaseFont", name(baseFont))
	csi := newDict()
	csi.set("Registry", literal("Adobe"))
	csi.set("Ordering", literal("Identity"))
	csi.set("Supplement", integer(0))
	cid.set("CIDSystemInfo", csi)
	cid.set("FontDescriptor", ref(descNum))
	cid.set("DW", integer(face.DefaultWidth()))
	if warr := cidWidths(f); len(warr.items) > 0 {
		cid.set("W", warr)
	}
	cid.set("CIDToGIDMap", name("Identity"))
	w.add(cidNum, cid)

	uniNum, err := w.buildToUnicode(f, baseFont)
	if err != nil {
		return 0, err
	}

	num := w.next()
	fd := newDict()
	fd.set("Type", name("Font"))
	fd.set("Subtype", name("Type0"))
	fd.set("BaseFont", name(baseFont))
	fd.set("Encoding", name("Identity-H"))
	fd.set("DescendantFonts", newArray(ref(cidNum)))
	if uniNum != 0 {
		fd.set("ToUnicode", ref(uniNum))
	}
	w.add(num, fd)
	return num, nil
}

// cidWidths encodes the W array, grouping runs of consecutive glyph IDs
// that share an advance width.
func cidWidths(f *Font) *array {
	arr := newArray()
	if len(f.gids) == 0 {
		return arr
	}
	gids := make([]int, 0, len(f.gids))
	for gid := range f.gids {
		gids = append(gids, gid)
	}
	sort.Ints(gids)
	start, prev := gids[0], gids[0]
	current := f.face.GlyphWidth(gids[0])
	for _, gid := range gids[1:] {
		wd := f.face.GlyphWidth(gid)
		if wd == current && gid == prev+1 {
			prev = gid
			continue
		}
		arr.append(integer(start), integer(prev), integer(current))
		start, prev, current = gid, gid, wd
	}
	arr.append(integer(start), integer(prev), integer(current))
	return arr
}

func (w *fileWriter) buildToUnicode(f *Font, baseFont string) (int, error) {
	if len(f.gids) == 0 {
		return 0, nil
	}
	gids := make([]int, 0, len(f.gids))
	for gid := range f.gids {
		gids = append(gids, gid)
	}
	sort.Ints(gids)

	cmapName := strings.ReplaceAll(baseFont, " ", "") + "-UTF16"
	var buf bytes.Buffer
	buf.WriteString("/CIDInit /ProcSet findresource begin\n")
	buf.WriteString("12 dict begin\n")
	buf.WriteString("begincmap\n")
	buf.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> def\n")
	fmt.Fprintf(&buf, "/CMapName /%s def\n", cmapName)
	buf.WriteString("/CMapType 2 def\n")
	buf.WriteString("1 begincodespacerange\n")
	fmt.Fprintf(&buf, "<%04X> <%04X>\n", gids[0], gids[len(gids)-1])
	buf.WriteString("endcodespacerange\n")
	for i := 0; i < len(gids); {
		chunk := len(gids) - i
		if chunk > 100 {
			chunk = 100
		}
		fmt.Fprintf(&buf, "%d beginbfchar\n", chunk)
		for j := 0; j < chunk; j++ {
			gid := gids[i+j]
			fmt.Fprintf(&buf, "<%04X> <%s>\n", gid, utf16Hex(f.gids[gid]))
		}
		buf.WriteString("endbfchar\n")
		i += chunk
	}
	buf.WriteString("endcmap\n")
	buf.WriteString("CMapName currentdict /CMap defineresource pop\n")
	buf.WriteString("end\nend\n")

	data := buf.Bytes()
	sd := newDict()
	if w.doc.Compress {
		enc, err := flateEncode(data)
		if err != nil {
			return 0, err
		}
		sd.set("Filter", name("FlateDecode"))
		data = enc
	}
	num := w.next()
	w.add(num, newStream(sd, data))
	return num, nil
}

func utf16Hex(r rune) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune{r}) {
		fmt.Fprintf(&b, "%04X", u)
	}
	return b.String()
}

// subsetTag derives the six-letter subset prefix from the face name and
// glyph set, stable across runs for the same usage.
func subsetTag(faceName string, keep map[int]bool) string {
	gids := make([]int, 0, len(keep))
	for gid := range keep {
		gids = append(gids, gid)
	}
	sort.Ints(gids)
	h := sha256.New()
	h.Write([]byte(faceName))
	for _, gid := range gids {
		h.Write([]byte{byte(gid >> 8), byte(gid)})
	}
	sum := h.Sum(nil)
	tag := make([]byte, 6)
	for i := range tag {
		tag[i] = 'A' + sum[i]%26
	}
	return string(tag)
}

func (w *fileWriter) buildImage(img *Image) (int, error) {
	var smaskNum int
	if img.smask != nil {
		n, err := w.buildImage(img.smask)
		if err != nil {
			return 0, err
		}
		smaskNum = n
	}
	d := newDict()
	d.set("Type", name("XObject"))
	d.set("Subtype", name("Image"))
	d.set("Width", integer(img.Width))
	d.set("Height", integer(img.Height))
	d.set("ColorSpace", name(img.colorSpace))
	d.set("BitsPerComponent", integer(img.bitsPerComponent))
	data := img.data
	switch {
	case img.filter == "DCTDecode":
		d.set("Filter", name("DCTDecode"))
	case w.doc.Compress:
		enc, err := flateEncode(data)
		if err != nil {
			return 0, err
		}
		d.set("Filter", name("FlateDecode"))
		data = enc
	}
	if img.decodeInverted {
		d.set("Decode", newArray(
			integer(1), integer(0), integer(1), integer(0),
			integer(1), integer(0), integer(1), integer(0)))
	}
	if smaskNum != 0 {
		d.set("SMask", ref(smaskNum))
	}
	num := w.next()
	w.add(num, newStream(d, data))
	return num, nil
}

// fileID derives the trailer identifier pair, content-addressed when the
// document is deterministic, random otherwise.
func (d *Document) fileID() [2][]byte {
	seed := d.idSeed()
	if d.Deterministic {
		return [2][]byte{seed, seed}
	}
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		id = seed
	}
	dup := make([]byte, len(id))
	copy(dup, id)
	return [2][]byte{id, dup}
}

func (d *Document) idSeed() []byte {
	h := sha256.New()
	h.Write([]byte(fileHeader))
	for _, s := range []string{d.Info.Title, d.Info.Author, d.Info.Subject, d.Info.Keywords, d.Info.Creator, d.Info.Language} {
		h.Write([]byte(s))
	}
	for _, k := range d.propKeys {
		h.Write([]byte(k))
		h.Write([]byte(d.props[k]))
	}
	fmt.Fprintf(h, "%d", len(d.pages))
	for _, p := range d.pages {
		fmt.Fprintf(h, "%s-%s-%d", fnum(p.width), fnum(p.height), p.content.Len())
	}
	return h.Sum(nil)[:16]
}

// flateEncode compresses data as a zlib stream, the envelope FlateDecode
// consumers expect.
func flateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfDate(t time.Time) string {
	_, off := t.Zone()
	if off == 0 {
		return t.Format("D:20060102150405Z")
	}
	sign := byte('+')
	if off < 0 {
		sign = '-'
		off = -off
	}
	return fmt.Sprintf("%s%c%02d'%02d'", t.Format("D:20060102150405"), sign, off/3600, off%3600/60)
}
