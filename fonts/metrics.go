package fonts

// Builtin core faces. The width tables cover the printable ASCII range
// of the standard AFM files; codes outside it measure at the face's
// default width. Core fonts are written without embedded files, so
// viewers substitute their own complete metrics at display time.

const (
	flagFixedPitch  = 1 << 0
	flagSerif       = 1 << 1
	flagNonsymbolic = 1 << 5
	flagItalic      = 1 << 6
)

type builtinDef struct {
	family    string
	bold      bool
	italic    bool
	name      string
	widths    *[95]int16
	ascent    float64
	descent   float64
	capHeight float64
	stemV     int
	flags     int
	italicAng float64
	bbox      [4]float64
}

func registerBuiltinFaces(m map[faceKey]*Face) {
	defs := []builtinDef{
		{"helvetica", false, false, "Helvetica", &helveticaWidths, 718, -207, 718, 88, flagNonsymbolic, 0, [4]float64{-166, -225, 1000, 931}},
		{"helvetica", true, false, "Helvetica-Bold", &helveticaBoldWidths, 718, -207, 718, 140, flagNonsymbolic, 0, [4]float64{-170, -228, 1003, 962}},
		{"helvetica", false, true, "Helvetica-Oblique", &helveticaWidths, 718, -207, 718, 88, flagNonsymbolic | flagItalic, -12, [4]float64{-170, -225, 1116, 931}},
		{"helvetica", true, true, "Helvetica-BoldOblique", &helveticaBoldWidths, 718, -207, 718, 140, flagNonsymbolic | flagItalic, -12, [4]float64{-174, -228, 1114, 962}},
		{"times", false, false, "Times-Roman", &timesRomanWidths, 683, -217, 662, 84, flagNonsymbolic | flagSerif, 0, [4]float64{-168, -218, 1000, 898}},
		{"times", true, false, "Times-Bold", &timesBoldWidths, 683, -217, 676, 139, flagNonsymbolic | flagSerif, 0, [4]float64{-168, -218, 1000, 935}},
		{"times", false, true, "Times-Italic", &timesItalicWidths, 683, -217, 653, 76, flagNonsymbolic | flagSerif | flagItalic, -15.5, [4]float64{-169, -217, 1010, 883}},
		{"times", true, true, "Times-BoldItalic", &timesBoldItalicWidths, 683, -217, 669, 121, flagNonsymbolic | flagSerif | flagItalic, -15, [4]float64{-200, -218, 996, 921}},
		{"courier", false, false, "Courier", nil, 629, -157, 562, 51, flagNonsymbolic | flagFixedPitch, 0, [4]float64{-23, -250, 715, 805}},
		{"courier", true, false, "Courier-Bold", nil, 629, -157, 562, 106, flagNonsymbolic | flagFixedPitch, 0, [4]float64{-113, -250, 749, 801}},
		{"courier", false, true, "Courier-Oblique", nil, 629, -157, 562, 51, flagNonsymbolic | flagFixedPitch | flagItalic, -12, [4]float64{-27, -250, 849, 805}},
		{"courier", true, true, "Courier-BoldOblique", nil, 629, -157, 562, 106, flagNonsymbolic | flagFixedPitch | flagItalic, -12, [4]float64{-57, -250, 869, 801}},
	}
	for _, d := range defs {
		m[faceKey{family: d.family, bold: d.bold, italic: d.italic}] = newBuiltinFace(d)
	}
}

func newBuiltinFace(d builtinDef) *Face {
	f := &Face{
		Name:        d.name,
		Builtin:     true,
		Ascent:      d.ascent,
		Descent:     d.descent,
		CapHeight:   d.capHeight,
		StemV:       d.stemV,
		Flags:       d.flags,
		ItalicAngle: d.italicAng,
		BBox:        d.bbox,
	}
	if d.widths == nil {
		// Courier variants are fixed pitch.
		for i := 0x20; i <= 0x7E; i++ {
			f.charWidths[i] = 600
		}
		f.defaultWidth = 600
		return f
	}
	var sum, n int
	for i, w := range d.widths {
		f.charWidths[0x20+i] = int(w)
		sum += int(w)
		n++
	}
	f.defaultWidth = sum / n
	return f
}

var helveticaWidths = [95]int16{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]int16{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

var timesRomanWidths = [95]int16{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
	921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
	556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
	333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
	500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

var timesBoldWidths = [95]int16{
	250, 333, 555, 500, 500, 1000, 833, 278, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333, 570, 570, 570, 500,
	930, 722, 667, 722, 722, 667, 611, 778, 778, 389, 500, 778, 667, 944, 722, 778,
	611, 778, 722, 556, 667, 722, 722, 1000, 722, 722, 667, 333, 278, 333, 581, 500,
	333, 500, 556, 444, 556, 444, 333, 500, 556, 278, 333, 556, 278, 833, 556, 500,
	556, 556, 444, 389, 333, 556, 500, 722, 500, 500, 444, 394, 220, 394, 520,
}

var timesItalicWidths = [95]int16{
	250, 333, 420, 500, 500, 833, 778, 214, 333, 333, 500, 675, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333, 675, 675, 675, 500,
	920, 611, 611, 667, 722, 611, 611, 722, 722, 333, 444, 667, 556, 833, 667, 722,
	611, 722, 611, 500, 556, 722, 611, 833, 611, 556, 556, 389, 278, 389, 422, 500,
	333, 500, 500, 444, 500, 444, 278, 500, 500, 278, 278, 444, 278, 722, 500, 500,
	500, 500, 389, 389, 278, 500, 444, 667, 444, 444, 389, 400, 275, 400, 541,
}

var timesBoldItalicWidths = [95]int16{
	250, 389, 555, 500, 500, 833, 778, 278, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333, 570, 570, 570, 500,
	832, 667, 667, 667, 722, 667, 667, 722, 778, 389, 500, 667, 611, 889, 722, 722,
	611, 722, 667, 556, 611, 722, 667, 889, 667, 611, 611, 333, 278, 333, 570, 500,
	333, 500, 500, 444, 500, 444, 333, 500, 556, 278, 278, 500, 278, 778, 556, 500,
	500, 500, 389, 389, 278, 556, 444, 667, 500, 444, 389, 348, 220, 348, 570,
}
