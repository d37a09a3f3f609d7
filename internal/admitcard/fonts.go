package admitcard

import (
	_ "embed"

	"github.com/go-pdf/fpdf"
)

// textFont is the UTF-8 family used for student and exam values, so names
// outside cp1252 reach the page unchanged. Fixed captions stay on Helvetica.
const textFont = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

func addTextFonts(pdf *fpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(textFont, "", dejaVuRegular)
	pdf.AddUTF8FontFromBytes(textFont, "B", dejaVuBold)
}
