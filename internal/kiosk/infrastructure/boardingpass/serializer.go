// Package boardingpass renders tickets as printable documents: a multi-page
// boarding pass with one page per passenger, and a single-page receipt.
package boardingpass

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/encoding/charmap"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
)

const (
	fileHeader = "%PDF-1.4\n%\xE2\xE3\xCF\xD3\n"
	freeEntry  = "0000000000 65535 f \n"
)

// ContentType is the media type of Serializer output.
const ContentType = "application/pdf"

// FileName is the conventional export name, e.g. "BoardingPass_PK0001.pdf".
func FileName(ticketID string) string {
	return "BoardingPass_" + ticketID + ".pdf"
}

// Serializer writes boarding passes. Object 1 is the catalog, 2 the page tree,
// then a page and its content stream per passenger, and last the font shared by
// every page. It is safe for concurrent use.
type Serializer struct {
	mu     sync.Mutex
	random domain.RandomSource
}

type Option func(*Serializer)

// WithRandom sets the source of barcode numbers.
func WithRandom(random domain.RandomSource) Option {
	return func(s *Serializer) { s.random = random }
}

func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{random: defaultRandom{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render builds the complete document in memory.
func (s *Serializer) Render(ticket domain.Ticket) ([]byte, error) {
	if ticket.ID == "" {
		return nil, domain.ValidationError{Field: "ticket", Msg: "ticket id is required"}
	}
	if ticket.Passengers < domain.MinPassengers {
		return nil, domain.ValidationError{Field: "passengers", Msg: "ticket has no passengers"}
	}

	pages := ticket.Passengers
	fontObj := 3 + 2*pages
	doc := newDocument(fontObj)

	doc.object("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	doc.object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, ""), pages))

	for n := 1; n <= pages; n++ {
		contentObj := doc.next() + 1
		doc.object(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>",
			pageWidth, pageHeight, contentObj, fontObj))
		doc.stream(latin1(pageContent(ticket, n, s.barcode())))
	}

	doc.object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	return doc.finish(), nil
}

// Write renders the ticket and hands the whole document to w in one call.
func (s *Serializer) Write(w io.Writer, ticket domain.Ticket) error {
	data, err := s.Render(ticket)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return domain.IOError{Op: "write boarding pass", Err: err}
	}
	return nil
}

// WriteFile writes the boarding pass to path. The file is closed on every path
// and removed again when writing fails.
func (s *Serializer) WriteFile(path string, ticket domain.Ticket) (err error) {
	data, err := s.Render(ticket)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return domain.IOError{Op: "create boarding pass", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = domain.IOError{Op: "close boarding pass", Path: path, Err: cerr}
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return domain.IOError{Op: "write boarding pass", Path: path, Err: err}
	}
	return nil
}

func (s *Serializer) barcode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.random.IntN(barcodeDigits)
}

// document tracks object offsets while the body is written.
type document struct {
	buf     bytes.Buffer
	offsets []int
	size    int
}

func newDocument(lastObj int) *document {
	d := &document{offsets: make([]int, 0, lastObj), size: lastObj + 1}
	d.buf.WriteString(fileHeader)
	return d
}

// next is the number the next object will get.
func (d *document) next() int {
	return len(d.offsets) + 1
}

func (d *document) begin() {
	d.offsets = append(d.offsets, d.buf.Len())
	fmt.Fprintf(&d.buf, "%d 0 obj\n", len(d.offsets))
}

func (d *document) object(body string) {
	d.begin()
	d.buf.WriteString(body)
	d.buf.WriteString("\nendobj\n")
}

func (d *document) stream(payload []byte) {
	d.begin()
	fmt.Fprintf(&d.buf, "<< /Length %d >>\nstream\n", len(payload))
	d.buf.Write(payload)
	d.buf.WriteString("endstream\nendobj\n")
}

func (d *document) finish() []byte {
	xref := d.buf.Len()
	fmt.Fprintf(&d.buf, "xref\n0 %d\n", d.size)
	d.buf.WriteString(freeEntry)
	for _, off := range d.offsets {
		fmt.Fprintf(&d.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&d.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", d.size, xref)
	return d.buf.Bytes()
}

// latin1 encodes s as ISO-8859-1. Runes outside the charset become '?'.
func latin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int { return rand.IntN(n) }
