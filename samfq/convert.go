package samfq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/dustin/go-humanize"
)

// HeaderMarker starts every SAM header line.
const HeaderMarker = '@'

// MaxLineBytes bounds a single SAM line.
const MaxLineBytes = 64 << 20

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	return scanner
}

func isHeader(line string) bool {
	return len(line) > 0 && line[0] == HeaderMarker
}

// EstimateRecordCount streams r once and counts the lines that are not
// headers. It only sizes progress reporting for the conversion pass.
func EstimateRecordCount(r io.Reader) (int, error) {
	total := 0
	scanner := newLineScanner(r)
	for scanner.Scan() {
		if !isHeader(scanner.Text()) {
			total++
		}
	}

	return total, pfx.Err(scanner.Err())
}

// Summary is the tally of one conversion.
type Summary struct {
	Total        int
	Converted    int
	Skipped      int
	TooFewFields int
	MissingTags  int
}

func (s Summary) String() string {
	return fmt.Sprintf("Total reads processed: %s\nReads converted: %s\nReads skipped due to missing information: %s (%s with missing tags, %s with too few fields)",
		humanize.Comma(int64(s.Total)),
		humanize.Comma(int64(s.Converted)),
		humanize.Comma(int64(s.Skipped)),
		humanize.Comma(int64(s.MissingTags)),
		humanize.Comma(int64(s.TooFewFields)))
}

// Converter writes one FASTQ read per accepted SAM line and keeps the tally.
type Converter struct {
	w       *Writer
	summary Summary

	// Expected is the number of data lines anticipated, for progress logging.
	// Zero disables the percentage.
	Expected int

	// ProgressEvery logs progress after that many data lines. Zero disables
	// progress logging.
	ProgressEvery int
}

func NewConverter(w io.Writer) *Converter {
	return &Converter{w: NewWriter(w)}
}

func (c *Converter) Summary() Summary {
	return c.summary
}

// Line handles one input line. Header lines are ignored. Rejected records are
// counted and yield a nil error; only a failure to write is returned.
func (c *Converter) Line(line string) error {
	if isHeader(line) {
		return nil
	}
	c.summary.Total++
	c.logProgress()

	record, err := ParseRecord(line)
	if err != nil {
		var rfe *RecordFormatError
		if !errors.As(err, &rfe) {
			return err
		}

		c.summary.Skipped++
		switch rfe.Reason {
		case ReasonTooFewFields:
			c.summary.TooFewFields++
		case ReasonMissingTag:
			c.summary.MissingTags++
		}
		return nil
	}

	if err := c.w.Write(&Read{ID: record.ReadName(), Seq: record.Seq, Unk: "+", Qual: record.Qual}); err != nil {
		return pfx.Err(err)
	}
	c.summary.Converted++

	return nil
}

func (c *Converter) logProgress() {
	if c.ProgressEvery <= 0 || c.summary.Total%c.ProgressEvery != 0 {
		return
	}

	if c.Expected > 0 {
		log.Printf("Processed %s of %s reads (%.1f%%)", humanize.Comma(int64(c.summary.Total)), humanize.Comma(int64(c.Expected)), 100*float64(c.summary.Total)/float64(c.Expected))
		return
	}
	log.Printf("Processed %s reads", humanize.Comma(int64(c.summary.Total)))
}

// Convert streams every line of r through Line, in input order.
func (c *Converter) Convert(r io.Reader) (Summary, error) {
	scanner := newLineScanner(r)
	for scanner.Scan() {
		if err := c.Line(strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return c.summary, err
		}
	}

	return c.summary, pfx.Err(scanner.Err())
}
