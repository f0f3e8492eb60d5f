package samfq

import "io"

var newline = []byte{'\n'}

// Read is one FASTQ record. ID includes the leading @ and Unk is the third
// line, conventionally "+".
type Read struct {
	ID, Seq, Unk, Qual string
}

// Writer writes FASTQ records. After the first failed write every later call
// returns the same error. Derived from
// https://github.com/grailbio/bio/blob/master/encoding/fastq/writer.go
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes r as four lines.
func (w *Writer) Write(r *Read) error {
	w.writeln(r.ID)
	w.writeln(r.Seq)
	w.writeln(r.Unk)
	w.writeln(r.Qual)
	return w.err
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}
