// Package samfq converts SAM text into FASTQ, keeping only reads that carry a
// cell barcode, a UMI and a read group, and folding those three values into
// the read name.
package samfq

import (
	"fmt"
	"strings"

	"github.com/biogo/hts/sam"
)

var (
	TagCB = sam.NewTag("CB")
	TagUB = sam.NewTag("UB")
	TagRG = sam.NewTag("RG")

	// RequiredTags must all be present, as Z-typed fields, for a read to be
	// converted.
	RequiredTags = []sam.Tag{TagCB, TagUB, TagRG}
)

// Map mandatory SAM columns to their positions
const (
	ColQName = 0
	ColSeq   = 9
	ColQual  = 10

	MinFields = ColQual + 1
)

// Tags holds the values of string-typed optional fields, keyed by tag.
type Tags map[sam.Tag]string

// ParseTags makes one pass over the raw fields of a record. A field counts
// only if it begins with "XX:Z:" for one of the wanted tags; the first such
// field wins and its value is everything after the second colon.
func ParseTags(fields []string, wanted []sam.Tag) Tags {
	tags := make(Tags, len(wanted))
	for _, field := range fields {
		if len(field) < 5 || field[2] != ':' || field[3] != 'Z' || field[4] != ':' {
			continue
		}

		tag := sam.NewTag(field[:2])
		if _, seen := tags[tag]; seen || !containsTag(wanted, tag) {
			continue
		}
		tags[tag] = field[5:]
	}

	return tags
}

// Missing lists the wanted tags absent from t, in the order given.
func (t Tags) Missing(wanted []sam.Tag) []sam.Tag {
	var out []sam.Tag
	for _, tag := range wanted {
		if _, ok := t[tag]; !ok {
			out = append(out, tag)
		}
	}
	return out
}

func containsTag(tags []sam.Tag, tag sam.Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Reason classifies why a record was not converted.
type Reason int

const (
	ReasonTooFewFields Reason = iota + 1
	ReasonMissingTag
)

func (r Reason) String() string {
	switch r {
	case ReasonTooFewFields:
		return "too few fields"
	case ReasonMissingTag:
		return "missing tag"
	}
	return "unknown"
}

// RecordFormatError rejects a single record. Conversion carries on.
type RecordFormatError struct {
	Reason  Reason
	Fields  int
	Missing []sam.Tag
}

func (e *RecordFormatError) Error() string {
	switch e.Reason {
	case ReasonTooFewFields:
		return fmt.Sprintf("record has %d fields, expected at least %d", e.Fields, MinFields)
	case ReasonMissingTag:
		names := make([]string, len(e.Missing))
		for i, tag := range e.Missing {
			names[i] = tag.String()
		}
		return "record lacks tags " + strings.Join(names, ",")
	}
	return "malformed record"
}

// Record is an accepted alignment line reduced to what the FASTQ output
// needs.
type Record struct {
	Name, Seq, Qual string
	CB, UB, RG      string
}

// ParseRecord splits one non-header SAM line and checks it for the required
// tags. Rejections are returned as *RecordFormatError.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, "\t")

	if len(fields) < MinFields {
		return Record{}, &RecordFormatError{Reason: ReasonTooFewFields, Fields: len(fields)}
	}

	tags := ParseTags(fields, RequiredTags)
	if missing := tags.Missing(RequiredTags); len(missing) > 0 {
		return Record{}, &RecordFormatError{Reason: ReasonMissingTag, Fields: len(fields), Missing: missing}
	}

	return Record{
		Name: fields[ColQName],
		Seq:  fields[ColSeq],
		Qual: fields[ColQual],
		CB:   tags[TagCB],
		UB:   tags[TagUB],
		RG:   tags[TagRG],
	}, nil
}

// ReadName is the FASTQ header line for r, including the leading @.
func (r Record) ReadName() string {
	return fmt.Sprintf("@%s_CB:%s_UB:%s_RG:%s", r.Name, r.CB, r.UB, r.RG)
}
