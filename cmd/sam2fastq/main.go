// sam2fastq converts SAM text to FASTQ, keeping only reads tagged with a cell
// barcode (CB), a UMI (UB) and a read group (RG), and appending those values
// to the read name. The input is read twice: once to count reads for progress
// reporting and once to convert.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/sciutil"
	_ "github.com/carbocation/sciutil/compileinfoprint"
	"github.com/carbocation/sciutil/samfq"
	"github.com/dustin/go-humanize"
)

var (
	STDOUT = bufio.NewWriterSize(os.Stdout, 4096)
)

func main() {
	defer STDOUT.Flush()

	var samPath, outPath string
	var progressEvery int

	flag.StringVar(&samPath, "sam", "", "Path to the SAM file. May be a gs:// path and may be compressed.")
	flag.StringVar(&outPath, "out", "-", "Path to the FASTQ output, or - for stdout.")
	flag.IntVar(&progressEvery, "progress-every", 1000000, "Log progress after this many reads. 0 disables progress logging.")
	flag.Parse()

	if samPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths.
	var client *storage.Client
	if strings.HasPrefix(samPath, "gs://") {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}

	log.Println("Pass 1: counting reads")
	total, err := countReads(samPath, client)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Fprintf(os.Stderr, "total_reads\t%d\n", total)

	log.Println("Pass 2: converting")
	summary, err := convert(samPath, outPath, client, total, progressEvery)
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Fprintf(os.Stderr, "\nConversion complete.\n%s\n", summary)
}

func countReads(samPath string, client *storage.Client) (int, error) {
	f, size, err := sciutil.OpenInput(samPath, client)
	if err != nil {
		return 0, pfx.Err(err)
	}
	defer f.Close()

	log.Printf("Reading %s (%s)", samPath, humanize.Bytes(uint64(size)))

	return samfq.EstimateRecordCount(f)
}

func convert(samPath, outPath string, client *storage.Client, expected, progressEvery int) (samfq.Summary, error) {
	in, _, err := sciutil.OpenInput(samPath, client)
	if err != nil {
		return samfq.Summary{}, pfx.Err(err)
	}
	defer in.Close()

	if outPath == "-" {
		c := samfq.NewConverter(STDOUT)
		c.Expected = expected
		c.ProgressEvery = progressEvery
		return c.Convert(in)
	}

	f, err := os.Create(sciutil.ExpandHome(outPath))
	if err != nil {
		return samfq.Summary{}, pfx.Err(err)
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 1<<20)

	c := samfq.NewConverter(bw)
	c.Expected = expected
	c.ProgressEvery = progressEvery

	summary, err := c.Convert(in)
	if err != nil {
		return summary, err
	}
	if err := bw.Flush(); err != nil {
		return summary, pfx.Err(err)
	}

	return summary, pfx.Err(f.Close())
}
