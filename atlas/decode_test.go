package atlas

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func floatBytes(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func TestDecodeLengths(t *testing.T) {
	for n := 0; n < 9; n++ {
		vals := make([]float32, n)
		for i := range vals {
			vals[i] = float32(i)
		}
		b := floatBytes(vals...)

		if got := len(Decode(b)); got != n/2 {
			t.Errorf("%d floats: %d points, expected %d", n, got, n/2)
		}

		// A trailing partial word is never a float
		if got := len(Decode(append(b, 0xAA, 0xBB))); got != n/2 {
			t.Errorf("%d floats plus 2 bytes: %d points, expected %d", n, got, n/2)
		}
	}
}

func TestDecodeValues(t *testing.T) {
	points := Decode(floatBytes(1.5, -2.25, 3, 4, 99))

	expected := PointSet{{1.5, -2.25}, {3, 4}}
	if len(points) != len(expected) {
		t.Fatalf("got %v", points)
	}
	for i := range expected {
		if points[i] != expected[i] {
			t.Errorf("point %d: got %v, expected %v", i, points[i], expected[i])
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	if points := Decode(nil); points == nil || len(points) != 0 {
		t.Errorf("expected an empty, non-nil set, got %#v", points)
	}
}

func TestReadPointsFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "r0.bin")
	if err := os.WriteFile(path, floatBytes(1, 2, 3), 0644); err != nil {
		t.Fatal(err)
	}
	points, err := ReadPointsFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 || points[0] != (Point{1, 2}) {
		t.Errorf("got %v", points)
	}

	empty := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if points, err := ReadPointsFile(empty); err != nil || len(points) != 0 {
		t.Errorf("empty file: %v, %v", points, err)
	}

	_, err = ReadPointsFile(filepath.Join(dir, "missing.bin"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Errorf("expected a DecodeError, got %v", err)
	}
}
