package atlas

import (
	"encoding/binary"
	"log"
	"math"
	"os"
)

// Point is one decoded (x, y) coordinate.
type Point struct {
	X, Y float32
}

// PointSet holds the decoded coordinates of one file, in file order.
type PointSet []Point

// XY splits the set into separate x and y slices.
func (p PointSet) XY() (xs, ys []float64) {
	xs = make([]float64, len(p))
	ys = make([]float64, len(p))
	for i, pt := range p {
		xs[i] = float64(pt.X)
		ys[i] = float64(pt.Y)
	}
	return xs, ys
}

// FloatCount is the number of whole little-endian float32 values in b.
func FloatCount(b []byte) int {
	return len(b) / 4
}

// Decode interprets b as packed little-endian float32 values and pairs them
// into points. An odd trailing float, and any trailing partial word, are
// dropped. An empty buffer yields an empty set.
func Decode(b []byte) PointSet {
	n := FloatCount(b)
	n -= n % 2

	points := make(PointSet, 0, n/2)
	for i := 0; i < n; i += 2 {
		points = append(points, Point{
			X: math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4*i+4:])),
		})
	}

	return points
}

// ReadPointsFile reads and decodes a local coordinate file. Read failures are
// returned as *DecodeError.
func ReadPointsFile(path string) (PointSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	if FloatCount(b)%2 != 0 {
		log.Printf("%s holds an odd number of floats (%d), dropping the last one", path, FloatCount(b))
	}

	return Decode(b), nil
}
