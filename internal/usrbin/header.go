// Package usrbin decodes FLUKA USRBIN ASCII dumps: the output of
// usbrea applied to a merged binary estimator file.
//
// The dump is a free-form header describing a rectilinear voxel grid
// followed by the scalar field as whitespace-separated scientific
// notation numbers. FLUKA stores the field as A(ix,iy,iz) in Fortran
// column-major order, so the X index varies fastest on disk.
// Reshaping with any other axis order silently transposes the data
// without raising an error; [Reshape] is the single correctness
// critical step of this package.
package usrbin

import (
	"fmt"
	"regexp"
	"strconv"
)

// Header holds axis bounds and bin counts for the three spatial axes.
type Header struct {
	XMin, XMax float64
	NX         int
	YMin, YMax float64
	NY         int
	ZMin, ZMax float64
	NZ         int
}

// Voxels is the expected flat element count.
func (h Header) Voxels() int { return h.NX * h.NY * h.NZ }

// Valid reports whether every axis has at least one bin.
func (h Header) Valid() bool { return h.NX > 0 && h.NY > 0 && h.NZ > 0 }

// VoxelVolume is dx*dy*dz of a single bin in cm^3.
func (h Header) VoxelVolume() float64 {
	dx := (h.XMax - h.XMin) / float64(h.NX)
	dy := (h.YMax - h.YMin) / float64(h.NY)
	dz := (h.ZMax - h.ZMin) / float64(h.NZ)
	return dx * dy * dz
}

// XEdges returns the NX+1 bin edges along X.
func (h Header) XEdges() []float64 { return edges(h.XMin, h.XMax, h.NX) }

// YEdges returns the NY+1 bin edges along Y.
func (h Header) YEdges() []float64 { return edges(h.YMin, h.YMax, h.NY) }

// ZEdges returns the NZ+1 bin edges along Z.
func (h Header) ZEdges() []float64 { return edges(h.ZMin, h.ZMax, h.NZ) }

// ZCenters returns the NZ bin midpoints along Z.
func (h Header) ZCenters() []float64 {
	dz := (h.ZMax - h.ZMin) / float64(h.NZ)
	centers := make([]float64, h.NZ)
	for i := range centers {
		centers[i] = h.ZMin + dz*(float64(i)+0.5)
	}
	return centers
}

func edges(min, max float64, n int) []float64 {
	e := make([]float64, n+1)
	step := (max - min) / float64(n)
	for i := range e {
		e[i] = min + step*float64(i)
	}
	e[n] = max
	return e
}

// Axis header lines are free-form ("X coordinate: from -100 to 100 cm,
// 100 bins") and may wrap inconsistently, so axes are located by
// pattern match over the whole text rather than by fixed columns.
var axisRe = map[string]*regexp.Regexp{
	"X": regexp.MustCompile(`X coordinate: from\s+([-\d.E+]+)\s+to\s+([-\d.E+]+)\s+cm,\s+(\d+)\s+bins`),
	"Y": regexp.MustCompile(`Y coordinate: from\s+([-\d.E+]+)\s+to\s+([-\d.E+]+)\s+cm,\s+(\d+)\s+bins`),
	"Z": regexp.MustCompile(`Z coordinate: from\s+([-\d.E+]+)\s+to\s+([-\d.E+]+)\s+cm,\s+(\d+)\s+bins`),
}

// ParseHeader scans raw dump text for the three axis declarations.
func ParseHeader(text string) (Header, error) {
	var h Header
	for axis, re := range axisRe {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return Header{}, fmt.Errorf("usrbin: %s axis declaration not found", axis)
		}
		min, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Header{}, fmt.Errorf("usrbin: %s axis min: %w", axis, err)
		}
		max, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Header{}, fmt.Errorf("usrbin: %s axis max: %w", axis, err)
		}
		bins, err := strconv.Atoi(m[3])
		if err != nil {
			return Header{}, fmt.Errorf("usrbin: %s axis bins: %w", axis, err)
		}
		switch axis {
		case "X":
			h.XMin, h.XMax, h.NX = min, max, bins
		case "Y":
			h.YMin, h.YMax, h.NY = min, max, bins
		case "Z":
			h.ZMin, h.ZMax, h.NZ = min, max, bins
		}
	}
	return h, nil
}
