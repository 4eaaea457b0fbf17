package dataset

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/spectralab/plasmaspec/internal/errors"
)

// Split names of the dataset container.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

// SplitNames lists the container splits in storage order.
var SplitNames = []string{SplitTrain, SplitValidation, SplitTest}

var containerMagic = [4]byte{'S', 'P', 'D', 'C'}

const containerVersion uint16 = 1

// Attrs are the file-level attributes of a container.
type Attrs struct {
	UpdatedAt    string          `json:"updated_at"`
	TotalSamples int             `json:"total_samples"`
	RunID        string          `json:"run_id"`
	Config       json.RawMessage `json:"config"`
}

// SplitData holds one split's samples. Slices are index-aligned per sample.
type SplitData struct {
	Spectra      [][]float64
	Labels       [][]int32
	Compositions []json.RawMessage
}

// Len returns the number of samples in the split.
func (sd *SplitData) Len() int {
	return len(sd.Spectra)
}

// Append concatenates other onto the split.
func (sd *SplitData) Append(other *SplitData) {
	sd.Spectra = append(sd.Spectra, other.Spectra...)
	sd.Labels = append(sd.Labels, other.Labels...)
	sd.Compositions = append(sd.Compositions, other.Compositions...)
}

// Container is the in-memory form of the dataset file: one shared wavelength
// grid, three named splits and file-level attributes.
type Container struct {
	Wavelengths []float64
	Splits      map[string]*SplitData
	Attrs       Attrs
}

// NewContainer creates an empty container over the given grid.
func NewContainer(wavelengths []float64) *Container {
	splits := make(map[string]*SplitData, len(SplitNames))
	for _, name := range SplitNames {
		splits[name] = &SplitData{}
	}
	return &Container{Wavelengths: wavelengths, Splits: splits}
}

// TotalSamples counts samples across all splits.
func (c *Container) TotalSamples() int {
	var total int
	for _, sd := range c.Splits {
		total += sd.Len()
	}
	return total
}

type sectionInfo struct {
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`
}

type splitHeader struct {
	Samples      int         `json:"samples"`
	Spectra      sectionInfo `json:"spectra"`
	Labels       sectionInfo `json:"labels"`
	Compositions sectionInfo `json:"compositions"`
}

type containerHeader struct {
	Attrs       Attrs                  `json:"attrs"`
	Resolution  int                    `json:"resolution"`
	Wavelengths sectionInfo            `json:"wavelengths"`
	Splits      map[string]splitHeader `json:"splits"`
}

// WriteContainer serializes the container to path. Array sections are
// gzip-compressed. The file is written to a temporary sibling and renamed so
// a partially written container never replaces a valid one.
func WriteContainer(path string, c *Container) error {
	var data bytes.Buffer
	header := containerHeader{
		Attrs:      c.Attrs,
		Resolution: len(c.Wavelengths),
		Splits:     make(map[string]splitHeader, len(SplitNames)),
	}

	section, err := appendSection(&data, encodeFloats(c.Wavelengths))
	if err != nil {
		return containerError(err, path)
	}
	header.Wavelengths = section

	for _, name := range SplitNames {
		sd := c.Splits[name]
		sh := splitHeader{Samples: sd.Len()}

		if sh.Spectra, err = appendSection(&data, encodeFloats(flattenFloats(sd.Spectra))); err != nil {
			return containerError(err, path)
		}
		if sh.Labels, err = appendSection(&data, encodeLabels(flattenLabels(sd.Labels))); err != nil {
			return containerError(err, path)
		}
		compositions, err := json.Marshal(sd.Compositions)
		if err != nil {
			return containerError(err, path)
		}
		if sh.Compositions, err = appendSection(&data, compositions); err != nil {
			return containerError(err, path)
		}
		header.Splits[name] = sh
	}

	headerJSON, err := json.Marshal(&header)
	if err != nil {
		return containerError(err, path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return containerError(err, path)
	}
	defer os.Remove(tmp.Name())

	if err := writeFrames(tmp, headerJSON, data.Bytes()); err != nil {
		tmp.Close()
		return containerError(err, path)
	}
	if err := tmp.Close(); err != nil {
		return containerError(err, path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return containerError(err, path)
	}
	return nil
}

func writeFrames(w io.Writer, headerJSON, data []byte) error {
	if _, err := w.Write(containerMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, containerVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(headerJSON))); err != nil {
		return err
	}
	if _, err := w.Write(headerJSON); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadContainer loads the container at path.
func ReadContainer(path string) (*Container, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, containerError(err, path)
	}
	if len(raw) < 10 || !bytes.Equal(raw[:4], containerMagic[:]) {
		return nil, containerError(errors.Newf("not a dataset container").Build(), path)
	}
	version := binary.LittleEndian.Uint16(raw[4:6])
	if version != containerVersion {
		return nil, containerError(errors.Newf("unsupported container version %d", version).Build(), path)
	}
	headerLen := int(binary.LittleEndian.Uint32(raw[6:10]))
	if 10+headerLen > len(raw) {
		return nil, containerError(errors.Newf("truncated container header").Build(), path)
	}

	var header containerHeader
	if err := json.Unmarshal(raw[10:10+headerLen], &header); err != nil {
		return nil, containerError(err, path)
	}
	data := raw[10+headerLen:]

	wavelengthBytes, err := readSection(data, header.Wavelengths)
	if err != nil {
		return nil, containerError(err, path)
	}
	c := NewContainer(decodeFloats(wavelengthBytes))
	c.Attrs = header.Attrs

	for _, name := range SplitNames {
		sh, ok := header.Splits[name]
		if !ok {
			continue
		}
		sd := c.Splits[name]

		spectraBytes, err := readSection(data, sh.Spectra)
		if err != nil {
			return nil, containerError(err, path)
		}
		sd.Spectra = unflattenFloats(decodeFloats(spectraBytes), sh.Samples)

		labelBytes, err := readSection(data, sh.Labels)
		if err != nil {
			return nil, containerError(err, path)
		}
		sd.Labels = unflattenLabels(decodeLabels(labelBytes), sh.Samples)

		compositionBytes, err := readSection(data, sh.Compositions)
		if err != nil {
			return nil, containerError(err, path)
		}
		if err := json.Unmarshal(compositionBytes, &sd.Compositions); err != nil {
			return nil, containerError(err, path)
		}
	}

	return c, nil
}

// appendSection gzip-compresses payload into buf and returns its location.
func appendSection(buf *bytes.Buffer, payload []byte) (sectionInfo, error) {
	start := int64(buf.Len())
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(payload); err != nil {
		return sectionInfo{}, err
	}
	if err := zw.Close(); err != nil {
		return sectionInfo{}, err
	}
	return sectionInfo{Offset: start, Length: int64(buf.Len()) - start}, nil
}

func readSection(data []byte, info sectionInfo) ([]byte, error) {
	if info.Offset < 0 || info.Offset+info.Length > int64(len(data)) {
		return nil, errors.Newf("section out of bounds").Build()
	}
	zr, err := gzip.NewReader(bytes.NewReader(data[info.Offset : info.Offset+info.Length]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func containerError(err error, path string) error {
	return errors.New(err).
		Component("dataset").
		Category(errors.CategoryFileIO).
		Context("path", path).
		Build()
}

func encodeFloats(values []float64) []byte {
	out := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func decodeFloats(data []byte) []float64 {
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out
}

func encodeLabels(values []int32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

func decodeLabels(data []byte) []int32 {
	out := make([]int32, len(data)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func flattenFloats(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

func unflattenFloats(flat []float64, samples int) [][]float64 {
	if samples == 0 {
		return nil
	}
	width := len(flat) / samples
	rows := make([][]float64, samples)
	for i := range rows {
		rows[i] = flat[i*width : (i+1)*width]
	}
	return rows
}

func flattenLabels(rows [][]int32) []int32 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]int32, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

func unflattenLabels(flat []int32, samples int) [][]int32 {
	if samples == 0 {
		return nil
	}
	width := len(flat) / samples
	rows := make([][]int32, samples)
	for i := range rows {
		rows[i] = flat[i*width : (i+1)*width]
	}
	return rows
}
