// Package wav encodes captured PCM into RIFF/WAVE containers.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fwojciec/converse"
)

// HeaderSize is the size of the canonical 44-byte PCM header.
const HeaderSize = 44

// ErrInvalid indicates data that is not a canonical PCM WAV file.
var ErrInvalid = errors.New("invalid wav")

var _ converse.Encoder = Encoder{}

// header is the canonical PCM header, written little-endian in field order.
type header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// Encoder implements converse.Encoder by prefixing PCM with a WAV header.
type Encoder struct{}

// Encode wraps pcm in a WAV container tagged converse.MediaTypeWAV. A
// trailing partial frame is dropped. An empty capture yields a valid,
// header-only file.
func (Encoder) Encode(pcm []byte, f converse.AudioFormat) (converse.Audio, error) {
	data, err := Encode(pcm, f)
	if err != nil {
		return converse.Audio{}, err
	}
	return converse.Audio{Data: data, MediaType: converse.MediaTypeWAV, Format: f}, nil
}

// Encode returns pcm wrapped in a WAV container.
func Encode(pcm []byte, f converse.AudioFormat) ([]byte, error) {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitDepth <= 0 || f.BitDepth%8 != 0 {
		return nil, fmt.Errorf("wav: unsupported format %+v", f)
	}
	blockAlign := f.Channels * f.BitDepth / 8
	pcm = pcm[:len(pcm)-len(pcm)%blockAlign]

	h := header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(pcm)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.BytesPerSecond()),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(f.BitDepth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("wav: write header: %w", err)
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// Decode validates a canonical PCM WAV file and returns its format and
// sample data. It is the inverse of Encode, for inspecting a finalized
// capture; the client itself only writes WAV.
func Decode(data []byte) (converse.AudioFormat, []byte, error) {
	if len(data) < HeaderSize {
		return converse.AudioFormat{}, nil, fmt.Errorf("need at least %d bytes, got %d: %w", HeaderSize, len(data), ErrInvalid)
	}
	var h header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return converse.AudioFormat{}, nil, fmt.Errorf("read header: %w", err)
	}
	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return converse.AudioFormat{}, nil, fmt.Errorf("missing RIFF header: %w", ErrInvalid)
	case string(h.Format[:]) != "WAVE":
		return converse.AudioFormat{}, nil, fmt.Errorf("missing WAVE format: %w", ErrInvalid)
	case string(h.Subchunk1ID[:]) != "fmt ":
		return converse.AudioFormat{}, nil, fmt.Errorf("missing fmt chunk: %w", ErrInvalid)
	case h.AudioFormat != 1:
		return converse.AudioFormat{}, nil, fmt.Errorf("audio format %d is not PCM: %w", h.AudioFormat, ErrInvalid)
	case string(h.Subchunk2ID[:]) != "data":
		return converse.AudioFormat{}, nil, fmt.Errorf("missing data chunk: %w", ErrInvalid)
	}
	end := HeaderSize + int(h.Subchunk2Size)
	if end > len(data) {
		return converse.AudioFormat{}, nil, fmt.Errorf("data chunk claims %d bytes, have %d: %w", h.Subchunk2Size, len(data)-HeaderSize, ErrInvalid)
	}
	f := converse.AudioFormat{
		SampleRate: int(h.SampleRate),
		Channels:   int(h.NumChannels),
		BitDepth:   int(h.BitsPerSample),
	}
	return f, data[HeaderSize:end], nil
}
