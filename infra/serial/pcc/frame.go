package pcc

import (
	"bytes"
	"encoding/binary"
)

// Frame headers. Frames sent to the board use "$P<", frames from the
// board use "$P>".
var (
	HeaderOut = []byte{'$', 'P', '<'}
	HeaderIn  = []byte{'$', 'P', '>'}
)

const (
	headerLen     = 3
	// header, length, command and crc
	frameOverhead = headerLen + 2 + 1 + 1
	// The longest frame either side sends is a temp color command (1 + 8).
	maxPayload    = 64
)

// Frame is a decoded message from the board.
type Frame struct {
	Command Command
	Data    []byte
}

// EncodeFrame builds an outgoing frame: header, big endian length of
// command plus data, command, data and a CRC-8/DVB-S2 over everything
// before it.
func EncodeFrame(cmd Command, data []byte) []byte {
	return encode(HeaderOut, cmd, data)
}

// EncodeReply builds a frame as the board sends it, with the "$P>" header.
func EncodeReply(cmd Command, data []byte) []byte {
	return encode(HeaderIn, cmd, data)
}

func encode(header []byte, cmd Command, data []byte) []byte {
	out := make([]byte, 0, frameOverhead+len(data))
	out = append(out, header...)
	out = binary.BigEndian.AppendUint16(out, uint16(1+len(data)))
	out = append(out, byte(cmd))
	out = append(out, data...)
	return append(out, crc8(out))
}

// crc8 computes CRC-8/DVB-S2: polynomial 0xD5, initial value 0, no
// reflection.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0xD5
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Decoder extracts "$P>" frames from a byte stream that may split or merge
// them arbitrarily. Frames with a bad CRC or an implausible length are
// dropped and decoding resumes at the next header.
type Decoder struct {
	buf     []byte
	dropped int
}

// Feed appends chunk to the pending bytes and returns every complete frame.
func (d *Decoder) Feed(chunk []byte) []Frame {
	d.buf = append(d.buf, chunk...)
	var frames []Frame
	for {
		i := bytes.Index(d.buf, HeaderIn)
		if i < 0 {
			// keep a possible partial header
			keep := min(len(d.buf), headerLen-1)
			d.buf = append(d.buf[:0], d.buf[len(d.buf)-keep:]...)
			return frames
		}
		d.buf = d.buf[i:]
		if len(d.buf) < headerLen+2 {
			return frames
		}
		n := int(binary.BigEndian.Uint16(d.buf[headerLen:]))
		if n == 0 || n > maxPayload {
			d.dropped++
			d.buf = d.buf[1:]
			continue
		}
		total := headerLen + 2 + n + 1
		if len(d.buf) < total {
			// A noise header can claim a length that is never delivered. Give
			// up on it as soon as a later header starts a valid frame.
			if j := bytes.Index(d.buf[1:], HeaderIn); j >= 0 && validAt(d.buf[j+1:]) {
				d.dropped++
				d.buf = d.buf[j+1:]
				continue
			}
			return frames
		}
		if crc8(d.buf[:total-1]) != d.buf[total-1] {
			d.dropped++
			d.buf = d.buf[1:]
			continue
		}
		body := d.buf[headerLen+2 : total-1]
		frames = append(frames, Frame{
			Command: Command(body[0]),
			Data:    append([]byte(nil), body[1:]...),
		})
		d.buf = d.buf[total:]
	}
}

// validAt reports whether b starts with a complete frame with a good CRC.
func validAt(b []byte) bool {
	if len(b) < headerLen+2 {
		return false
	}
	n := int(binary.BigEndian.Uint16(b[headerLen:]))
	if n == 0 || n > maxPayload {
		return false
	}
	total := headerLen + 2 + n + 1
	return len(b) >= total && crc8(b[:total-1]) == b[total-1]
}

// Dropped returns the number of frames discarded so far.
func (d *Decoder) Dropped() int { return d.dropped }

// Pending returns the number of buffered bytes not yet part of a frame.
func (d *Decoder) Pending() int { return len(d.buf) }
