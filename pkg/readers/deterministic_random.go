package readers

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"io"

	"golang.org/x/exp/constraints"

	"hop.computer/containers/pkg"
	"hop.computer/containers/pkg/must"
)

var iv = [aes.BlockSize]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
var mask = [aes.BlockSize]byte{0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77}

type ctrReader struct {
	stream cipher.Stream
}

// Read implements io.Reader. It will return a deterministic byte sequence based
// on the seed and the total number of bytes read. The number of calls does not
// matter. It cannot fail.
func (c *ctrReader) Read(p []byte) (n int, err error) {
	for i := 0; i < len(p); i += len(mask) {
		chunk := p[i:]
		c.stream.XORKeyStream(chunk, mask[0:min(len(chunk), len(mask))])
	}
	return len(p), nil
}

var _ io.Reader = &ctrReader{}

// DeterministicRandomReader returns a "random" reader based on the seed
// provided, using AES in CTR mode. The key is based on the seed. The IV is
// static. The output data is the key stream XOR'd with a static mask of 0x77
// for each byte.
func DeterministicRandomReader(seed uint64) io.Reader {
	key := [16]byte{}
	binary.LittleEndian.PutUint64(key[:], seed)
	block, err := aes.NewCipher(key[:])
	must.NoError(err)
	ctr := cipher.NewCTR(block, iv[:])
	return &ctrReader{
		stream: ctr,
	}
}

// DeterministicCoinFlipper is a coin that lands heads with probability
// 2^-bits. The random workload step flips one to move list pushes and pops
// to the front.
type DeterministicCoinFlipper struct {
	r    *ctrReader
	mask byte
}

// Flip consumes one byte of the stream and reports heads when the low bits are
// all zero.
func (f *DeterministicCoinFlipper) Flip() bool {
	var buf [1]byte
	_ = must.Do(f.r.Read(buf[:]))
	return buf[0]&f.mask == 0
}

// NewDeterministicCoinFlipper returns a coin seeded by seed. bits must be in
// [0, 7]; zero bits always lands heads.
func NewDeterministicCoinFlipper(seed uint64, bits int) *DeterministicCoinFlipper {
	if bits > 7 || bits < 0 {
		pkg.Panicf("readers: coin bits must be in the range 0-7, got %d", bits)
	}
	return &DeterministicCoinFlipper{
		r:    DeterministicRandomReader(seed).(*ctrReader),
		mask: byte(1<<bits - 1),
	}
}

// Picker draws reproducible integers from a seeded stream. It is used to build
// random operation sequences that can be replayed from the seed alone.
type Picker struct {
	r *ctrReader
}

func NewPicker(seed uint64) *Picker {
	return &Picker{r: DeterministicRandomReader(seed).(*ctrReader)}
}

// Uint64 returns the next 8 bytes of the stream.
func (p *Picker) Uint64() uint64 {
	var buf [8]byte
	_ = must.Do(p.r.Read(buf[:]))
	return binary.LittleEndian.Uint64(buf[:])
}

// Below returns a value in [0, n). It panics if n is not positive. The modulo
// bias is irrelevant for the small n used in tests.
func Below[N constraints.Integer](p *Picker, n N) N {
	if n <= 0 {
		pkg.Panicf("readers: Below(%d) needs a positive bound", n)
	}
	return N(p.Uint64() % uint64(n))
}

// Choose returns one element of choices.
func Choose[T any](p *Picker, choices []T) T {
	return choices[Below(p, len(choices))]
}
