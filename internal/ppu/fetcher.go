package ppu

// fifo is a ring buffer of 2-bit color indices, sized for a couple of
// tiles' worth of lookahead.
type fifo struct {
	buf  [32]byte
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }

func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}

func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// bgFetcher pulls one tile row (8 pixels) into a fifo at a time, for
// either the background or the window layer — both address VRAM the
// same way, just against a different tilemap base and line counter.
type bgFetcher struct {
	vram          *[0x2000]byte
	fifo          *fifo
	tileData8000  bool
	tileIndexAddr uint16
	fineY         byte
}

func newBGFetcher(vram *[0x2000]byte, f *fifo) *bgFetcher {
	return &bgFetcher{vram: vram, fifo: f}
}

func (f *bgFetcher) configure(tileData8000 bool, tileIndexAddr uint16, fineY byte) {
	f.tileData8000 = tileData8000
	f.tileIndexAddr = tileIndexAddr
	f.fineY = fineY & 7
}

// fetch pushes 8 color indices for the configured tile row.
func (f *bgFetcher) fetch() {
	tileNum := f.vram[f.tileIndexAddr-0x8000]
	var base uint16
	if f.tileData8000 {
		base = 0x8000 + uint16(tileNum)*16 + uint16(f.fineY)*2
	} else {
		base = 0x9000 + uint16(int8(tileNum))*16 + uint16(f.fineY)*2
	}
	lo := f.vram[base-0x8000]
	hi := f.vram[base+1-0x8000]
	for px := 0; px < 8; px++ {
		bit := 7 - byte(px)
		ci := ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
		f.fifo.Push(ci)
	}
}
