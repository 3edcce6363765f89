package vga

import "runtime"

// renderScanline draws the scan-line assigned to the buffer from the glyph
// grid, spinning until the interrupt sequencer hands the buffer over. It
// returns the number of spin iterations so the render loop can track how
// often it outruns playout.
func (s *Subsystem) renderScanline(buf *LineBuffer) uint32 {
	font := s.font.Load()
	if font == nil {
		return 0
	}

	numRows := int(s.numRows.Load())
	numCols := int(s.numCols.Load())

	var count uint32
	for !buf.IsReadyForRendering() {
		if s.halt.Load() {
			return count
		}
		count++
		runtime.Gosched()
	}

	line := int(buf.LineNumber())
	textRow := line / font.Height
	fontRow := line % font.Height

	if textRow < numRows {
		cells := s.grid[textRow*numCols : (textRow+1)*numCols]
		// The font row offset is the same for every glyph on the line,
		// so slice the font once and index it by glyph stride.
		fontData := font.Data[fontRow:]
		switch numCols {
		case 80:
			s.render80Cols(buf, cells, fontData, font.Height)
		case 40:
			s.render40Cols(buf, cells, fontData, font.Height)
		}
	}

	buf.MarkRenderingDone()
	return count
}

// render80Cols renders one line of 80 column text. Instead of testing font
// bits one at a time it slices the font row into 2 bit chunks and maps
// each chunk straight to a packed pixel pair through the colour lookup
// table. The fixed slice bounds let the compiler drop the per-write range
// checks in the inner loop.
func (s *Subsystem) render80Cols(buf *LineBuffer, cells []GlyphAttr, fontData []uint8, fontHeight int) {
	lut := s.lut
	cells = cells[:80]
	dst := buf.PairWords()
	dst = dst[:320]
	o := 0
	for _, cell := range cells {
		bits := fontData[int(cell.Glyph())*fontHeight]
		lutRow := lut[int(cell.Attr()&0x7F)<<2:]
		lutRow = lutRow[:4]
		dst[o] = uint32(lutRow[bits>>6])
		dst[o+1] = uint32(lutRow[(bits>>4)&3])
		dst[o+2] = uint32(lutRow[(bits>>2)&3])
		dst[o+3] = uint32(lutRow[bits&3])
		o += 4
	}
	buf.SetLength(320)
}

// render40Cols renders one line of 40 column text. Every font pixel
// doubles into a full pair, so each glyph produces eight pairs picked
// from the solid foreground and solid background entries of the lookup
// table.
func (s *Subsystem) render40Cols(buf *LineBuffer, cells []GlyphAttr, fontData []uint8, fontHeight int) {
	lut := s.lut
	cells = cells[:40]
	dst := buf.PairWords()
	dst = dst[:320]
	o := 0
	for _, cell := range cells {
		bits := fontData[int(cell.Glyph())*fontHeight]
		base := int(cell.Attr()&0x7F) << 2
		sel := [2]uint32{uint32(lut[base]), uint32(lut[base|3])}
		dst[o] = sel[bits>>7]
		dst[o+1] = sel[(bits>>6)&1]
		dst[o+2] = sel[(bits>>5)&1]
		dst[o+3] = sel[(bits>>4)&1]
		dst[o+4] = sel[(bits>>3)&1]
		dst[o+5] = sel[(bits>>2)&1]
		dst[o+6] = sel[(bits>>1)&1]
		dst[o+7] = sel[bits&1]
		o += 8
	}
	buf.SetLength(320)
}

// RenderLoop is the pixel generator, run on its own core. It alternates
// between the odd and even line buffers forever, rendering each one as
// the interrupt sequencer hands it over. It only returns when the
// subsystem is shut down.
func (s *Subsystem) RenderLoop() {
	s.core1Started.Store(true)
	for !s.halt.Load() {
		start := s.timer.Cycles()
		waited := s.renderScanline(s.buffers[1])
		waited += s.renderScanline(s.buffers[0])
		s.renderWaits.Add(waited / 2)
		s.renderCycles.Add(uint64(s.timer.Cycles() - start))
	}
}
