// Package bios is the service layer an operating system sees: versioning,
// video, memory regions, time of day, and stubs for the hardware this
// board does not have yet. Everything video delegates to the vga
// subsystem.
package bios

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"picovga/memory"
	"picovga/vga"
)

// Version is the human readable BIOS version string.
const Version = "0.5.0"

// APIVersion is the version of the OS-facing API itself. An OS built
// against a newer major version must refuse to boot.
const APIVersion = 1

// ErrUnimplemented is returned by every service the board has no hardware
// for. Callers are expected to treat it as "feature absent", not as a
// fault.
var ErrUnimplemented = errors.New("service not implemented")

// ErrBadDevice is returned for accesses to devices that do not exist.
var ErrBadDevice = errors.New("no such device")

// timeEpoch is the zero point of the BIOS clock.
var timeEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// MemoryKind classifies a memory region.
type MemoryKind int

const (
	// MemoryKindRAM is ordinary read/write memory.
	MemoryKindRAM MemoryKind = iota
	// MemoryKindStackRAM is memory reserved for stacks.
	MemoryKindStackRAM
)

// MemoryRegion describes one region an OS may use.
type MemoryRegion struct {
	Bank memory.Bank
	Kind MemoryKind
}

// BlockDevInfo describes a block device.
type BlockDevInfo struct {
	Name         string
	SectorSize   uint32
	NumSectors   uint64
	Removable    bool
	MediaPresent bool
	ReadOnly     bool
}

// SerialInfo describes a serial port.
type SerialInfo struct {
	Name string
}

// Def defines a BIOS instance.
type Def struct {
	// Video is the video subsystem services delegate to. Required.
	Video *vga.Subsystem
	// RAM is the application memory handed out as region 0. Required.
	RAM *memory.RAM
}

// API is the BIOS service table.
type API struct {
	video *vga.Subsystem
	ram   *memory.RAM

	// The clock is offset based so TimeSet survives without a real RTC.
	clockMu     sync.Mutex
	clockOffset time.Duration
}

// New validates the definition and returns the service table.
func New(def *Def) (*API, error) {
	if def.Video == nil {
		return nil, errors.New("bios needs a video subsystem")
	}
	if def.RAM == nil {
		return nil, errors.New("bios needs application RAM")
	}
	return &API{
		video: def.Video,
		ram:   def.RAM,
	}, nil
}

// APIVersionGet returns the API version this BIOS implements.
func (a *API) APIVersionGet() int {
	return APIVersion
}

// BIOSVersionGet returns the version string.
func (a *API) BIOSVersionGet() string {
	return Version
}

// Video services.

// VideoIsValidMode reports whether SetMode would accept the mode.
func (a *API) VideoIsValidMode(m vga.Mode) bool {
	return m.IsText() && !m.IsHorizDouble() && !m.IsVertDouble() &&
		(m.Timing() == vga.Timing640x480 || m.Timing() == vga.Timing640x400)
}

// VideoSetMode switches video mode.
func (a *API) VideoSetMode(m vga.Mode) error {
	return a.video.SetMode(m)
}

// VideoGetMode returns the current mode.
func (a *API) VideoGetMode() vga.Mode {
	return a.video.GetMode()
}

// VideoGetFramebuffer returns the video memory bank: glyph bytes at even
// addresses, attribute bytes at odd.
func (a *API) VideoGetFramebuffer() memory.Bank {
	return a.video.VideoMemory()
}

// VideoModeNeedsVRAM reports whether a mode needs external video memory
// before it can be selected.
func (a *API) VideoModeNeedsVRAM(m vga.Mode) bool {
	return a.video.ModeNeedsExtraMemory(m)
}

// VideoGetScanLine returns the line currently playing out.
func (a *API) VideoGetScanLine() uint32 {
	return a.video.ScanLine()
}

// VideoGetNumScanLines returns the visible line count of the current mode.
func (a *API) VideoGetNumScanLines() int {
	return a.video.VisibleScanLines()
}

// VideoWaitForLine blocks until the given line is playing out.
func (a *API) VideoWaitForLine(line uint32) {
	a.video.WaitForScanLine(line)
}

// VideoGetPalette returns palette entry i.
func (a *API) VideoGetPalette(i int) (vga.RGBColour, error) {
	return a.video.PaletteEntry(i)
}

// VideoSetPalette reprograms palette entry i.
func (a *API) VideoSetPalette(i int, c vga.RGBColour) error {
	return a.video.SetPaletteEntry(i, c)
}

// Console returns the text console for OS output.
func (a *API) Console() *vga.TextConsole {
	return a.video.Console()
}

// Memory services.

// MemoryGetRegion returns memory region n. Region 0 is the application
// RAM; there are no others.
func (a *API) MemoryGetRegion(n int) (MemoryRegion, error) {
	if n != 0 {
		return MemoryRegion{}, fmt.Errorf("%w: memory region %d", ErrBadDevice, n)
	}
	return MemoryRegion{Bank: a.ram, Kind: MemoryKindRAM}, nil
}

// Time services.

// TimeGet returns the time since the BIOS epoch (2000-01-01 UTC).
func (a *API) TimeGet() time.Duration {
	a.clockMu.Lock()
	defer a.clockMu.Unlock()
	return time.Since(timeEpoch) + a.clockOffset
}

// TimeSet adjusts the clock so TimeGet returns values relative to t.
func (a *API) TimeSet(t time.Time) {
	a.clockMu.Lock()
	defer a.clockMu.Unlock()
	a.clockOffset = t.Sub(timeEpoch) - time.Since(timeEpoch)
}

// Block device services. The SD card slot is wired but the driver is not
// written, so device 0 reports card geometry and the data path returns
// ErrUnimplemented.

// BlockDevGetInfo describes block device n.
func (a *API) BlockDevGetInfo(n int) (BlockDevInfo, error) {
	if n != 0 {
		return BlockDevInfo{}, fmt.Errorf("%w: block device %d", ErrBadDevice, n)
	}
	return BlockDevInfo{
		Name:         "SdCard0",
		SectorSize:   512,
		Removable:    true,
		MediaPresent: false,
	}, nil
}

// BlockRead reads sectors from a block device.
func (a *API) BlockRead(dev int, lba uint64, buf []byte) error {
	if dev != 0 {
		return fmt.Errorf("%w: block device %d", ErrBadDevice, dev)
	}
	return ErrUnimplemented
}

// BlockWrite writes sectors to a block device.
func (a *API) BlockWrite(dev int, lba uint64, buf []byte) error {
	if dev != 0 {
		return fmt.Errorf("%w: block device %d", ErrBadDevice, dev)
	}
	return ErrUnimplemented
}

// Serial services. No UART is wired up yet.

// SerialGetInfo describes serial port n.
func (a *API) SerialGetInfo(n int) (SerialInfo, error) {
	return SerialInfo{}, fmt.Errorf("%w: serial port %d", ErrBadDevice, n)
}

// SerialWrite writes to a serial port.
func (a *API) SerialWrite(n int, p []byte) (int, error) {
	return 0, ErrUnimplemented
}

// SerialRead reads from a serial port.
func (a *API) SerialRead(n int, p []byte) (int, error) {
	return 0, ErrUnimplemented
}

// HID services. No keyboard controller yet.

// HidGetEvent returns the next input event, or ErrUnimplemented.
func (a *API) HidGetEvent() (uint32, error) {
	return 0, ErrUnimplemented
}

// Configuration services. No EEPROM on this board revision.

// ConfigurationGet reads the stored configuration block.
func (a *API) ConfigurationGet(buf []byte) (int, error) {
	return 0, ErrUnimplemented
}

// ConfigurationSet writes the stored configuration block.
func (a *API) ConfigurationSet(buf []byte) error {
	return ErrUnimplemented
}

// PowerIdle waits for something to happen. On this board it is a yield.
func (a *API) PowerIdle() {
	runtime.Gosched()
}
