package panel

import "time"

// Controller command set (shared ST7789/ILI9341 core, MIPI DCS).
const (
	cmdNOP     = 0x00
	cmdSWRESET = 0x01 // Software Reset
	cmdRDDID   = 0x04 // Read Display Identification
	cmdSLPIN   = 0x10 // Enter Sleep Mode
	cmdSLPOUT  = 0x11 // Sleep Out
	cmdNORON   = 0x13 // Normal Display Mode ON
	cmdINVOFF  = 0x20 // Display Inversion OFF
	cmdINVON   = 0x21 // Display Inversion ON
	cmdGAMSET  = 0x26 // Gamma Set
	cmdDISPOFF = 0x28 // Display OFF
	cmdDISPON  = 0x29 // Display ON
	cmdCASET   = 0x2A // Column Address Set
	cmdRASET   = 0x2B // Row Address Set
	cmdRAMWR   = 0x2C // Memory Write
	cmdTEON    = 0x35 // Tearing Effect Line ON
	cmdMADCTL  = 0x36 // Memory Access Control
	cmdCOLMOD  = 0x3A // Interface Pixel Format
)

// ST7789-specific commands.
const (
	cmdPORCTRL  = 0xB2 // Porch Setting
	cmdGCTRL    = 0xB7 // Gate Control
	cmdVCOMS    = 0xBB // VCOM Setting
	cmdLCMCTRL  = 0xC0 // LCM Control
	cmdVDVVRHEN = 0xC2 // VDV and VRH Command Enable
	cmdVRHS     = 0xC3 // VRH Set
	cmdVDVS     = 0xC4 // VDV Set
	cmdFRCTRL2  = 0xC6 // Frame Rate Control in Normal Mode
	cmdPWCTRL1s = 0xD0 // Power Control 1 (ST7789)
	cmdGMCTRP1  = 0xE0 // Positive Voltage Gamma Control
	cmdGMCTRN1  = 0xE1 // Negative Voltage Gamma Control
)

// ILI9341-specific commands.
const (
	cmdFRMCTRL1  = 0xB1 // Frame Rate Control (Normal Mode)
	cmdDISCTRL   = 0xB6 // Display Function Control
	cmdPWCTRL1   = 0xC0 // Power Control 1
	cmdPWCTRL2   = 0xC1 // Power Control 2
	cmdVMCTRL1   = 0xC5 // VCOM Control 1
	cmdVMCTRL2   = 0xC7 // VCOM Control 2
	cmdPWCTRLB   = 0xCF // Power Control B
	cmdTIMCTRLA  = 0xE8 // Driver Timing Control A
	cmdTIMCTRLB  = 0xEA // Driver Timing Control B
	cmdPWSEQCTRL = 0xED // Power on Sequence Control
	cmdGAM3CTRL  = 0xF2 // Enable 3 Gamma Control
	cmdPUMPRATIO = 0xF7 // Pump Ratio Control
)

// MADCTL bits.
const (
	madctlMY  = 0x80 // row address order
	madctlMX  = 0x40 // column address order
	madctlMV  = 0x20 // row/column exchange
	madctlML  = 0x10 // vertical refresh order
	madctlBGR = 0x08 // blue-green-red pixel order
	madctlMH  = 0x04 // horizontal refresh order
)

// st7789ID is the identity an ST7789 answers to the read-ID query. Any
// other value selects the ILI9341 init table.
var st7789ID = [3]byte{0x85, 0x85, 0x52}

// initEntry is one step of a controller init table: a command, its
// parameters, and a settle delay before the next step.
type initEntry struct {
	cmd    byte
	params []byte
	delay  time.Duration
}

var st7789Init = []initEntry{
	{cmd: cmdTEON},
	{cmd: cmdCOLMOD, params: []byte{0x55}}, // 16bpp
	{cmd: cmdPORCTRL, params: []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}},
	{cmd: cmdLCMCTRL, params: []byte{0x2C}},
	{cmd: cmdVDVVRHEN, params: []byte{0x01}},
	{cmd: cmdVRHS, params: []byte{0x12}},
	{cmd: cmdVDVS, params: []byte{0x20}},
	{cmd: cmdPWCTRL1s, params: []byte{0xA4, 0xA1}},
	{cmd: cmdFRCTRL2, params: []byte{0x0F}},
	{cmd: cmdGCTRL, params: []byte{0x35}},
	{cmd: cmdVCOMS, params: []byte{0x1F}},
	{cmd: cmdGMCTRP1, params: []byte{
		0xD0, 0x08, 0x11, 0x08, 0x0C, 0x15, 0x39,
		0x33, 0x50, 0x36, 0x13, 0x14, 0x29, 0x2D}},
	{cmd: cmdGMCTRN1, params: []byte{
		0xD0, 0x08, 0x10, 0x08, 0x06, 0x06, 0x39,
		0x44, 0x51, 0x0B, 0x16, 0x14, 0x2F, 0x31}},
	{cmd: cmdINVON},
	{cmd: cmdSLPOUT, delay: 120 * time.Millisecond},
	{cmd: cmdNORON},
	{cmd: cmdDISPON, delay: 10 * time.Millisecond},
}

var ili9341Init = []initEntry{
	{cmd: cmdPWCTRLB, params: []byte{0x00, 0xC1, 0x30}},
	{cmd: cmdPWSEQCTRL, params: []byte{0x64, 0x03, 0x12, 0x81}},
	{cmd: cmdTIMCTRLA, params: []byte{0x85, 0x00, 0x78}},
	{cmd: cmdPUMPRATIO, params: []byte{0x20}},
	{cmd: cmdTIMCTRLB, params: []byte{0x00, 0x00}},
	{cmd: cmdPWCTRL1, params: []byte{0x23}},
	{cmd: cmdPWCTRL2, params: []byte{0x10}},
	{cmd: cmdVMCTRL1, params: []byte{0x3E, 0x28}},
	{cmd: cmdVMCTRL2, params: []byte{0x86}},
	{cmd: cmdCOLMOD, params: []byte{0x55}}, // 16bpp
	{cmd: cmdFRMCTRL1, params: []byte{0x00, 0x18}},
	{cmd: cmdDISCTRL, params: []byte{0x08, 0x82, 0x27}},
	{cmd: cmdGAM3CTRL, params: []byte{0x00}},
	{cmd: cmdGAMSET, params: []byte{0x01}},
	{cmd: cmdGMCTRP1, params: []byte{
		0x0F, 0x31, 0x2B, 0x0C, 0x0E, 0x08, 0x4E,
		0xF1, 0x37, 0x07, 0x10, 0x03, 0x0E, 0x09, 0x00}},
	{cmd: cmdGMCTRN1, params: []byte{
		0x00, 0x0E, 0x14, 0x03, 0x11, 0x07, 0x31,
		0xC1, 0x48, 0x08, 0x0F, 0x0C, 0x31, 0x36, 0x0F}},
	{cmd: cmdSLPOUT, delay: 120 * time.Millisecond},
	{cmd: cmdDISPON, delay: 10 * time.Millisecond},
}
