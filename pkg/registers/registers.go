// Package registers names the register space of the CT-DC1100 video
// controller. Addresses are grouped by block; code never computes an address
// from a base plus an offset.
package registers

import "fmt"

// Address is a 16-bit index into the controller's flat register space.
type Address uint16

// GPIO block (GCTRL) and remote wakeup control (RMCTL).
const (
	GPIOValueLow      Address = 0x000 // GCTRL:GV[7:0]
	GPIOValueHigh     Address = 0x001 // GCTRL:GV[15:8]
	GPIODirectionLow  Address = 0x002 // GCTRL:GDIR[7:0]
	GPIODirectionHigh Address = 0x003 // GCTRL:GDIR[15:8]

	RemoteWakeupPolarity Address = 0x00D // RMCTL:RWP, GPIO[9:8]
	RemoteWakeupControl  Address = 0x00F // RMCTL:RWC, GPIO[9:8]

	PLLSetting0 Address = 0x018
	PLLSetting1 Address = 0x019
)

// Decoder control block.
const (
	DecoderControl Address = 0x100 // DCTRL

	CaptureStartXLow  Address = 0x110 // CFSPO:STX
	CaptureStartXHigh Address = 0x111
	CaptureStartYLow  Address = 0x112 // CFSPO:STY
	CaptureStartYHigh Address = 0x113
	CaptureEndXLow    Address = 0x114 // CFEPO:ENX
	CaptureEndXHigh   Address = 0x115
	CaptureEndYLow    Address = 0x116 // CFEPO:ENY
	CaptureEndYHigh   Address = 0x117
)

// Serial bus interface block.
const (
	SerialControl      Address = 0x200 // SICTL
	SerialStatus       Address = 0x201
	SerialClockDivider Address = 0x202 // SICTL:CD
	SerialDeviceSelect Address = 0x203

	SerialWriteAddress Address = 0x204 // SBUSW
	SerialWriteData    Address = 0x205
	SerialReadAddress  Address = 0x208 // SBUSR
	SerialReadData     Address = 0x209
)

// Timing generator block.
const (
	TimingControl Address = 0x300
	Timing0       Address = 0x350
	Timing1       Address = 0x351
	Timing2       Address = 0x352
	Timing3       Address = 0x353
)

var names = map[Address]string{
	GPIOValueLow:         "GCTRL.GV_L",
	GPIOValueHigh:        "GCTRL.GV_H",
	GPIODirectionLow:     "GCTRL.GDIR_L",
	GPIODirectionHigh:    "GCTRL.GDIR_H",
	RemoteWakeupPolarity: "RMCTL.RWP",
	RemoteWakeupControl:  "RMCTL.RWC",
	PLLSetting0:          "PLLSO0",
	PLLSetting1:          "PLLSO1",
	DecoderControl:       "DCTRL",
	CaptureStartXLow:     "CFSPO.STX_L",
	CaptureStartXHigh:    "CFSPO.STX_H",
	CaptureStartYLow:     "CFSPO.STY_L",
	CaptureStartYHigh:    "CFSPO.STY_H",
	CaptureEndXLow:       "CFEPO.ENX_L",
	CaptureEndXHigh:      "CFEPO.ENX_H",
	CaptureEndYLow:       "CFEPO.ENY_L",
	CaptureEndYHigh:      "CFEPO.ENY_H",
	SerialControl:        "SICTL",
	SerialStatus:         "SICTL.STATUS",
	SerialClockDivider:   "SICTL.CD",
	SerialDeviceSelect:   "SICTL.SDA",
	SerialWriteAddress:   "SBUSW.ADDR",
	SerialWriteData:      "SBUSW.DATA",
	SerialReadAddress:    "SBUSR.ADDR",
	SerialReadData:       "SBUSR.DATA",
	TimingControl:        "TG.CTRL",
	Timing0:              "TG.0",
	Timing1:              "TG.1",
	Timing2:              "TG.2",
	Timing3:              "TG.3",
}

func (a Address) String() string {
	if n, ok := names[a]; ok {
		return fmt.Sprintf("%s(0x%03x)", n, uint16(a))
	}
	return fmt.Sprintf("0x%03x", uint16(a))
}

// Block is a contiguous register range, used for dumps.
type Block struct {
	Name  string
	Start Address
	Len   int
}

var Blocks = []Block{
	{Name: "gpio", Start: GPIOValueLow, Len: 0x20},
	{Name: "decoder", Start: DecoderControl, Len: 0x18},
	{Name: "serial", Start: SerialControl, Len: 0x0A},
	{Name: "timing", Start: Timing0, Len: 4},
}
