// Command regdump prints the DC1100 register blocks and the video decoder's
// register file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	avertv "github.com/kevmo314/go-avertv"
	"github.com/kevmo314/go-avertv/pkg/decoder"
	"github.com/kevmo314/go-avertv/pkg/registers"
	"github.com/kevmo314/go-avertv/pkg/sbi"
	"github.com/kevmo314/go-avertv/pkg/transport"
)

func main() {
	path := flag.String("path", "", "usbfs path of the device; scans the bus when empty")
	chip := flag.Bool("decoder", true, "also dump decoder registers 0x00-0x8f over the serial bus")
	tries := flag.Int("tries", 100, "serial bus status polls per access")
	flag.Parse()

	d, err := avertv.Open(avertv.OpenOptions{Path: *path, Options: avertv.Options{SBIMaxTries: *tries}})
	if err != nil {
		log.Fatalf("failed to open device: %v", err)
	}
	defer d.Close()

	for _, b := range registers.Blocks {
		if err := dumpBlock(d.Registers(), b); err != nil {
			log.Fatalf("%s: %v", b.Name, err)
		}
	}
	if *chip {
		if err := dumpDecoder(d.Bus()); err != nil {
			log.Fatalf("decoder: %v", err)
		}
	}
}

func dumpBlock(regs transport.RegisterTransport, b registers.Block) error {
	fmt.Printf("%s:\n", b.Name)
	for i := 0; i < b.Len; i++ {
		a := b.Start + registers.Address(i)
		if i%8 == 0 {
			fmt.Printf("  %03x:", uint16(a))
		}
		v, err := regs.ReadRegister(a)
		if err != nil {
			return err
		}
		fmt.Printf(" %02x", v)
		if i%8 == 7 || i == b.Len-1 {
			fmt.Println()
		}
	}
	return nil
}

func dumpDecoder(bus *sbi.Bus) error {
	fmt.Printf("decoder (0x%02x):\n", decoder.Address)
	row := make([]byte, 16)
	for start := 0; start < 0x90; start += len(row) {
		err := bus.Tx(decoder.Address, []byte{byte(start)}, row)
		if err != nil && !errors.Is(err, sbi.ErrTimeout) {
			return err
		}
		fmt.Printf("  %02x: % x", start, row)
		if err != nil {
			fmt.Print("  (timeouts)")
		}
		fmt.Println()
	}
	return nil
}
