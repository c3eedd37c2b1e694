package main

import (
	"fmt"
	"log"

	usb "github.com/kevmo314/go-usb"

	avertv "github.com/kevmo314/go-avertv"
)

func main() {
	devices, err := usb.DeviceList()
	if err != nil {
		log.Fatalf("Failed to list devices: %v", err)
	}

	if len(devices) == 0 {
		fmt.Println("No USB devices found")
		fmt.Println("\nNote: the usbfs nodes under /dev/bus/usb must be readable by this user.")
		return
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))

	found := 0
	for i, dev := range devices {
		fmt.Printf("Device %d:\n", i+1)
		fmt.Printf("  Path: %s\n", dev.Path)
		fmt.Printf("  VID:PID: %04x:%04x\n", dev.Descriptor.VendorID, dev.Descriptor.ProductID)
		fmt.Printf("  USB Version: %d.%02d\n", dev.Descriptor.USBVersion>>8, dev.Descriptor.USBVersion&0xFF)

		if dev.SysfsStrings != nil {
			if dev.SysfsStrings.Manufacturer != "" {
				fmt.Printf("  Manufacturer: %s\n", dev.SysfsStrings.Manufacturer)
			}
			if dev.SysfsStrings.Product != "" {
				fmt.Printf("  Product: %s\n", dev.SysfsStrings.Product)
			}
		}

		if dev.Descriptor.VendorID == avertv.VendorID && dev.Descriptor.ProductID == avertv.ProductID {
			found++
			fmt.Printf("  ** AVerTV USB2.0 **\n")

			handle, err := dev.Open()
			if err != nil {
				fmt.Printf("  (Could not open: %v)\n", err)
			} else {
				config, err := handle.GetActiveConfigDescriptor()
				if err == nil {
					fmt.Printf("  Active Config: %d, Interfaces: %d\n",
						config.ConfigurationValue, config.NumInterfaces)
				}
				handle.Close()
			}
		}

		fmt.Println()
	}

	if found == 0 {
		fmt.Println("No AVerTV USB2.0 (07ca:0026) attached")
	}
}
