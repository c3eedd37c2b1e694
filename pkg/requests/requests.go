package requests

type RequestType uint8

const (
	RequestTypeVendorDeviceSetRequest RequestType = 0b01000000
	RequestTypeVendorDeviceGetRequest RequestType = 0b11000000
)

type RequestCode uint8

const (
	RequestCodeGetRegister RequestCode = 0x00
	RequestCodeSetRegister RequestCode = 0x01
)
