package common

import (
	"net"
)

// MACKey packs a 6-byte hardware address into an integer so it can be
// used as a map key.
func MACKey(mac net.HardwareAddr) (r uint64) {
	for _, b := range mac {
		r <<= 8
		r |= uint64(b)
	}
	return
}

func KeyMAC(key uint64) (r net.HardwareAddr) {
	r = make([]byte, 6)
	for i := 5; i >= 0; i-- {
		r[i] = byte(key)
		key >>= 8
	}
	return
}

func IsBroadcastOrMulticast(mac net.HardwareAddr) bool {
	return len(mac) > 0 && mac[0]&1 == 1
}
