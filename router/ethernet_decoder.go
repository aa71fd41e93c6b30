package router

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

type EthernetDecoder struct {
	Eth     layers.Ethernet
	decoded []gopacket.LayerType
	parser  *gopacket.DecodingLayerParser
}

func NewEthernetDecoder() *EthernetDecoder {
	dec := &EthernetDecoder{}
	dec.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &dec.Eth)
	return dec
}

// DecodeLayers decodes the link-layer header of a frame. Only the
// Ethernet header is needed, so failing to go past it is not an error.
func (dec *EthernetDecoder) DecodeLayers(data []byte) error {
	err := dec.parser.DecodeLayers(data, &dec.decoded)
	if len(dec.decoded) == 0 {
		if err == nil {
			err = errors.Errorf("frame of %d bytes has no Ethernet header", len(data))
		}
		return errors.Wrap(err, "decoding Ethernet header")
	}
	return nil
}

// Addresses returns copies of the source and destination MACs of the
// last decoded frame.
func (dec *EthernetDecoder) Addresses() (src, dst net.HardwareAddr) {
	src = append(net.HardwareAddr(nil), dec.Eth.SrcMAC...)
	dst = append(net.HardwareAddr(nil), dec.Eth.DstMAC...)
	return
}
