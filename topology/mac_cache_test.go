package topology

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

var (
	mac1 = mustMAC("00:00:00:00:00:01")
	mac2 = mustMAC("00:00:00:00:00:02")
)

func TestLearnAndResolve(t *testing.T) {
	cache := NewMacCache(0, nil)

	_, found := cache.ResolveSwitch(mac1)
	require.False(t, found)
	_, found = cache.ResolvePort(dpA, mac1)
	require.False(t, found)

	require.True(t, cache.Learn(dpA, mac1, 5))
	dpid, found := cache.ResolveSwitch(mac1)
	require.True(t, found)
	require.Equal(t, dpA, dpid)
	port, found := cache.ResolvePort(dpA, mac1)
	require.True(t, found)
	require.Equal(t, PortNo(5), port)

	_, found = cache.ResolvePort(dpB, mac1)
	require.False(t, found)
}

func TestLearnIdempotent(t *testing.T) {
	cache := NewMacCache(0, nil)
	require.True(t, cache.Learn(dpA, mac1, 5))
	require.False(t, cache.Learn(dpA, mac1, 5))
	port, _ := cache.ResolvePort(dpA, mac1)
	require.Equal(t, PortNo(5), port)

	// A different port overwrites
	require.True(t, cache.Learn(dpA, mac1, 6))
	port, _ = cache.ResolvePort(dpA, mac1)
	require.Equal(t, PortNo(6), port)
}

func TestLearnLastWriterWins(t *testing.T) {
	cache := NewMacCache(0, nil)
	cache.Learn(dpA, mac1, 5)
	cache.Learn(dpB, mac1, 2)

	dpid, _ := cache.ResolveSwitch(mac1)
	require.Equal(t, dpB, dpid)

	// The per-switch record at A is kept
	port, found := cache.ResolvePort(dpA, mac1)
	require.True(t, found)
	require.Equal(t, PortNo(5), port)
}

func TestInitSwitch(t *testing.T) {
	cache := NewMacCache(0, nil)
	cache.InitSwitch(dpA)
	cache.Learn(dpA, mac1, 5)
	cache.InitSwitch(dpA)
	_, found := cache.ResolvePort(dpA, mac1)
	require.True(t, found, "re-initialising a switch must not drop learned entries")
}

func TestLocations(t *testing.T) {
	cache := NewMacCache(0, nil)
	cache.Learn(dpB, mac2, 7)
	cache.Learn(dpA, mac1, 5)

	locs := cache.Locations()
	require.Len(t, locs, 2)
	require.Equal(t, mac1.String(), locs[0].Mac)
	require.Equal(t, dpA, locs[0].Dpid)
	require.Equal(t, PortNo(5), locs[0].Port)
	require.Equal(t, mac2.String(), locs[1].Mac)
	require.Equal(t, PortNo(7), locs[1].Port)
	require.Contains(t, cache.String(), "00:00:00:00:00:02 -> 000000000000000b:7")
}

func TestNoExpiryByDefault(t *testing.T) {
	cache := NewMacCache(0, nil)
	cache.Start()
	defer cache.Stop()
	cache.Learn(dpA, mac1, 5)
	require.Nil(t, cache.expiryTimer)
}

func TestExpiry(t *testing.T) {
	var expired []string
	cache := NewMacCache(time.Minute, func(mac net.HardwareAddr, dpid DPID) {
		expired = append(expired, mac.String())
	})
	cache.Learn(dpA, mac1, 5)
	cache.Learn(dpB, mac2, 7)
	cache.location[0x2].lastSeen = time.Now().Add(-2 * time.Minute)
	cache.ports[dpB][0x2].lastSeen = time.Now().Add(-2 * time.Minute)

	cache.expire(time.Now())

	require.Equal(t, []string{mac2.String()}, expired)
	_, found := cache.ResolveSwitch(mac2)
	require.False(t, found)
	_, found = cache.ResolvePort(dpB, mac2)
	require.False(t, found)
	_, found = cache.ResolveSwitch(mac1)
	require.True(t, found)
}
