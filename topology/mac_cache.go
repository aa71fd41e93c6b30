package topology

import (
	"bytes"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/weaveworks/ofpath/common"
)

type locationEntry struct {
	lastSeen time.Time
	dpid     DPID
}

type portEntry struct {
	lastSeen time.Time
	port     PortNo
}

// MacCache records where MAC addresses have been seen: the port on
// each switch a MAC arrived on, and the switch it was most recently
// observed at. Entries are kept forever unless a maximum age is set.
type MacCache struct {
	sync.RWMutex
	location    map[uint64]*locationEntry
	ports       map[DPID]map[uint64]*portEntry
	maxAge      time.Duration
	expiryTimer *time.Timer
	onExpiry    func(net.HardwareAddr, DPID)
}

func NewMacCache(maxAge time.Duration, onExpiry func(net.HardwareAddr, DPID)) *MacCache {
	if onExpiry == nil {
		onExpiry = func(net.HardwareAddr, DPID) {}
	}
	return &MacCache{
		location: make(map[uint64]*locationEntry),
		ports:    make(map[DPID]map[uint64]*portEntry),
		maxAge:   maxAge,
		onExpiry: onExpiry}
}

// Start arms the expiry timer. It does nothing when no maximum age is
// configured.
func (cache *MacCache) Start() {
	if cache.maxAge <= 0 {
		return
	}
	cache.Lock()
	defer cache.Unlock()
	cache.setExpiryTimer()
}

func (cache *MacCache) Stop() {
	cache.Lock()
	defer cache.Unlock()
	if cache.expiryTimer != nil {
		cache.expiryTimer.Stop()
		cache.expiryTimer = nil
	}
}

// InitSwitch creates an empty learned table for dpid if it has none.
func (cache *MacCache) InitSwitch(dpid DPID) {
	cache.Lock()
	defer cache.Unlock()
	if _, found := cache.ports[dpid]; !found {
		cache.ports[dpid] = make(map[uint64]*portEntry)
	}
}

// Learn records that mac arrived on port of switch dpid, and that dpid
// is where mac now lives. The last observation always wins. Returns
// true if either record changed.
func (cache *MacCache) Learn(dpid DPID, mac net.HardwareAddr, port PortNo) bool {
	key := common.MACKey(mac)
	now := time.Now()
	cache.Lock()
	defer cache.Unlock()

	changed := false
	table, found := cache.ports[dpid]
	if !found {
		table = make(map[uint64]*portEntry)
		cache.ports[dpid] = table
	}
	if entry, found := table[key]; !found {
		table[key] = &portEntry{lastSeen: now, port: port}
		changed = true
	} else {
		if entry.port != port {
			entry.port = port
			changed = true
		}
		entry.lastSeen = now
	}

	if entry, found := cache.location[key]; !found {
		cache.location[key] = &locationEntry{lastSeen: now, dpid: dpid}
		changed = true
	} else {
		if entry.dpid != dpid {
			entry.dpid = dpid
			changed = true
		}
		entry.lastSeen = now
	}
	return changed
}

// ResolveSwitch returns the switch mac was last seen at.
func (cache *MacCache) ResolveSwitch(mac net.HardwareAddr) (DPID, bool) {
	cache.RLock()
	defer cache.RUnlock()
	entry, found := cache.location[common.MACKey(mac)]
	if !found {
		return 0, false
	}
	return entry.dpid, true
}

// ResolvePort returns the port mac was last seen arriving on at dpid.
func (cache *MacCache) ResolvePort(dpid DPID, mac net.HardwareAddr) (PortNo, bool) {
	cache.RLock()
	defer cache.RUnlock()
	entry, found := cache.ports[dpid][common.MACKey(mac)]
	if !found {
		return 0, false
	}
	return entry.port, true
}

// MacLocation is a flattened view of one cache entry.
type MacLocation struct {
	Mac      string
	Dpid     DPID
	Port     PortNo
	LastSeen time.Time
}

// Locations lists, for every resolvable MAC, its switch and the port
// it was learned on there.
func (cache *MacCache) Locations() []MacLocation {
	cache.RLock()
	defer cache.RUnlock()
	locations := make([]MacLocation, 0, len(cache.location))
	for key, entry := range cache.location {
		loc := MacLocation{Mac: common.KeyMAC(key).String(), Dpid: entry.dpid, LastSeen: entry.lastSeen}
		if pe, found := cache.ports[entry.dpid][key]; found {
			loc.Port = pe.port
		}
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].Mac < locations[j].Mac })
	return locations
}

func (cache *MacCache) String() string {
	var buf bytes.Buffer
	for _, loc := range cache.Locations() {
		fmt.Fprintf(&buf, "%s -> %s:%d (%v)\n", loc.Mac, loc.Dpid, loc.Port, loc.LastSeen)
	}
	return buf.String()
}

func (cache *MacCache) setExpiryTimer() {
	cache.expiryTimer = time.AfterFunc(cache.maxAge/10, func() { cache.expire(time.Now()) })
}

func (cache *MacCache) expire(now time.Time) {
	cache.Lock()
	defer cache.Unlock()
	for _, table := range cache.ports {
		for key, entry := range table {
			if now.After(entry.lastSeen.Add(cache.maxAge)) {
				delete(table, key)
			}
		}
	}
	for key, entry := range cache.location {
		if now.After(entry.lastSeen.Add(cache.maxAge)) {
			delete(cache.location, key)
			cache.onExpiry(common.KeyMAC(key), entry.dpid)
		}
	}
	if cache.expiryTimer != nil {
		cache.setExpiryTimer()
	}
}
